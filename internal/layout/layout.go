package layout

import (
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"pinsmith/internal/ir"
)

var log = commonlog.GetLogger("pinsmith.layout")

// HeaderSize is the fixed record header: an 8-byte discriminator precedes
// every persisted record's fields.
const HeaderSize = 8

// fallbackSize is the conservative estimate applied to unknown field types.
// Fallbacks are logged as assumptions for downstream review, never raised as
// errors.
const fallbackSize = 32

var primitiveSizes = map[string]int{
	"bool": 1,
	"u8":   1, "i8": 1,
	"u16": 2, "i16": 2,
	"u32": 4, "i32": 4, "f32": 4,
	"u64": 8, "i64": 8, "f64": 8,
	"u128": 16, "i128": 16,
	"pubkey": 32, "publickey": 32,
}

// normalize strips whitespace and case so "Option< Pubkey >" and
// "option<pubkey>" describe the same type.
func normalize(ty string) string {
	return strings.ToLower(strings.ReplaceAll(ty, " ", ""))
}

// FieldSize returns the byte size a field of the given type descriptor
// contributes to its record. Bounded sequences contribute backing storage
// plus their length counter; bound is the explicit per-field capacity, zero
// meaning "use the per-element default".
func FieldSize(ty string, bound int) int {
	ty = normalize(ty)

	if inner, ok := strings.CutPrefix(ty, "option<"); ok && strings.HasSuffix(inner, ">") {
		// One discriminant byte ahead of the payload.
		return 1 + FieldSize(strings.TrimSuffix(inner, ">"), bound)
	}

	if seq, ok := Sequence(ty, bound); ok {
		return seq.BackingSize() + seq.CounterSize
	}

	if size, ok := fixedArraySize(ty); ok {
		return size
	}

	if size, ok := primitiveSizes[ty]; ok {
		return size
	}

	log.Infof("unknown field type %q, assuming %d bytes", ty, fallbackSize)
	return fallbackSize
}

// fixedArraySize handles [T; N] descriptors.
func fixedArraySize(ty string) (int, bool) {
	if !strings.HasPrefix(ty, "[") || !strings.HasSuffix(ty, "]") {
		return 0, false
	}
	inner := ty[1 : len(ty)-1]
	elem, count, ok := strings.Cut(inner, ";")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return 0, false
	}
	elemSize, ok := primitiveSizes[elem]
	if !ok {
		log.Infof("unknown array element type %q, assuming %d bytes", elem, fallbackSize)
		elemSize = fallbackSize
	}
	return n * elemSize, true
}

// Record lowers a state record to its fixed, offset-addressed target form:
// an 8-byte header, then every field at a strictly increasing offset. A
// bounded-sequence field expands to a backing array plus a separate length
// counter field immediately after it.
func Record(rec ir.StateRecord) ir.TargetStateRecord {
	offset := HeaderSize
	fields := make([]ir.TargetField, 0, len(rec.Fields))

	for _, f := range rec.Fields {
		if seq, ok := Sequence(f.Type, f.Bound); ok {
			backing := ir.TargetField{
				Name:   f.Name,
				Type:   seq.BackingType(),
				Size:   seq.BackingSize(),
				Offset: offset,
				Bound:  seq.Capacity,
			}
			offset += backing.Size
			counter := ir.TargetField{
				Name:   seq.LengthField(f.Name),
				Type:   seq.CounterType,
				Size:   seq.CounterSize,
				Offset: offset,
			}
			offset += counter.Size
			fields = append(fields, backing, counter)
			continue
		}

		size := FieldSize(f.Type, f.Bound)
		fields = append(fields, ir.TargetField{
			Name:   f.Name,
			Type:   TargetType(f.Type),
			Size:   size,
			Offset: offset,
		})
		offset += size
	}

	return ir.TargetStateRecord{
		Name:      rec.Name,
		Size:      offset,
		Fields:    fields,
		Accessors: AccessorMethods(rec),
	}
}

// SizeInfo computes the analyzer-facing size fact for a record.
func SizeInfo(rec ir.StateRecord) ir.AccountSizeInfo {
	total := HeaderSize
	fields := make([]ir.FieldSize, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		size := FieldSize(f.Type, f.Bound)
		fields = append(fields, ir.FieldSize{Name: f.Name, Size: size})
		total += size
	}
	return ir.AccountSizeInfo{Record: rec.Name, Size: total, Fields: fields}
}

// TargetType rewrites source type names the target runtime has no
// equivalent for. Keys become raw 32-byte arrays.
func TargetType(ty string) string {
	ty = strings.TrimSpace(ty)
	switch normalize(ty) {
	case "pubkey", "publickey":
		return "[u8; 32]"
	}
	return strings.ReplaceAll(ty, "Pubkey", "[u8; 32]")
}
