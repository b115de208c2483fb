package layout

import (
	"fmt"
	"strings"

	"pinsmith/internal/ir"
)

// Bounded sequences replace growable collections in the target convention:
// fixed-capacity backing storage plus an explicit length counter, both laid
// out at record offsets. Every bounded sequence supports the same accessor
// contract: bounds-checked append (overflow is a caller-visible error, never
// silent truncation), length, emptiness, clear (length only, backing storage
// keeps its bytes), iteration over the live prefix, and removal-by-index
// (left shift of the live suffix, length decrement).

// defaultCapacities is the per-element-type capacity table applied when a
// field carries no explicit bound.
var defaultCapacities = map[string]int{
	"pubkey": 32, "publickey": 32, // max signers in a multisig-style list
	"u64": 100, "i64": 100, "u32": 100,
	"u16": 256, "u8": 256,
	"string":      10,
	"accountinfo": 16,
}

// defaultCapacity is the conservative bound for element types the table does
// not know.
const defaultCapacity = 32

// SequenceSpec describes one bounded sequence: its element, capacity, and
// the fixed-width counter that tracks the live length.
type SequenceSpec struct {
	Element     string // normalized element type
	ElementSize int
	Capacity    int
	CounterType string // u8 when capacity fits a byte, u16 up to 65535, else u64
	CounterSize int
}

// Sequence recognizes bounded-sequence type descriptors (Vec<T>, String) and
// resolves their capacity. Reports false for everything fixed-size.
func Sequence(ty string, bound int) (SequenceSpec, bool) {
	ty = normalize(ty)

	var elem string
	switch {
	case strings.HasPrefix(ty, "vec<") && strings.HasSuffix(ty, ">"):
		elem = ty[len("vec<") : len(ty)-1]
	case ty == "string":
		// A string is a byte sequence whose bound counts bytes.
		elem = "u8"
	default:
		return SequenceSpec{}, false
	}

	elemSize, ok := primitiveSizes[elem]
	if !ok {
		log.Infof("unknown sequence element type %q, assuming %d bytes", elem, fallbackSize)
		elemSize = fallbackSize
	}

	capacity := bound
	if capacity <= 0 {
		capacity, ok = defaultCapacities[elem]
		if !ok {
			capacity = defaultCapacity
		}
	}

	counterType, counterSize := Counter(capacity)
	return SequenceSpec{
		Element:     elem,
		ElementSize: elemSize,
		Capacity:    capacity,
		CounterType: counterType,
		CounterSize: counterSize,
	}, true
}

// Counter sizes the length counter for a capacity.
func Counter(capacity int) (string, int) {
	switch {
	case capacity <= 255:
		return "u8", 1
	case capacity <= 65535:
		return "u16", 2
	default:
		return "u64", 8
	}
}

// BackingSize is the byte size of the fixed backing array.
func (s SequenceSpec) BackingSize() int {
	return s.Capacity * s.ElementSize
}

// BackingType is the target type of the backing array.
func (s SequenceSpec) BackingType() string {
	return fmt.Sprintf("[%s; %d]", TargetType(s.Element), s.Capacity)
}

// LengthField names the counter companion of a sequence field.
func (s SequenceSpec) LengthField(name string) string {
	return name + "_len"
}

// Sequences returns the bounded-sequence fields of a record, keyed by field
// name. The body rewrite pipeline uses this to lower collection operations
// to the index-and-counter convention.
func Sequences(rec ir.StateRecord) map[string]SequenceSpec {
	out := make(map[string]SequenceSpec)
	for _, f := range rec.Fields {
		if seq, ok := Sequence(f.Type, f.Bound); ok {
			out[f.Name] = seq
		}
	}
	return out
}

// AccessorMethods generates the accessor implementation block for a record's
// bounded-sequence fields, fulfilling the accessor contract on the target
// side. Returns the empty string for records without sequences.
func AccessorMethods(rec ir.StateRecord) string {
	var b strings.Builder
	for _, f := range rec.Fields {
		seq, ok := Sequence(f.Type, f.Bound)
		if !ok {
			continue
		}
		name := f.Name
		lenField := seq.LengthField(name)
		elem := TargetType(seq.Element)

		fmt.Fprintf(&b, `
impl %s {
    pub fn push_%s(&mut self, item: %s) -> Result<(), ProgramError> {
        if self.%s as usize >= %d {
            return Err(ProgramError::Custom(0));
        }
        self.%s[self.%s as usize] = item;
        self.%s += 1;
        Ok(())
    }

    pub fn %s_len(&self) -> usize {
        self.%s as usize
    }

    pub fn %s_is_empty(&self) -> bool {
        self.%s == 0
    }

    pub fn clear_%s(&mut self) {
        self.%s = 0;
    }

    pub fn %s_iter(&self) -> impl Iterator<Item = &%s> {
        self.%s[..self.%s as usize].iter()
    }

    pub fn remove_%s(&mut self, index: usize) {
        for i in index..(self.%s as usize - 1) {
            self.%s[i] = self.%s[i + 1];
        }
        self.%s -= 1;
    }
}
`,
			rec.Name,
			name, elem,
			lenField, seq.Capacity,
			name, lenField,
			lenField,
			name, lenField,
			name, lenField,
			name, lenField,
			name, elem, name, lenField,
			name, lenField, name, name, lenField,
		)
	}
	return b.String()
}
