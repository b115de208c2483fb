package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinsmith/internal/ir"
)

func TestFieldSizePrimitives(t *testing.T) {
	assert.Equal(t, 1, FieldSize("bool", 0))
	assert.Equal(t, 1, FieldSize("u8", 0))
	assert.Equal(t, 2, FieldSize("u16", 0))
	assert.Equal(t, 4, FieldSize("u32", 0))
	assert.Equal(t, 8, FieldSize("u64", 0))
	assert.Equal(t, 16, FieldSize("u128", 0))
	assert.Equal(t, 32, FieldSize("Pubkey", 0))
}

func TestFieldSizeOption(t *testing.T) {
	assert.Equal(t, 33, FieldSize("Option<Pubkey>", 0))
	assert.Equal(t, 9, FieldSize("Option<u64>", 0))
	assert.Equal(t, 2, FieldSize("Option<bool>", 0))
	// Whitespace and case are insignificant.
	assert.Equal(t, 33, FieldSize("option< pubkey >", 0))
}

func TestFieldSizeFixedArray(t *testing.T) {
	assert.Equal(t, 64, FieldSize("[u8; 64]", 0))
	assert.Equal(t, 24, FieldSize("[u64; 3]", 0))
}

func TestFieldSizeUnknownFallsBack(t *testing.T) {
	assert.Equal(t, 32, FieldSize("SomeExoticType", 0))
}

func TestRecordBasicLayout(t *testing.T) {
	rec := ir.StateRecord{
		Name: "Config",
		Fields: []ir.StateField{
			{Name: "flag", Type: "u8"},
			{Name: "count", Type: "u32"},
			{Name: "authority", Type: "Pubkey"},
		},
	}

	out := Record(rec)
	require.Len(t, out.Fields, 3)

	// 8-byte header, then fields back to back: 8 + 1 + 4 + 32.
	assert.Equal(t, 45, out.Size)
	assert.Equal(t, 8, out.Fields[0].Offset)
	assert.Equal(t, 9, out.Fields[1].Offset)
	assert.Equal(t, 13, out.Fields[2].Offset)
	assert.Equal(t, "[u8; 32]", out.Fields[2].Type)
}

func TestRecordOffsetsStrictlyIncrease(t *testing.T) {
	rec := ir.StateRecord{
		Name: "Mixed",
		Fields: []ir.StateField{
			{Name: "a", Type: "u64"},
			{Name: "names", Type: "Vec<Pubkey>"},
			{Name: "b", Type: "Option<u64>"},
			{Name: "tail", Type: "String", Bound: 64},
		},
	}

	out := Record(rec)
	prev := 0
	for _, f := range out.Fields {
		assert.Greater(t, f.Offset, prev, "field %s", f.Name)
		assert.GreaterOrEqual(t, f.Offset, HeaderSize)
		prev = f.Offset
	}
	last := out.Fields[len(out.Fields)-1]
	assert.Equal(t, last.Offset+last.Size, out.Size)
}

func TestRecordSequenceExpansion(t *testing.T) {
	rec := ir.StateRecord{
		Name: "Registry",
		Fields: []ir.StateField{
			{Name: "members", Type: "Vec<Pubkey>"},
		},
	}

	out := Record(rec)
	require.Len(t, out.Fields, 2)

	backing := out.Fields[0]
	counter := out.Fields[1]

	// Default Pubkey capacity is 32 entries: 32 * 32 bytes of backing.
	assert.Equal(t, "members", backing.Name)
	assert.Equal(t, "[[u8; 32]; 32]", backing.Type)
	assert.Equal(t, 1024, backing.Size)
	assert.Equal(t, 32, backing.Bound)
	assert.Equal(t, 8, backing.Offset)

	assert.Equal(t, "members_len", counter.Name)
	assert.Equal(t, "u8", counter.Type)
	assert.Equal(t, 1, counter.Size)
	assert.Equal(t, 8+1024, counter.Offset)

	assert.Equal(t, 8+1024+1, out.Size)
}

func TestSequenceExplicitBound(t *testing.T) {
	seq, ok := Sequence("Vec<u64>", 300)
	require.True(t, ok)
	assert.Equal(t, 300, seq.Capacity)
	assert.Equal(t, "u16", seq.CounterType)
	assert.Equal(t, 2, seq.CounterSize)
	assert.Equal(t, 2400, seq.BackingSize())
}

func TestSequenceDefaultCapacities(t *testing.T) {
	cases := []struct {
		ty       string
		capacity int
	}{
		{"Vec<Pubkey>", 32},
		{"Vec<u64>", 100},
		{"Vec<u32>", 100},
		{"Vec<u8>", 256},
		{"Vec<u16>", 256},
		{"String", 256}, // byte sequence, u8 default
	}
	for _, c := range cases {
		seq, ok := Sequence(c.ty, 0)
		require.True(t, ok, c.ty)
		assert.Equal(t, c.capacity, seq.Capacity, c.ty)
	}
}

func TestSequenceRejectsFixedTypes(t *testing.T) {
	_, ok := Sequence("u64", 0)
	assert.False(t, ok)
	_, ok = Sequence("Pubkey", 0)
	assert.False(t, ok)
	_, ok = Sequence("[u8; 32]", 0)
	assert.False(t, ok)
}

func TestCounterWidths(t *testing.T) {
	ty, size := Counter(255)
	assert.Equal(t, "u8", ty)
	assert.Equal(t, 1, size)

	ty, size = Counter(256)
	assert.Equal(t, "u16", ty)
	assert.Equal(t, 2, size)

	ty, size = Counter(65535)
	assert.Equal(t, "u16", ty)
	assert.Equal(t, 2, size)

	ty, size = Counter(65536)
	assert.Equal(t, "u64", ty)
	assert.Equal(t, 8, size)
}

func TestSizeInfo(t *testing.T) {
	rec := ir.StateRecord{
		Name: "Vault",
		Fields: []ir.StateField{
			{Name: "owner", Type: "Pubkey"},
			{Name: "balance", Type: "u64"},
		},
	}

	info := SizeInfo(rec)
	assert.Equal(t, "Vault", info.Record)
	assert.Equal(t, 48, info.Size)
	require.Len(t, info.Fields, 2)
	assert.Equal(t, 32, info.Fields[0].Size)
	assert.Equal(t, 8, info.Fields[1].Size)
}

func TestAccessorMethods(t *testing.T) {
	rec := ir.StateRecord{
		Name: "Registry",
		Fields: []ir.StateField{
			{Name: "owner", Type: "Pubkey"},
			{Name: "members", Type: "Vec<Pubkey>"},
		},
	}

	code := AccessorMethods(rec)
	assert.Contains(t, code, "impl Registry")
	assert.Contains(t, code, "pub fn push_members(&mut self, item: [u8; 32]) -> Result<(), ProgramError>")
	assert.Contains(t, code, "pub fn members_len(&self) -> usize")
	assert.Contains(t, code, "pub fn members_is_empty(&self) -> bool")
	assert.Contains(t, code, "pub fn clear_members(&mut self)")
	assert.Contains(t, code, "pub fn members_iter(&self)")
	assert.Contains(t, code, "pub fn remove_members(&mut self, index: usize)")

	// Append is bounds-checked against the capacity, never silently truncated.
	assert.Contains(t, code, "if self.members_len as usize >= 32")
	assert.Contains(t, code, "return Err(ProgramError::Custom(0));")

	// Fixed fields generate nothing.
	assert.Equal(t, 1, strings.Count(code, "impl Registry"))
}

func TestAccessorMethodsEmptyWithoutSequences(t *testing.T) {
	rec := ir.StateRecord{
		Name:   "Flat",
		Fields: []ir.StateField{{Name: "x", Type: "u64"}},
	}
	assert.Empty(t, AccessorMethods(rec))
}

func TestTargetType(t *testing.T) {
	assert.Equal(t, "[u8; 32]", TargetType("Pubkey"))
	assert.Equal(t, "u64", TargetType("u64"))
	assert.Equal(t, "Option<[u8; 32]>", TargetType("Option<Pubkey>"))
}
