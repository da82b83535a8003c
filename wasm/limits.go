package wasm

// Limits is the (min, max?, shared?) triple shared by table and memory
// types. The wire flag byte encodes the three legal combinations:
// 0 = no max, 1 = has max, 3 = has max + shared (threads proposal).
type Limits struct {
	Min    uint32
	Max    *uint32
	Shared bool
}

// LimitsFlags are the three legal wire encodings of a Limits' presence
// bits; any other byte value is "invalid limits flags" (spec.md §4.2).
const (
	LimitsFlagNoMax        byte = 0
	LimitsFlagHasMax       byte = 1
	LimitsFlagHasMaxShared byte = 3
)

// Flag returns the wire flag byte for l, assuming l is well-formed (Shared
// implies Max != nil, enforced by the decoder/converter before this is
// called).
func (l Limits) Flag() byte {
	switch {
	case l.Shared:
		return LimitsFlagHasMaxShared
	case l.Max != nil:
		return LimitsFlagHasMax
	default:
		return LimitsFlagNoMax
	}
}

// TableType pairs an element RefType with Limits.
type TableType struct {
	ElemType RefType
	Limits   Limits
}

// MemoryType is a Limits alone; a memory's unit is 64KiB pages.
type MemoryType struct {
	Limits Limits
}
