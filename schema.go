package propstore

import "github.com/TheBitDrifter/mask"

// MaxSchemaColumns bounds how many distinct column names one registry can
// map to query bits.
const MaxSchemaColumns = 64

var _ Schema = &columnSchema{}

type columnSchema struct {
	names       []string
	bits        map[string]uint32
	maxCapacity int
}

func newColumnSchema(capacity int) *columnSchema {
	return &columnSchema{
		bits:        make(map[string]uint32),
		maxCapacity: capacity,
	}
}

func (s *columnSchema) Lookup(name string) (uint32, bool) {
	bit, ok := s.bits[name]
	return bit, ok
}

// BitFor returns name's bit, assigning the next free one on first use.
func (s *columnSchema) BitFor(name string) (uint32, error) {
	if bit, ok := s.bits[name]; ok {
		return bit, nil
	}
	if len(s.names) >= s.maxCapacity {
		return 0, SchemaFullError{Capacity: s.maxCapacity}
	}
	bit := uint32(len(s.names))
	s.bits[name] = bit
	s.names = append(s.names, name)
	return bit, nil
}

func (s *columnSchema) Len() int {
	return len(s.names)
}

// columnMask is a set of column names: a bit per name the schema could map,
// the remaining names kept verbatim. A full schema stays full, so within one
// evaluation a name lands on the same side every time.
type columnMask struct {
	bits     mask.Mask
	overflow map[string]struct{}
}

func maskOf(schema Schema, names []string) columnMask {
	var m columnMask
	for _, name := range names {
		bit, err := schema.BitFor(name)
		if err != nil {
			if m.overflow == nil {
				m.overflow = make(map[string]struct{})
			}
			m.overflow[name] = struct{}{}
			continue
		}
		m.bits.Mark(bit)
	}
	return m
}

func (m columnMask) containsAll(other columnMask) bool {
	if !m.bits.ContainsAll(other.bits) {
		return false
	}
	for name := range other.overflow {
		if _, ok := m.overflow[name]; !ok {
			return false
		}
	}
	return true
}

func (m columnMask) containsAny(other columnMask) bool {
	if m.bits.ContainsAny(other.bits) {
		return true
	}
	return m.sharesOverflow(other)
}

func (m columnMask) containsNone(other columnMask) bool {
	return m.bits.ContainsNone(other.bits) && !m.sharesOverflow(other)
}

func (m columnMask) sharesOverflow(other columnMask) bool {
	for name := range other.overflow {
		if _, ok := m.overflow[name]; ok {
			return true
		}
	}
	return false
}
