package ops

import "fmt"

// Entry is one slot in a machining sequence: an operation and whether it
// is currently enabled. Disabled entries stay in the sequence so the
// ordering survives toggling.
type Entry struct {
	Op      Operation
	Enabled bool
}

// Sequence is an ordered list of operations for one setup. The zero value
// is an empty sequence ready for use.
type Sequence struct {
	entries []Entry
}

// Add appends an enabled operation.
func (s *Sequence) Add(op Operation) {
	s.entries = append(s.entries, Entry{Op: op, Enabled: true})
}

// Len returns the number of entries, enabled or not.
func (s *Sequence) Len() int { return len(s.entries) }

// Entry returns the i-th entry.
func (s *Sequence) Entry(i int) (Entry, error) {
	if i < 0 || i >= len(s.entries) {
		return Entry{}, fmt.Errorf("sequence entry %d out of range [0,%d)", i, len(s.entries))
	}
	return s.entries[i], nil
}

// SetEnabled toggles the i-th entry.
func (s *Sequence) SetEnabled(i int, enabled bool) error {
	if i < 0 || i >= len(s.entries) {
		return fmt.Errorf("sequence entry %d out of range [0,%d)", i, len(s.entries))
	}
	s.entries[i].Enabled = enabled
	return nil
}

// Active returns the enabled operations in sequence order.
func (s *Sequence) Active() []Operation {
	out := make([]Operation, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Enabled {
			out = append(out, e.Op)
		}
	}
	return out
}

// Validate validates every enabled operation and returns the first error
// with its position.
func (s *Sequence) Validate() error {
	for i, e := range s.entries {
		if !e.Enabled {
			continue
		}
		if err := e.Op.Validate(); err != nil {
			return fmt.Errorf("sequence entry %d (%s): %w", i, e.Op.Name(), err)
		}
	}
	return nil
}
