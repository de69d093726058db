package zoo

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Exhibit is a named enclosure with a fixed number of slots, each holding an
// animal name or nothing. The slot count never changes after construction.
type Exhibit struct {
	Name string
	Type string

	// slots[i] == "" means slot i is free.
	slots []string
}

// NewExhibit allocates an exhibit with capacity empty slots.
func NewExhibit(name, habitat string, capacity int) (*Exhibit, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.Wrap(ErrInvalidInput, "exhibit name is empty")
	}
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "exhibit capacity must be positive, got %d", capacity)
	}
	return &Exhibit{Name: name, Type: habitat, slots: make([]string, capacity)}, nil
}

// Capacity is the number of slots.
func (e *Exhibit) Capacity() int { return len(e.slots) }

// Occupied is the number of filled slots.
func (e *Exhibit) Occupied() int {
	n := 0
	for _, s := range e.slots {
		if s != "" {
			n++
		}
	}
	return n
}

// IsFull reports whether every slot is taken.
func (e *Exhibit) IsFull() bool { return e.Occupied() == len(e.slots) }

// Place puts animalName into the first free slot. It returns false when the
// exhibit is full or the name is empty.
func (e *Exhibit) Place(animalName string) bool {
	_, ok := e.place(animalName)
	return ok
}

// Remove clears the first slot holding animalName. It returns false when no
// slot holds it.
func (e *Exhibit) Remove(animalName string) bool {
	_, ok := e.vacate(animalName)
	return ok
}

// OccupantAt returns the name in slot idx. Out-of-range or empty slots
// yield ok == false.
func (e *Exhibit) OccupantAt(idx int) (name string, ok bool) {
	if idx < 0 || idx >= len(e.slots) || e.slots[idx] == "" {
		return "", false
	}
	return e.slots[idx], true
}

// Occupants lists the filled slots in slot order.
func (e *Exhibit) Occupants() []Occupant {
	var out []Occupant
	for i, s := range e.slots {
		if s != "" {
			out = append(out, Occupant{Slot: i, Name: s})
		}
	}
	return out
}

// Summary returns the listing view of the exhibit.
func (e *Exhibit) Summary() ExhibitSummary {
	return ExhibitSummary{Name: e.Name, Type: e.Type, Capacity: len(e.slots), Occupied: e.Occupied()}
}

func (e *Exhibit) place(animalName string) (int, bool) {
	if animalName == "" {
		return -1, false
	}
	for i, s := range e.slots {
		if s == "" {
			e.slots[i] = animalName
			return i, true
		}
	}
	return -1, false
}

func (e *Exhibit) vacate(animalName string) (int, bool) {
	if animalName == "" {
		return -1, false
	}
	for i, s := range e.slots {
		if s == animalName {
			e.slots[i] = ""
			return i, true
		}
	}
	return -1, false
}

// fill writes animalName into slot idx if that slot is free. Used to put an
// animal back exactly where it was.
func (e *Exhibit) fill(idx int, animalName string) bool {
	if idx < 0 || idx >= len(e.slots) || e.slots[idx] != "" {
		return false
	}
	e.slots[idx] = animalName
	return true
}

func (e *Exhibit) release(idx int) {
	if idx >= 0 && idx < len(e.slots) {
		e.slots[idx] = ""
	}
}
