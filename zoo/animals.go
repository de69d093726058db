package zoo

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// AnimalRegistry owns every Animal of the run and keeps exhibit slots in
// step with each animal's Exhibit reference.
type AnimalRegistry struct {
	animals  []*Animal
	exhibits *ExhibitRegistry
	log      *zap.SugaredLogger
}

// AnimalUpdate carries the new field values for Update. An empty Exhibit
// keeps the current one.
type AnimalUpdate struct {
	Name    string
	Species string
	Age     int
	Exhibit string
}

// NewAnimalRegistry returns an empty registry resolving exhibit names
// through exhibits.
func NewAnimalRegistry(exhibits *ExhibitRegistry, log *zap.SugaredLogger) *AnimalRegistry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AnimalRegistry{exhibits: exhibits, log: log}
}

// Count returns the number of animals.
func (r *AnimalRegistry) Count() int { return len(r.animals) }

// ByIndex returns the animal at position idx or an ErrOutOfRange error.
// The pointer stays valid until the animal is removed.
func (r *AnimalRegistry) ByIndex(idx int) (*Animal, error) {
	if idx < 0 || idx >= len(r.animals) {
		return nil, outOfRange("animal", idx, len(r.animals))
	}
	return r.animals[idx], nil
}

// FindByID returns the animal with the given id or an ErrNotFound error.
func (r *AnimalRegistry) FindByID(id int64) (*Animal, error) {
	for _, a := range r.animals {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "animal %d", id)
}

// List returns a copy of every animal in insertion order.
func (r *AnimalRegistry) List() []Animal {
	out := make([]Animal, 0, len(r.animals))
	for _, a := range r.animals {
		out = append(out, *a)
	}
	return out
}

// Add places a into target, appends it and inserts its row. It returns
// false with a nil error when target is full; nothing changes in that case.
// If the insert fails the slot and the append are undone and the store
// error is returned.
func (r *AnimalRegistry) Add(a Animal, target *Exhibit, store Store) (bool, error) {
	if err := a.validate(); err != nil {
		return false, err
	}
	if target == nil {
		return false, errors.Wrap(ErrInvalidInput, "no target exhibit")
	}
	if _, err := r.FindByID(a.ID); err == nil {
		return false, errors.WithHint(
			errors.Wrapf(ErrInvalidInput, "animal id %d already registered", a.ID),
			"pick an unused id")
	}
	if !r.exhibits.Exists(target.Name) {
		r.log.Warnw("Target exhibit is not registered", "animal_id", a.ID, "exhibit", target.Name)
	}

	slot, ok := target.place(a.Name)
	if !ok {
		r.log.Infow("Exhibit is full", "exhibit", target.Name, "capacity", target.Capacity())
		return false, nil
	}
	a.Exhibit = target.Name
	r.animals = append(r.animals, &a)

	if err := store.Exec(`INSERT INTO Animals(id,name,species,age,exhibit) VALUES(?,?,?,?,?)`,
		a.ID, a.Name, a.Species, a.Age, a.Exhibit); err != nil {
		target.release(slot)
		r.animals = r.animals[:len(r.animals)-1]
		r.log.Errorw("Failed to persist animal, placement undone", "animal_id", a.ID, "exhibit", a.Exhibit, "error", err)
		return false, errors.Wrapf(err, "insert animal %d", a.ID)
	}
	return true, nil
}

// Remove deletes the first animal with the given id from memory only. The
// caller must free its exhibit slot; Retire does both and deletes the row.
func (r *AnimalRegistry) Remove(id int64) bool {
	for i, a := range r.animals {
		if a.ID == id {
			r.animals = append(r.animals[:i], r.animals[i+1:]...)
			return true
		}
	}
	return false
}

// Retire frees the animal's exhibit slot, deletes its row and removes it
// from memory. The slot is restored if the delete fails.
func (r *AnimalRegistry) Retire(id int64, store Store) (bool, error) {
	a, err := r.FindByID(id)
	if err != nil {
		return false, nil
	}

	var (
		home *Exhibit
		slot = -1
	)
	if ex, err := r.exhibits.FindByName(a.Exhibit); err == nil {
		if i, ok := ex.vacate(a.Name); ok {
			home, slot = ex, i
		}
	}
	if home == nil {
		r.log.Warnw("Retiring animal that occupies no exhibit slot", "animal_id", id, "exhibit", a.Exhibit)
	}

	if err := store.Exec(`DELETE FROM Animals WHERE id=?`, id); err != nil {
		if home != nil {
			home.fill(slot, a.Name)
		}
		r.log.Errorw("Failed to delete animal", "animal_id", id, "error", err)
		return false, errors.Wrapf(err, "delete animal %d", id)
	}
	return r.Remove(id), nil
}

// Update rewrites the animal at idx. A change of exhibit moves its slot;
// when the new exhibit is full the animal keeps its original slot, no field
// changes, and Update returns false with a nil error. A failed row update
// is rolled back the same way and returns the store error.
func (r *AnimalRegistry) Update(idx int, in AnimalUpdate, store Store) (bool, error) {
	a, err := r.ByIndex(idx)
	if err != nil {
		return false, err
	}
	next := Animal{ID: a.ID, Name: in.Name, Species: in.Species, Age: in.Age, Exhibit: in.Exhibit}
	if next.Exhibit == "" {
		next.Exhibit = a.Exhibit
	}
	if err := next.validate(); err != nil {
		return false, err
	}

	m, ok, err := r.relocate(a, next.Name, next.Exhibit)
	if err != nil || !ok {
		return false, err
	}

	if err := store.Exec(`UPDATE Animals SET name=?, species=?, age=?, exhibit=? WHERE id=?`,
		next.Name, next.Species, next.Age, next.Exhibit, next.ID); err != nil {
		m.undo()
		r.log.Errorw("Failed to persist animal update, change undone", "animal_id", a.ID, "error", err)
		return false, errors.Wrapf(err, "update animal %d", a.ID)
	}
	*a = next
	return true, nil
}

// LoadAll replaces the registry contents with the persisted animals and
// places each into its exhibit. Exhibits must already be loaded. Slots held
// by the animals being replaced are freed first. An animal whose exhibit is
// missing or full is kept but left unplaced, with a warning. When reading
// fails the registry and every exhibit are left untouched.
func (r *AnimalRegistry) LoadAll(store Store) error {
	rows, err := store.Query(`SELECT id, COALESCE(name,''), COALESCE(species,''), COALESCE(age,0), COALESCE(exhibit,'') FROM Animals ORDER BY id`)
	if err != nil {
		return errors.Wrap(err, "select animals")
	}
	defer rows.Close()

	var loaded []*Animal
	for rows.Next() {
		var a Animal
		if err := rows.Scan(&a.ID, &a.Name, &a.Species, &a.Age, &a.Exhibit); err != nil {
			return errors.Wrap(err, "scan animal")
		}
		loaded = append(loaded, &a)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate animals")
	}

	for _, a := range r.animals {
		if ex, err := r.exhibits.FindByName(a.Exhibit); err == nil {
			ex.vacate(a.Name)
		}
	}

	for _, a := range loaded {
		ex, err := r.exhibits.FindByName(a.Exhibit)
		if err != nil {
			r.log.Warnw("Animal references a missing exhibit, left unplaced", "animal_id", a.ID, "exhibit", a.Exhibit)
			continue
		}
		if !ex.Place(a.Name) {
			r.log.Warnw("Exhibit is full, animal left unplaced", "animal_id", a.ID, "exhibit", a.Exhibit)
		}
	}

	r.animals = loaded
	r.log.Debugw("Animals loaded", "count", len(loaded))
	return nil
}

// ---------------------------------------------------------------------------
// Slot moves
// ---------------------------------------------------------------------------

// relocation records one slot move so it can be reversed exactly.
type relocation struct {
	from     *Exhibit
	fromSlot int
	fromName string

	to     *Exhibit
	toSlot int
}

func (m relocation) undo() {
	if m.to != nil {
		m.to.release(m.toSlot)
	}
	if m.from != nil {
		m.from.fill(m.fromSlot, m.fromName)
	}
}

// relocate moves a's slot so that newName occupies a slot of newExhibit.
// On failure every slot is as it was before the call.
func (r *AnimalRegistry) relocate(a *Animal, newName, newExhibit string) (relocation, bool, error) {
	m := relocation{fromName: a.Name, fromSlot: -1, toSlot: -1}
	if cur, err := r.exhibits.FindByName(a.Exhibit); err == nil {
		if slot, ok := cur.vacate(a.Name); ok {
			m.from, m.fromSlot = cur, slot
		}
	}

	if newExhibit == a.Exhibit {
		if m.from != nil {
			m.from.fill(m.fromSlot, newName)
			m.to, m.toSlot = m.from, m.fromSlot
		}
		return m, true, nil
	}

	target, err := r.exhibits.FindByName(newExhibit)
	if err != nil {
		m.undo()
		return relocation{}, false, err
	}
	slot, ok := target.place(newName)
	if !ok {
		m.undo()
		r.log.Infow("Exhibit is full, animal stays in its current exhibit",
			"animal_id", a.ID, "exhibit", newExhibit, "current", a.Exhibit)
		return relocation{}, false, nil
	}
	m.to, m.toSlot = target, slot
	return m, true, nil
}
