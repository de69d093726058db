package zoo

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ExhibitRegistry owns every Exhibit of the run, in insertion order.
type ExhibitRegistry struct {
	exhibits []*Exhibit
	log      *zap.SugaredLogger
}

// NewExhibitRegistry returns an empty registry. A nil logger discards output.
func NewExhibitRegistry(log *zap.SugaredLogger) *ExhibitRegistry {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ExhibitRegistry{log: log}
}

// Add appends ex. Names are not checked for duplicates; FindByName returns
// the first match.
func (r *ExhibitRegistry) Add(ex *Exhibit) {
	r.exhibits = append(r.exhibits, ex)
}

// Count returns the number of exhibits.
func (r *ExhibitRegistry) Count() int { return len(r.exhibits) }

// FindIndex returns the position of the first exhibit called name, or -1.
func (r *ExhibitRegistry) FindIndex(name string) int {
	for i, ex := range r.exhibits {
		if ex.Name == name {
			return i
		}
	}
	return -1
}

// Exists reports whether an exhibit called name is registered.
func (r *ExhibitRegistry) Exists(name string) bool { return r.FindIndex(name) >= 0 }

// FindByName returns the exhibit called name or an ErrNotFound error.
func (r *ExhibitRegistry) FindByName(name string) (*Exhibit, error) {
	i := r.FindIndex(name)
	if i < 0 {
		return nil, errors.WithHint(
			errors.Wrapf(ErrNotFound, "exhibit %q", name),
			"add the exhibit from the Exhibits menu first")
	}
	return r.exhibits[i], nil
}

// ByIndex returns the exhibit at position idx or an ErrOutOfRange error.
func (r *ExhibitRegistry) ByIndex(idx int) (*Exhibit, error) {
	if idx < 0 || idx >= len(r.exhibits) {
		return nil, outOfRange("exhibit", idx, len(r.exhibits))
	}
	return r.exhibits[idx], nil
}

// List returns a summary per exhibit in insertion order.
func (r *ExhibitRegistry) List() []ExhibitSummary {
	out := make([]ExhibitSummary, 0, len(r.exhibits))
	for _, ex := range r.exhibits {
		out = append(out, ex.Summary())
	}
	return out
}

// LoadAll replaces the registry contents with the persisted exhibits. Every
// exhibit comes back with empty slots: occupancy lives in the Animals table
// and is restored by AnimalRegistry.LoadAll, which must run afterwards.
func (r *ExhibitRegistry) LoadAll(store Store) error {
	rows, err := store.Query(`SELECT COALESCE(name,''), COALESCE(type,''), COALESCE(capacity,0) FROM Exhibits ORDER BY rowid`)
	if err != nil {
		return errors.Wrap(err, "select exhibits")
	}
	defer rows.Close()

	var loaded []*Exhibit
	for rows.Next() {
		var (
			name, habitat string
			capacity      int
		)
		if err := rows.Scan(&name, &habitat, &capacity); err != nil {
			return errors.Wrap(err, "scan exhibit")
		}
		ex, err := NewExhibit(name, habitat, capacity)
		if err != nil {
			r.log.Warnw("Skipping persisted exhibit", "exhibit", name, "capacity", capacity, "error", err)
			continue
		}
		loaded = append(loaded, ex)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate exhibits")
	}

	r.exhibits = loaded
	r.log.Debugw("Exhibits loaded", "count", len(loaded))
	return nil
}

// Persist inserts a row for ex. There is no upsert: a second insert of the
// same name fails on the primary key and is reported as an error.
func (r *ExhibitRegistry) Persist(ex *Exhibit, store Store) error {
	if err := store.Exec(`INSERT INTO Exhibits(name,type,capacity) VALUES(?,?,?)`, ex.Name, ex.Type, ex.Capacity()); err != nil {
		r.log.Errorw("Failed to persist exhibit", "exhibit", ex.Name, "error", err)
		return errors.Wrapf(err, "insert exhibit %q", ex.Name)
	}
	return nil
}
