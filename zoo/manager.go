package zoo

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// DefaultExhibit describes the exhibit installed when the store holds none.
type DefaultExhibit struct {
	Name     string
	Type     string
	Capacity int
}

// ZooManager is a thin façade over the registries and the Database, keeping
// console code simple.
type ZooManager struct {
	db    *Database
	store Store
	log   *zap.SugaredLogger

	Exhibits *ExhibitRegistry
	Animals  *AnimalRegistry
	Care     *CareLedger
}

// NewZooManager opens (or creates) the SQLite database at dbPath. Call Load
// before using the registries.
func NewZooManager(dbPath string, log *zap.SugaredLogger) (*ZooManager, error) {
	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	m := NewZooManagerWithStore(db, log)
	m.db = db
	return m, nil
}

// NewZooManagerWithStore builds a manager over an arbitrary Store.
func NewZooManagerWithStore(store Store, log *zap.SugaredLogger) *ZooManager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	exhibits := NewExhibitRegistry(log.With("component", "exhibits"))
	return &ZooManager{
		store:    store,
		log:      log,
		Exhibits: exhibits,
		Animals:  NewAnimalRegistry(exhibits, log.With("component", "animals")),
		Care:     NewCareLedger(log.With("component", "care")),
	}
}

// Close closes the underlying database, if the manager opened one.
func (zm *ZooManager) Close() error {
	if zm.db == nil {
		return nil
	}
	return zm.db.Close()
}

// Load restores state from the store. Exhibits load first because animal
// loading re-derives slot occupancy from them. If no exhibit was persisted
// and def has a name, def is created and saved.
func (zm *ZooManager) Load(def DefaultExhibit) error {
	if err := zm.Exhibits.LoadAll(zm.store); err != nil {
		return err
	}
	if err := zm.Animals.LoadAll(zm.store); err != nil {
		return err
	}
	records, err := zm.Care.LoadAll(zm.store)
	if err != nil {
		return err
	}

	if zm.Exhibits.Count() == 0 && def.Name != "" {
		if _, err := zm.AddExhibit(def.Name, def.Type, def.Capacity); err != nil {
			return errors.Wrap(err, "install default exhibit")
		}
	}

	zm.log.Infow("Zoo state loaded",
		"exhibits", zm.Exhibits.Count(),
		"animals", zm.Animals.Count(),
		"care_records", records,
	)
	return nil
}

// ------------------ Exhibit helpers ------------------

// AddExhibit creates, registers and persists an exhibit. The exhibit stays
// registered even when the insert fails; the error is returned.
func (zm *ZooManager) AddExhibit(name, habitat string, capacity int) (*Exhibit, error) {
	ex, err := NewExhibit(name, habitat, capacity)
	if err != nil {
		return nil, err
	}
	zm.Exhibits.Add(ex)
	return ex, zm.Exhibits.Persist(ex, zm.store)
}

// ------------------ Animal helpers ------------------

// AddAnimal places a new animal into the exhibit at exhibitIdx.
func (zm *ZooManager) AddAnimal(a Animal, exhibitIdx int) (bool, error) {
	ex, err := zm.Exhibits.ByIndex(exhibitIdx)
	if err != nil {
		return false, err
	}
	return zm.Animals.Add(a, ex, zm.store)
}

func (zm *ZooManager) UpdateAnimal(idx int, in AnimalUpdate) (bool, error) {
	return zm.Animals.Update(idx, in, zm.store)
}

// RemoveAnimal retires the animal at idx.
func (zm *ZooManager) RemoveAnimal(idx int) (bool, error) {
	a, err := zm.Animals.ByIndex(idx)
	if err != nil {
		return false, err
	}
	return zm.Animals.Retire(a.ID, zm.store)
}

// ------------------ Care helpers ------------------

// RecordFeeding appends and persists a feeding for the animal at idx. The
// in-memory record is kept when the insert fails.
func (zm *ZooManager) RecordFeeding(idx int, food string, amountKg float64) (CareRecord, error) {
	a, err := zm.Animals.ByIndex(idx)
	if err != nil {
		return CareRecord{}, err
	}
	rec, err := zm.Care.RecordFeeding(a.ID, food, amountKg)
	if err != nil {
		return CareRecord{}, err
	}
	return rec, zm.Care.PersistFeeding(rec, zm.store)
}

// RecordHealthCheck appends and persists a health check for the animal at
// idx. The in-memory record is kept when the insert fails.
func (zm *ZooManager) RecordHealthCheck(idx int, vet, notes, diagnosis string) (CareRecord, error) {
	a, err := zm.Animals.ByIndex(idx)
	if err != nil {
		return CareRecord{}, err
	}
	rec, err := zm.Care.RecordHealthCheck(a.ID, vet, notes, diagnosis)
	if err != nil {
		return CareRecord{}, err
	}
	return rec, zm.Care.PersistHealthCheck(rec, zm.store)
}
