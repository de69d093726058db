package zoo

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// newTestZoo registers one exhibit per (name, capacity) pair.
func newTestZoo(t *testing.T, exhibits map[string]int) (*ExhibitRegistry, *AnimalRegistry) {
	t.Helper()
	reg := NewExhibitRegistry(nil)
	for name, capacity := range exhibits {
		ex, err := NewExhibit(name, "Test", capacity)
		require.NoError(t, err)
		reg.Add(ex)
	}
	return reg, NewAnimalRegistry(reg, nil)
}

func mustExhibit(t *testing.T, reg *ExhibitRegistry, name string) *Exhibit {
	t.Helper()
	ex, err := reg.FindByName(name)
	require.NoError(t, err)
	return ex
}

func TestAnimalRegistry_Add(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 2})
	savannah := mustExhibit(t, exhibits, "Savannah")

	ok, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)
	require.True(t, ok)

	a, err := animals.ByIndex(0)
	require.NoError(t, err)
	require.Equal(t, "Savannah", a.Exhibit)
	name, occupied := savannah.OccupantAt(0)
	require.True(t, occupied)
	require.Equal(t, "Leo", name)

	rows, err := db.Query(`SELECT name, exhibit FROM Animals WHERE id=1`)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var storedName, storedExhibit string
	require.NoError(t, rows.Scan(&storedName, &storedExhibit))
	require.Equal(t, "Leo", storedName)
	require.Equal(t, "Savannah", storedExhibit)
}

func TestAnimalRegistry_AddToFullExhibit(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Burrow": 1})
	burrow := mustExhibit(t, exhibits, "Burrow")

	ok, err := animals.Add(Animal{ID: 1, Name: "Mole", Species: "Mole", Age: 2}, burrow, db)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = animals.Add(Animal{ID: 2, Name: "Vole", Species: "Vole", Age: 1}, burrow, db)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, animals.Count())
	_, err = animals.FindByID(2)
	require.True(t, errors.Is(err, ErrNotFound))
	require.Equal(t, 1, burrow.Occupied())
}

func TestAnimalRegistry_AddRejectsDuplicateID(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 3})
	savannah := mustExhibit(t, exhibits, "Savannah")

	_, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)
	ok, err := animals.Add(Animal{ID: 1, Name: "Nala", Species: "Lion", Age: 6}, savannah, db)
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrInvalidInput))
	require.Equal(t, 1, savannah.Occupied())
}

func TestAnimalRegistry_AddRejectsNegativeAge(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 3})

	ok, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: -1}, mustExhibit(t, exhibits, "Savannah"), db)
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrInvalidInput))
	require.Zero(t, animals.Count())
}

func TestAnimalRegistry_AddUndoesPlacementWhenInsertFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO Animals(id,name,species,age,exhibit) VALUES(?,?,?,?,?)`)).
		WillReturnError(errors.New("disk I/O error"))

	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 2})
	savannah := mustExhibit(t, exhibits, "Savannah")

	ok, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, WrapDB(sqlDB))
	require.Error(t, err)
	require.False(t, ok)
	require.Zero(t, animals.Count())
	require.Zero(t, savannah.Occupied())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnimalRegistry_ByIndexOutOfRange(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 5})
	savannah := mustExhibit(t, exhibits, "Savannah")
	for i, name := range []string{"Leo", "Nala"} {
		_, err := animals.Add(Animal{ID: int64(i + 1), Name: name, Species: "Lion", Age: 3}, savannah, db)
		require.NoError(t, err)
	}

	_, err := animals.ByIndex(5)
	require.True(t, errors.Is(err, ErrOutOfRange))
	_, err = animals.ByIndex(-1)
	require.True(t, errors.Is(err, ErrOutOfRange))
}

func TestAnimalRegistry_RemoveIsMemoryOnly(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 2})
	savannah := mustExhibit(t, exhibits, "Savannah")
	_, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)

	require.True(t, animals.Remove(1))
	require.False(t, animals.Remove(1))
	require.Zero(t, animals.Count())
	// The slot is the caller's to free.
	require.Equal(t, 1, savannah.Occupied())
}

func TestAnimalRegistry_Retire(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 2})
	savannah := mustExhibit(t, exhibits, "Savannah")
	_, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)

	ok, err := animals.Retire(1, db)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, animals.Count())
	require.Zero(t, savannah.Occupied())

	reloaded := NewAnimalRegistry(exhibits, nil)
	require.NoError(t, reloaded.LoadAll(db))
	require.Zero(t, reloaded.Count())

	ok, err = animals.Retire(42, db)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAnimalRegistry_RetireRestoresSlotWhenDeleteFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	store := WrapDB(sqlDB)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO Animals`)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM Animals WHERE id=?`)).
		WithArgs(1).
		WillReturnError(errors.New("database is locked"))

	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 2})
	savannah := mustExhibit(t, exhibits, "Savannah")
	_, err = animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, store)
	require.NoError(t, err)

	ok, err := animals.Retire(1, store)
	require.Error(t, err)
	require.False(t, ok)
	require.Equal(t, 1, animals.Count())
	name, _ := savannah.OccupantAt(0)
	require.Equal(t, "Leo", name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnimalRegistry_UpdateMovesExhibit(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 2, "Vet Ward": 1})
	savannah := mustExhibit(t, exhibits, "Savannah")
	ward := mustExhibit(t, exhibits, "Vet Ward")
	_, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)

	ok, err := animals.Update(0, AnimalUpdate{Name: "Leo", Species: "Lion", Age: 8, Exhibit: "Vet Ward"}, db)
	require.NoError(t, err)
	require.True(t, ok)

	a, _ := animals.ByIndex(0)
	require.Equal(t, "Vet Ward", a.Exhibit)
	require.Equal(t, 8, a.Age)
	require.Zero(t, savannah.Occupied())
	name, _ := ward.OccupantAt(0)
	require.Equal(t, "Leo", name)
}

func TestAnimalRegistry_UpdateIntoFullExhibitKeepsOriginalSlot(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 3, "Burrow": 1})
	savannah := mustExhibit(t, exhibits, "Savannah")
	burrow := mustExhibit(t, exhibits, "Burrow")

	_, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)
	_, err = animals.Add(Animal{ID: 2, Name: "Nala", Species: "Lion", Age: 6}, savannah, db)
	require.NoError(t, err)
	_, err = animals.Add(Animal{ID: 3, Name: "Mole", Species: "Mole", Age: 1}, burrow, db)
	require.NoError(t, err)
	// Free slot 0 so a naive re-place would land Nala in the wrong slot.
	_, err = animals.Retire(1, db)
	require.NoError(t, err)

	idx := -1
	for i, a := range animals.List() {
		if a.ID == 2 {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)

	ok, err := animals.Update(idx, AnimalUpdate{Name: "Nala", Species: "Lion", Age: 7, Exhibit: "Burrow"}, db)
	require.NoError(t, err)
	require.False(t, ok)

	nala, err := animals.FindByID(2)
	require.NoError(t, err)
	require.Equal(t, "Savannah", nala.Exhibit)
	require.Equal(t, 6, nala.Age)
	name, occupied := savannah.OccupantAt(1)
	require.True(t, occupied)
	require.Equal(t, "Nala", name)
	_, occupied = savannah.OccupantAt(0)
	require.False(t, occupied)
	require.Equal(t, 1, burrow.Occupied())
}

func TestAnimalRegistry_UpdateRenameKeepsSlot(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 3})
	savannah := mustExhibit(t, exhibits, "Savannah")
	_, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)
	_, err = animals.Add(Animal{ID: 2, Name: "Nala", Species: "Lion", Age: 6}, savannah, db)
	require.NoError(t, err)
	savannah.Remove("Leo")

	ok, err := animals.Update(1, AnimalUpdate{Name: "Queen Nala", Species: "Lion", Age: 6}, db)
	require.NoError(t, err)
	require.True(t, ok)
	name, _ := savannah.OccupantAt(1)
	require.Equal(t, "Queen Nala", name)
	_, occupied := savannah.OccupantAt(0)
	require.False(t, occupied)
}

func TestAnimalRegistry_UpdateUnknownExhibit(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 2})
	savannah := mustExhibit(t, exhibits, "Savannah")
	_, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)

	ok, err := animals.Update(0, AnimalUpdate{Name: "Leo", Species: "Lion", Age: 7, Exhibit: "Atlantis"}, db)
	require.False(t, ok)
	require.True(t, errors.Is(err, ErrNotFound))
	name, _ := savannah.OccupantAt(0)
	require.Equal(t, "Leo", name)

	_, err = animals.Update(3, AnimalUpdate{Name: "Ghost"}, db)
	require.True(t, errors.Is(err, ErrOutOfRange))
}

func TestAnimalRegistry_UpdateUndoneWhenStoreFails(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	store := WrapDB(sqlDB)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO Animals`)).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE Animals SET name=?, species=?, age=?, exhibit=? WHERE id=?`)).
		WillReturnError(errors.New("disk full"))

	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 2, "Vet Ward": 1})
	savannah := mustExhibit(t, exhibits, "Savannah")
	ward := mustExhibit(t, exhibits, "Vet Ward")
	_, err = animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, store)
	require.NoError(t, err)

	ok, err := animals.Update(0, AnimalUpdate{Name: "Leo", Species: "Lion", Age: 8, Exhibit: "Vet Ward"}, store)
	require.Error(t, err)
	require.False(t, ok)

	a, _ := animals.ByIndex(0)
	require.Equal(t, "Savannah", a.Exhibit)
	require.Equal(t, 7, a.Age)
	require.Zero(t, ward.Occupied())
	name, _ := savannah.OccupantAt(0)
	require.Equal(t, "Leo", name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnimalRegistry_LoadAllPlacesAnimals(t *testing.T) {
	db := tempDB(t)
	for _, stmt := range []string{
		`INSERT INTO Animals(id,name,species,age,exhibit) VALUES(1,'Leo','Lion',7,'Savannah')`,
		`INSERT INTO Animals(id,name,species,age,exhibit) VALUES(2,'Nessie','Plesiosaur',300,'Loch')`,
		`INSERT INTO Animals(id,name,species,age,exhibit) VALUES(3,'Nala','Lion',6,'Savannah')`,
		`INSERT INTO Animals(id,name,species,age,exhibit) VALUES(4,'Kion','Lion',2,'Savannah')`,
	} {
		require.NoError(t, db.Exec(stmt))
	}

	core, logs := observer.New(zap.WarnLevel)
	exhibits, _ := newTestZoo(t, map[string]int{"Savannah": 2})
	animals := NewAnimalRegistry(exhibits, zap.New(core).Sugar())
	require.NoError(t, animals.LoadAll(db))

	require.Equal(t, 4, animals.Count())
	savannah := mustExhibit(t, exhibits, "Savannah")
	require.Equal(t, []Occupant{{Slot: 0, Name: "Leo"}, {Slot: 1, Name: "Nala"}}, savannah.Occupants())

	missing := logs.FilterMessage("Animal references a missing exhibit, left unplaced").All()
	require.Len(t, missing, 1)
	require.Equal(t, int64(2), missing[0].ContextMap()["animal_id"])
	require.Equal(t, 1, logs.FilterMessage("Exhibit is full, animal left unplaced").Len())
}

func TestAnimalRegistry_LoadAllTwiceKeepsOneSlotPerAnimal(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 3})
	savannah := mustExhibit(t, exhibits, "Savannah")

	ok, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, animals.LoadAll(db))
	require.NoError(t, animals.LoadAll(db))

	require.Equal(t, 1, animals.Count())
	require.Equal(t, []Occupant{{Slot: 0, Name: "Leo"}}, savannah.Occupants())
}

func TestAnimalRegistry_LoadAllScanFailureLeavesStateUntouched(t *testing.T) {
	db := tempDB(t)
	exhibits, animals := newTestZoo(t, map[string]int{"Savannah": 3})
	savannah := mustExhibit(t, exhibits, "Savannah")
	_, err := animals.Add(Animal{ID: 1, Name: "Leo", Species: "Lion", Age: 7}, savannah, db)
	require.NoError(t, err)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	mock.ExpectQuery("SELECT id").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "species", "age", "exhibit"}).
			AddRow(2, "Nala", "Lion", 6, "Savannah").
			AddRow("not-a-number", "Kion", "Lion", 2, "Savannah"),
	)

	require.Error(t, animals.LoadAll(WrapDB(sqlDB)))
	require.Equal(t, 1, animals.Count())
	require.Equal(t, []Occupant{{Slot: 0, Name: "Leo"}}, savannah.Occupants())
	require.NoError(t, mock.ExpectationsWereMet())
}
