package zoo

import (
	"iter"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// CareLedger keeps the care records of each animal in creation order.
// Records are never modified once appended.
type CareLedger struct {
	records map[int64][]CareRecord
	now     func() time.Time
	log     *zap.SugaredLogger
}

// NewCareLedger returns an empty ledger stamping records with time.Now.
func NewCareLedger(log *zap.SugaredLogger) *CareLedger {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CareLedger{
		records: make(map[int64][]CareRecord),
		now:     time.Now,
		log:     log,
	}
}

// RecordFeeding appends a feeding record for animalID.
func (l *CareLedger) RecordFeeding(animalID int64, food string, amountKg float64) (CareRecord, error) {
	if math.IsNaN(amountKg) || math.IsInf(amountKg, 0) || amountKg < 0 {
		return CareRecord{}, errors.Wrapf(ErrInvalidInput, "feeding amount must be a non-negative number, got %g", amountKg)
	}
	rec := CareRecord{
		Kind:     CareFeeding,
		AnimalID: animalID,
		At:       l.now(),
		Feeding:  &Feeding{Food: food, AmountKg: amountKg},
	}
	l.append(rec)
	return rec, nil
}

// RecordHealthCheck appends a health check record for animalID. The vet
// name may not contain the diagnosis separator and the diagnosis may not
// contain the notes separator, or the stored details could not be split back.
func (l *CareLedger) RecordHealthCheck(animalID int64, vet, notes, diagnosis string) (CareRecord, error) {
	if strings.Contains(vet, diagnosisLabel) {
		return CareRecord{}, errors.WithHint(
			errors.Wrapf(ErrInvalidInput, "vet name %q contains %q", vet, diagnosisLabel),
			"remove the '|' from the vet name")
	}
	if strings.Contains(diagnosis, notesLabel) {
		return CareRecord{}, errors.WithHint(
			errors.Wrapf(ErrInvalidInput, "diagnosis %q contains %q", diagnosis, notesLabel),
			"move the extra text into the notes")
	}
	rec := CareRecord{
		Kind:     CareHealth,
		AnimalID: animalID,
		At:       l.now(),
		Health:   &HealthCheck{Vet: vet, Notes: notes, Diagnosis: diagnosis},
	}
	l.append(rec)
	return rec, nil
}

func (l *CareLedger) append(rec CareRecord) {
	l.records[rec.AnimalID] = append(l.records[rec.AnimalID], rec)
}

// RecordsFor yields the records of animalID oldest first. The sequence is a
// snapshot taken at call time.
func (l *CareLedger) RecordsFor(animalID int64) iter.Seq[CareRecord] {
	return slices.Values(slices.Clone(l.records[animalID]))
}

// Count returns the number of records held for animalID.
func (l *CareLedger) Count(animalID int64) int { return len(l.records[animalID]) }

// Total returns the number of records held for all animals, including ids
// no longer in the animal registry.
func (l *CareLedger) Total() int {
	n := 0
	for _, recs := range l.records {
		n += len(recs)
	}
	return n
}

// PersistFeeding writes a feeding record to the CareRecords table.
func (l *CareLedger) PersistFeeding(rec CareRecord, store Store) error {
	if rec.Kind != CareFeeding || rec.Feeding == nil {
		return errors.Wrapf(ErrInvalidInput, "record of kind %q is not a feeding", rec.Kind)
	}
	return l.persist(rec, store)
}

// PersistHealthCheck writes a health check record to the CareRecords table.
func (l *CareLedger) PersistHealthCheck(rec CareRecord, store Store) error {
	if rec.Kind != CareHealth || rec.Health == nil {
		return errors.Wrapf(ErrInvalidInput, "record of kind %q is not a health check", rec.Kind)
	}
	return l.persist(rec, store)
}

func (l *CareLedger) persist(rec CareRecord, store Store) error {
	err := store.Exec(`INSERT INTO CareRecords(animal_id,type,details,timestamp) VALUES(?,?,?,?)`,
		rec.AnimalID, string(rec.Kind), rec.Details(), rec.At.UTC().Format(time.RFC3339Nano))
	if err != nil {
		l.log.Errorw("Failed to persist care record", "animal_id", rec.AnimalID, "type", rec.Kind, "error", err)
		return errors.Wrapf(err, "insert %s record for animal %d", rec.Kind, rec.AnimalID)
	}
	return nil
}

// LoadAll replaces the ledger contents with the persisted records, in row
// order. Rows that cannot be parsed are skipped with a warning. It returns
// the number of records restored.
func (l *CareLedger) LoadAll(store Store) (int, error) {
	rows, err := store.Query(`SELECT animal_id, type, COALESCE(details,''), COALESCE(timestamp,'') FROM CareRecords ORDER BY id`)
	if err != nil {
		return 0, errors.Wrap(err, "select care records")
	}
	defer rows.Close()

	loaded := make(map[int64][]CareRecord)
	n := 0
	for rows.Next() {
		var (
			animalID         int64
			kind             string
			details, stamped string
		)
		if err := rows.Scan(&animalID, &kind, &details, &stamped); err != nil {
			return 0, errors.Wrap(err, "scan care record")
		}
		rec, err := parseDetails(CareKind(kind), details)
		if err != nil {
			l.log.Warnw("Skipping unreadable care record", "animal_id", animalID, "error", err)
			continue
		}
		rec.AnimalID = animalID
		if rec.At, err = time.Parse(time.RFC3339Nano, stamped); err != nil {
			l.log.Warnw("Care record has an unreadable timestamp", "animal_id", animalID, "timestamp", stamped)
		}
		loaded[animalID] = append(loaded[animalID], rec)
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, "iterate care records")
	}

	l.records = loaded
	return n, nil
}
