package zoo

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Animal is one resident of the zoo. Exhibit references an Exhibit by name;
// the animal does not own it.
type Animal struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Age     int    `json:"age"`
	Exhibit string `json:"exhibit"`
}

func (a Animal) validate() error {
	if a.ID <= 0 {
		return errors.Wrapf(ErrInvalidInput, "animal id must be positive, got %d", a.ID)
	}
	if strings.TrimSpace(a.Name) == "" {
		return errors.Wrap(ErrInvalidInput, "animal name is empty")
	}
	if a.Age < 0 {
		return errors.Wrapf(ErrInvalidInput, "age must not be negative, got %d", a.Age)
	}
	return nil
}

// ExhibitSummary is the listing view of an exhibit.
type ExhibitSummary struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity int    `json:"capacity"`
	Occupied int    `json:"occupied"`
}

// Occupant is an occupied slot of an exhibit.
type Occupant struct {
	Slot int    `json:"slot"`
	Name string `json:"name"`
}

// CareKind tags the variant held by a CareRecord. The values are the ones
// stored in the CareRecords.type column.
type CareKind string

const (
	CareFeeding CareKind = "feeding"
	CareHealth  CareKind = "health"
)

// Feeding is the payload of a feeding record.
type Feeding struct {
	Food     string  `json:"food"`
	AmountKg float64 `json:"amount_kg"`
}

// HealthCheck is the payload of a health check record.
type HealthCheck struct {
	Vet       string `json:"vet"`
	Notes     string `json:"notes"`
	Diagnosis string `json:"diagnosis"`
}

// CareRecord is a timestamped care event for one animal. Exactly one of
// Feeding and Health is set, matching Kind.
type CareRecord struct {
	Kind     CareKind     `json:"kind"`
	AnimalID int64        `json:"animal_id"`
	At       time.Time    `json:"at"`
	Feeding  *Feeding     `json:"feeding,omitempty"`
	Health   *HealthCheck `json:"health,omitempty"`
}

const (
	foodLabel      = "Food: "
	amountLabel    = " | Amount: "
	vetLabel       = "Vet: "
	diagnosisLabel = " | Diagnosis: "
	notesLabel     = " | Notes: "
)

// Details renders the record payload as the single human-readable string
// kept in the CareRecords.details column.
func (r CareRecord) Details() string {
	switch r.Kind {
	case CareFeeding:
		if r.Feeding == nil {
			return ""
		}
		return foodLabel + r.Feeding.Food + amountLabel + strconv.FormatFloat(r.Feeding.AmountKg, 'f', -1, 64) + " kg"
	case CareHealth:
		if r.Health == nil {
			return ""
		}
		return vetLabel + r.Health.Vet + diagnosisLabel + r.Health.Diagnosis + notesLabel + r.Health.Notes
	default:
		return ""
	}
}

// parseDetails is the inverse of Details. Food and notes may contain the
// separators; RecordHealthCheck keeps them out of vet and diagnosis.
func parseDetails(kind CareKind, details string) (CareRecord, error) {
	switch kind {
	case CareFeeding:
		rest, ok := strings.CutPrefix(details, foodLabel)
		if !ok {
			return CareRecord{}, errors.Newf("feeding details %q: missing food", details)
		}
		i := strings.LastIndex(rest, amountLabel)
		if i < 0 {
			return CareRecord{}, errors.Newf("feeding details %q: missing amount", details)
		}
		amount, err := strconv.ParseFloat(strings.TrimSuffix(rest[i+len(amountLabel):], " kg"), 64)
		if err != nil {
			return CareRecord{}, errors.Wrapf(err, "feeding details %q", details)
		}
		return CareRecord{Kind: CareFeeding, Feeding: &Feeding{Food: rest[:i], AmountKg: amount}}, nil
	case CareHealth:
		rest, ok := strings.CutPrefix(details, vetLabel)
		if !ok {
			return CareRecord{}, errors.Newf("health details %q: missing vet", details)
		}
		vet, rest, ok := strings.Cut(rest, diagnosisLabel)
		if !ok {
			return CareRecord{}, errors.Newf("health details %q: missing diagnosis", details)
		}
		diagnosis, notes, ok := strings.Cut(rest, notesLabel)
		if !ok {
			return CareRecord{}, errors.Newf("health details %q: missing notes", details)
		}
		return CareRecord{Kind: CareHealth, Health: &HealthCheck{Vet: vet, Notes: notes, Diagnosis: diagnosis}}, nil
	default:
		return CareRecord{}, errors.Newf("unknown care record type %q", kind)
	}
}
