package events

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"keyworker/internal/gateway"
	"keyworker/pkg/domain"
	dErrors "keyworker/pkg/domain-errors"
)

// Decode parses an envelope and its additional information. Unknown event
// types decode to Unrecognised without error; a known type with missing or
// invalid fields is a validation error.
func Decode(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "malformed event envelope")
	}
	if env.EventType == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "event type is required")
	}
	occurredAt, err := env.occurred()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid occurredAt")
	}

	switch env.EventType {
	case TypeExternalMovement:
		return decodeMovement(env, occurredAt)
	case TypePrisonerMerged, TypeBookingNumberChanged:
		return decodeMerge(env, occurredAt)
	case TypeComplexityChanged:
		return decodeComplexity(env, occurredAt)
	case TypeCaseNoteCreated, TypeCaseNoteUpdated, TypeCaseNoteDeleted, TypeCaseNoteMoved:
		return decodeCaseNote(env, occurredAt)
	case TypeDeleteOffender:
		return decodeDelete(env, occurredAt)
	case TypeCalculatePrisonStats:
		return decodeCalculate(env)
	default:
		return Unrecognised{Type: env.EventType}, nil
	}
}

func info[T any](env Envelope) (T, error) {
	var out T
	if len(env.AdditionalInformation) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.AdditionalInformation, &out); err != nil {
		return out, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("malformed additionalInformation for %s", env.EventType))
	}
	return out, nil
}

func person(values ...string) (domain.PersonIdentifier, error) {
	for _, v := range values {
		if v != "" {
			return domain.ParsePersonIdentifier(v)
		}
	}
	return "", dErrors.New(dErrors.CodeValidation, "person identifier is required")
}

// optionalPrison parses an agency id, treating empty as absent.
func optionalPrison(s string) (domain.PrisonCode, error) {
	if s == "" {
		return "", nil
	}
	return domain.ParsePrisonCode(s)
}

// flexInt accepts numbers sent either as JSON numbers or strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type movementInfo struct {
	NomsNumber           string  `json:"nomsNumber"`
	BookingID            flexInt `json:"bookingId"`
	MovementSeq          flexInt `json:"movementSeq"`
	DirectionCode        string  `json:"directionCode"`
	MovementType         string  `json:"movementType"`
	FromAgencyLocationID string  `json:"fromAgencyLocationId"`
	ToAgencyLocationID   string  `json:"toAgencyLocationId"`
}

func decodeMovement(env Envelope, occurredAt time.Time) (Event, error) {
	in, err := info[movementInfo](env)
	if err != nil {
		return nil, err
	}
	p, err := person(in.NomsNumber, env.NOMS())
	if err != nil {
		return nil, err
	}
	from, err := optionalPrison(in.FromAgencyLocationID)
	if err != nil {
		return nil, err
	}
	to, err := optionalPrison(in.ToAgencyLocationID)
	if err != nil {
		return nil, err
	}
	return MovementRecorded{
		PersonIdentifier: p,
		BookingID:        int64(in.BookingID),
		MovementSeq:      int(in.MovementSeq),
		Direction:        in.DirectionCode,
		MovementType:     in.MovementType,
		FromAgency:       from,
		ToAgency:         to,
		OccurredAt:       occurredAt,
	}, nil
}

type mergeInfo struct {
	NomsNumber         string `json:"nomsNumber"`
	RemovedNomsNumber  string `json:"removedNomsNumber"`
	PreviousNomsNumber string `json:"previousNomsNumber"`
}

func decodeMerge(env Envelope, occurredAt time.Time) (Event, error) {
	in, err := info[mergeInfo](env)
	if err != nil {
		return nil, err
	}
	retained, err := person(in.NomsNumber, env.NOMS())
	if err != nil {
		return nil, err
	}
	removed, err := person(in.RemovedNomsNumber, in.PreviousNomsNumber)
	if err != nil {
		return nil, err
	}
	return PrisonerMerged{Type: env.EventType, Removed: removed, Retained: retained, OccurredAt: occurredAt}, nil
}

type complexityInfo struct {
	OffenderNo string `json:"offenderNo"`
	Level      string `json:"level"`
	Active     *bool  `json:"active"`
}

func decodeComplexity(env Envelope, occurredAt time.Time) (Event, error) {
	in, err := info[complexityInfo](env)
	if err != nil {
		return nil, err
	}
	p, err := person(in.OffenderNo, env.NOMS())
	if err != nil {
		return nil, err
	}
	return ComplexityChanged{
		PersonIdentifier: p,
		Level:            gateway.ParseComplexityLevel(in.Level),
		Active:           in.Active,
		OccurredAt:       occurredAt,
	}, nil
}

type caseNoteInfo struct {
	ID string `json:"id"`
}

func decodeCaseNote(env Envelope, occurredAt time.Time) (Event, error) {
	in, err := info[caseNoteInfo](env)
	if err != nil {
		return nil, err
	}
	if in.ID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "case note id is required")
	}
	p, err := person(env.NOMS())
	if err != nil {
		return nil, err
	}
	return CaseNoteChanged{Type: env.EventType, PersonIdentifier: p, CaseNoteID: in.ID, OccurredAt: occurredAt}, nil
}

type deleteInfo struct {
	OffenderIDDisplay string `json:"offenderIdDisplay"`
	NomsNumber        string `json:"nomsNumber"`
}

func decodeDelete(env Envelope, occurredAt time.Time) (Event, error) {
	in, err := info[deleteInfo](env)
	if err != nil {
		return nil, err
	}
	p, err := person(in.OffenderIDDisplay, in.NomsNumber, env.NOMS())
	if err != nil {
		return nil, err
	}
	return PrisonerDeleted{PersonIdentifier: p, OccurredAt: occurredAt}, nil
}

type calculateInfo struct {
	PrisonCode string `json:"prisonCode"`
	Policy     string `json:"policy"`
	Date       string `json:"date"`
}

func decodeCalculate(env Envelope) (Event, error) {
	in, err := info[calculateInfo](env)
	if err != nil {
		return nil, err
	}
	prison, err := domain.ParsePrisonCode(in.PrisonCode)
	if err != nil {
		return nil, err
	}
	policy, err := domain.ParsePolicy(in.Policy)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(time.DateOnly, in.Date)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid statistic date")
	}
	return CalculatePrisonStats{PrisonCode: prison, Policy: policy, Date: date}, nil
}

// NewCalculatePrisonStats builds the envelope requesting one statistic.
func NewCalculatePrisonStats(prison domain.PrisonCode, policy domain.Policy, date, now time.Time) Envelope {
	payload, _ := json.Marshal(calculateInfo{
		PrisonCode: prison.String(),
		Policy:     policy.String(),
		Date:       date.Format(time.DateOnly),
	})
	return Envelope{
		EventType:             TypeCalculatePrisonStats,
		Version:               1,
		Description:           "Calculate prison statistics",
		OccurredAt:            now.Format(time.RFC3339),
		AdditionalInformation: payload,
	}
}
