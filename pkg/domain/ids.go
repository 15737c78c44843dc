package domain

import (
	"regexp"
	"strconv"
	"strings"

	dErrors "keyworker/pkg/domain-errors"
)

// PersonIdentifier is a prison number such as "A1234BC".
// Invariant: one letter, four digits, two letters, upper case.
//
// Usage: construct via ParsePersonIdentifier at trust boundaries; direct
// casting bypasses validation and is reserved for values read back from stores.
type PersonIdentifier string

var personIdentifierPattern = regexp.MustCompile(`^[A-Z][0-9]{4}[A-Z]{2}$`)

// ParsePersonIdentifier validates external input. Lower case input is accepted
// and normalised.
func ParsePersonIdentifier(s string) (PersonIdentifier, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "person identifier cannot be empty")
	}
	if !personIdentifierPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid person identifier")
	}
	return PersonIdentifier(s), nil
}

func (p PersonIdentifier) String() string { return string(p) }

// IsNil returns true if the identifier is empty.
func (p PersonIdentifier) IsNil() bool { return p == "" }

// PrisonCode identifies an establishment ("MDI", "LEI"). Agency location ids
// for courts and other non-prison locations share the same shape, so a parsed
// code is not proof that the location is a prison; see the prison register.
type PrisonCode string

var prisonCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,6}$`)

// ParsePrisonCode validates an agency location id.
func ParsePrisonCode(s string) (PrisonCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "prison code cannot be empty")
	}
	if !prisonCodePattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid prison code")
	}
	return PrisonCode(s), nil
}

func (c PrisonCode) String() string { return string(c) }

// IsNil returns true if the code is empty.
func (c PrisonCode) IsNil() bool { return c == "" }

// StaffID is the numeric staff identifier issued by the prison API.
type StaffID int64

// ParseStaffID validates a positive numeric staff id.
func ParseStaffID(s string) (StaffID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "invalid staff id")
	}
	return StaffID(n), nil
}

func (s StaffID) String() string { return strconv.FormatInt(int64(s), 10) }
