package domain

import dErrors "keyworker/pkg/domain-errors"

// Policy selects the allocation scheme. It partitions every allocation,
// recorded event and statistic; queries never cross policies implicitly.
type Policy string

const (
	PolicyKeyWorker       Policy = "KEY_WORKER"
	PolicyPersonalOfficer Policy = "PERSONAL_OFFICER"
)

var validPolicies = map[Policy]bool{
	PolicyKeyWorker:       true,
	PolicyPersonalOfficer: true,
}

// AllPolicies returns every policy in a stable order.
func AllPolicies() []Policy {
	return []Policy{PolicyKeyWorker, PolicyPersonalOfficer}
}

// ParsePolicy constructs a Policy from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "policy cannot be empty")
	}
	p := Policy(s)
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid policy")
	}
	return p, nil
}

// IsValid checks if the policy is one of the supported enum values.
func (p Policy) IsValid() bool {
	return validPolicies[p]
}

func (p Policy) String() string { return string(p) }
