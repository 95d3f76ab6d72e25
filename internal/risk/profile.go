package risk

import (
	"errors"
	"fmt"
	"strings"

	dErrors "riskprofile/pkg/domain-errors"
)

// highIncomeThreshold is exclusive: incomes strictly above it earn a discount.
const highIncomeThreshold = 200_000

// ErrInvalidProfile is the sentinel behind every profile validation failure.
var ErrInvalidProfile = errors.New("invalid profile")

// MaritalStatus of the applicant. The set is open: only married changes the
// score, every other value (single, divorced, widowed...) is accepted as is.
type MaritalStatus string

const (
	MaritalStatusSingle  MaritalStatus = "single"
	MaritalStatusMarried MaritalStatus = "married"
)

// IsValid reports whether s carries a value.
func (s MaritalStatus) IsValid() bool {
	return strings.TrimSpace(string(s)) != ""
}

// ParseMaritalStatus parses the wire value of a marital status.
func ParseMaritalStatus(s string) (MaritalStatus, error) {
	status := MaritalStatus(strings.TrimSpace(s))
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "marital_status is required")
	}
	return status, nil
}

// OwnershipStatus of a house.
type OwnershipStatus string

const (
	OwnershipOwned     OwnershipStatus = "owned"
	OwnershipMortgaged OwnershipStatus = "mortgaged"
)

// IsValid reports whether s is a supported ownership status.
func (s OwnershipStatus) IsValid() bool {
	return s == OwnershipOwned || s == OwnershipMortgaged
}

// ParseOwnershipStatus parses the wire value of an ownership status.
func ParseOwnershipStatus(s string) (OwnershipStatus, error) {
	status := OwnershipStatus(s)
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid ownership_status %q, expected owned or mortgaged", s))
	}
	return status, nil
}

// Vehicle is one entry of the applicant's vehicle list.
// Key is the 1-based position of the vehicle in that list.
type Vehicle struct {
	Key  int
	Year int
}

// House is one entry of the applicant's house list.
// Key is the 1-based position of the house in that list.
type House struct {
	Key             int
	OwnershipStatus OwnershipStatus
}

// UserProfile is the validated applicant data the engine evaluates.
// Evaluation never mutates it.
type UserProfile struct {
	Age           int
	Dependents    int
	Income        int
	MaritalStatus MaritalStatus
	RiskQuestions []int
	Vehicles      []Vehicle
	Houses        []House
}

// Validate checks the structural invariants the rules rely on.
func (p UserProfile) Validate() error {
	if p.Age < 0 {
		return invalidProfile("age must not be negative")
	}
	if p.Dependents < 0 {
		return invalidProfile("dependents must not be negative")
	}
	if !p.MaritalStatus.IsValid() {
		return invalidProfile("marital_status must not be empty")
	}
	for i, answer := range p.RiskQuestions {
		if answer != 0 && answer != 1 {
			return invalidProfile(fmt.Sprintf("risk_questions[%d] must be 0 or 1, got %d", i, answer))
		}
	}
	for i, v := range p.Vehicles {
		if v.Key != i+1 {
			return invalidProfile(fmt.Sprintf("vehicles[%d].key must be %d, got %d", i, i+1, v.Key))
		}
		if v.Year <= 0 {
			return invalidProfile(fmt.Sprintf("vehicles[%d].year must be positive", i))
		}
	}
	for i, h := range p.Houses {
		if h.Key != i+1 {
			return invalidProfile(fmt.Sprintf("houses[%d].key must be %d, got %d", i, i+1, h.Key))
		}
		if !h.OwnershipStatus.IsValid() {
			return invalidProfile(fmt.Sprintf("houses[%d].ownership_status %q is not supported", i, h.OwnershipStatus))
		}
	}
	return nil
}

func invalidProfile(msg string) error {
	return dErrors.Wrap(ErrInvalidProfile, dErrors.CodeInvalidProfile, msg)
}

// RiskAnswerSum is the number of risk questions answered with 1.
func (p UserProfile) RiskAnswerSum() int {
	sum := 0
	for _, answer := range p.RiskQuestions {
		sum += answer
	}
	return sum
}

// IsMarried reports whether the applicant is married.
func (p UserProfile) IsMarried() bool {
	return p.MaritalStatus == MaritalStatusMarried
}

// HasDependents reports whether the applicant declared any dependents.
func (p UserProfile) HasDependents() bool {
	return p.Dependents > 0
}

// HasIncome reports whether the applicant declared a positive income.
func (p UserProfile) HasIncome() bool {
	return p.Income > 0
}

// VehicleKeys returns the vehicle keys in declared order.
func (p UserProfile) VehicleKeys() []int {
	keys := make([]int, len(p.Vehicles))
	for i, v := range p.Vehicles {
		keys[i] = v.Key
	}
	return keys
}

// HouseKeys returns the house keys in declared order.
func (p UserProfile) HouseKeys() []int {
	keys := make([]int, len(p.Houses))
	for i, h := range p.Houses {
		keys[i] = h.Key
	}
	return keys
}
