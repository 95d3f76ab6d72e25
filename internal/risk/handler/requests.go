package handler

import (
	"fmt"
	"strings"

	"riskprofile/internal/risk"
	dErrors "riskprofile/pkg/domain-errors"
)

// RiskProfileRequest is the HTTP request body for POST /risk_profile.
// Pointer fields distinguish a missing value from a zero value.
type RiskProfileRequest struct {
	Age           *int              `json:"age"`
	Dependents    *int              `json:"dependents"`
	Income        *int              `json:"income"`
	MaritalStatus string            `json:"marital_status"`
	RiskQuestions []int             `json:"risk_questions"`
	Vehicles      *[]VehicleRequest `json:"vehicles"`
	Houses        *[]HouseRequest   `json:"houses"`

	// Parsed values (populated by Validate)
	parsedMaritalStatus risk.MaritalStatus
	parsedOwnership     []risk.OwnershipStatus
}

type VehicleRequest struct {
	Key  *int `json:"key"`
	Year *int `json:"year"`
}

type HouseRequest struct {
	Key             *int   `json:"key"`
	OwnershipStatus string `json:"ownership_status"`
}

// Validate checks presence, enums and answer values.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
// Key positions and negative counts are checked by the domain.
func (r *RiskProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Required fields
	switch {
	case r.Age == nil:
		return required("age")
	case r.Dependents == nil:
		return required("dependents")
	case r.Income == nil:
		return required("income")
	case r.RiskQuestions == nil:
		return required("risk_questions")
	case r.Vehicles == nil:
		return required("vehicles")
	case r.Houses == nil:
		return required("houses")
	}

	r.MaritalStatus = strings.TrimSpace(r.MaritalStatus)
	if r.MaritalStatus == "" {
		return required("marital_status")
	}
	status, err := risk.ParseMaritalStatus(r.MaritalStatus)
	if err != nil {
		return err
	}
	r.parsedMaritalStatus = status

	for i, answer := range r.RiskQuestions {
		if answer != 0 && answer != 1 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("risk_questions[%d] must be 0 or 1", i))
		}
	}

	for i, v := range *r.Vehicles {
		if v.Key == nil {
			return required(fmt.Sprintf("vehicles[%d].key", i))
		}
		if v.Year == nil {
			return required(fmt.Sprintf("vehicles[%d].year", i))
		}
	}

	r.parsedOwnership = make([]risk.OwnershipStatus, len(*r.Houses))
	for i, h := range *r.Houses {
		if h.Key == nil {
			return required(fmt.Sprintf("houses[%d].key", i))
		}
		if strings.TrimSpace(h.OwnershipStatus) == "" {
			return required(fmt.Sprintf("houses[%d].ownership_status", i))
		}
		ownership, err := risk.ParseOwnershipStatus(strings.TrimSpace(h.OwnershipStatus))
		if err != nil {
			return err
		}
		r.parsedOwnership[i] = ownership
	}

	return nil
}

func required(field string) error {
	return dErrors.New(dErrors.CodeValidation, field+" is required")
}

// ToProfile builds the domain profile. Call only after Validate succeeded.
func (r *RiskProfileRequest) ToProfile() risk.UserProfile {
	vehicles := make([]risk.Vehicle, len(*r.Vehicles))
	for i, v := range *r.Vehicles {
		vehicles[i] = risk.Vehicle{Key: *v.Key, Year: *v.Year}
	}
	houses := make([]risk.House, len(*r.Houses))
	for i, h := range *r.Houses {
		houses[i] = risk.House{Key: *h.Key, OwnershipStatus: r.parsedOwnership[i]}
	}
	return risk.UserProfile{
		Age:           *r.Age,
		Dependents:    *r.Dependents,
		Income:        *r.Income,
		MaritalStatus: r.parsedMaritalStatus,
		RiskQuestions: append([]int(nil), r.RiskQuestions...),
		Vehicles:      vehicles,
		Houses:        houses,
	}
}
