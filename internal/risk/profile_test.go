package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "riskprofile/pkg/domain-errors"
)

func TestUserProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *UserProfile)
		wantMsg string
	}{
		{name: "negative age", mutate: func(p *UserProfile) { p.Age = -1 }, wantMsg: "age must not be negative"},
		{name: "negative dependents", mutate: func(p *UserProfile) { p.Dependents = -2 }, wantMsg: "dependents must not be negative"},
		{name: "empty marital status", mutate: func(p *UserProfile) { p.MaritalStatus = "" }, wantMsg: "marital_status must not be empty"},
		{name: "answer out of range", mutate: func(p *UserProfile) { p.RiskQuestions = []int{0, 2, 0} }, wantMsg: "risk_questions[1]"},
		{name: "vehicle key mismatch", mutate: func(p *UserProfile) { p.Vehicles[0].Key = 2 }, wantMsg: "vehicles[0].key must be 1"},
		{name: "vehicle year", mutate: func(p *UserProfile) { p.Vehicles[0].Year = 0 }, wantMsg: "vehicles[0].year"},
		{name: "house key mismatch", mutate: func(p *UserProfile) { p.Houses[1].Key = 1 }, wantMsg: "houses[1].key must be 2"},
		{name: "house ownership", mutate: func(p *UserProfile) { p.Houses[0].OwnershipStatus = "rented" }, wantMsg: "houses[0].ownership_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := referenceProfile()
			tt.mutate(&p)

			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidProfile)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidProfile))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, referenceProfile().Validate())
	})

	t.Run("open inputs", func(t *testing.T) {
		for _, mutate := range []func(p *UserProfile){
			func(p *UserProfile) { p.RiskQuestions = []int{1} },
			func(p *UserProfile) { p.RiskQuestions = []int{1, 0, 1, 1, 0} },
			func(p *UserProfile) { p.MaritalStatus = "widowed" },
			func(p *UserProfile) { p.Income = -5 },
		} {
			p := referenceProfile()
			mutate(&p)
			assert.NoError(t, p.Validate())
		}
	})
}

func TestParseEnums(t *testing.T) {
	status, err := ParseMaritalStatus("married")
	require.NoError(t, err)
	assert.Equal(t, MaritalStatusMarried, status)

	status, err = ParseMaritalStatus(" divorced ")
	require.NoError(t, err)
	assert.Equal(t, MaritalStatus("divorced"), status)

	_, err = ParseMaritalStatus(" ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	ownership, err := ParseOwnershipStatus("mortgaged")
	require.NoError(t, err)
	assert.Equal(t, OwnershipMortgaged, ownership)

	_, err = ParseOwnershipStatus("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestProfileHelpers(t *testing.T) {
	p := referenceProfile()
	assert.Equal(t, 1, p.RiskAnswerSum())
	assert.True(t, p.IsMarried())
	assert.True(t, p.HasDependents())
	assert.False(t, p.HasIncome())
	assert.Equal(t, []int{1}, p.VehicleKeys())
	assert.Equal(t, []int{1, 2}, p.HouseKeys())
}
