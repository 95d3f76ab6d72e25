package risk

import "time"

// GeneralRule contributes a profile-wide delta to the base risk.
type GeneralRule struct {
	Name  string
	Delta func(p UserProfile) int
}

// EligibilityRule decides whether a line is offered at all.
type EligibilityRule struct {
	Line     Line
	Eligible func(p UserProfile) bool
}

// SpecificRule adjusts individual lines. asOf is the evaluation time.
type SpecificRule struct {
	Name      string
	Modifiers func(p UserProfile, asOf time.Time) Modifiers
}

// CollectionKeys lists the item keys a collection line is scored over.
type CollectionKeys func(p UserProfile) []int

// Rules is the full rule set of an evaluation. Tests substitute subsets.
type Rules struct {
	General []GeneralRule
	// Eligibility order is the line order of the result and the order the
	// umbrella derivation scans.
	Eligibility []EligibilityRule
	Specific    []SpecificRule
	// Collections marks the lines scored per item.
	Collections map[Line]CollectionKeys
	// UmbrellaFallback is the umbrella outcome when no eligible line is
	// economic. The zero value is ineligible.
	UmbrellaFallback LineOutcome
}

// DefaultRules returns the production rule set.
func DefaultRules() Rules {
	return Rules{
		General: []GeneralRule{
			{Name: "age", Delta: AgeAdjustment},
			{Name: "income", Delta: IncomeAdjustment},
		},
		Eligibility: []EligibilityRule{
			{Line: LineAuto, Eligible: AutoEligible},
			{Line: LineDisability, Eligible: DisabilityEligible},
			{Line: LineHome, Eligible: HomeEligible},
			{Line: LineLife, Eligible: LifeEligible},
		},
		Specific: []SpecificRule{
			{Name: "mortgaged_house", Modifiers: MortgagedHouses},
			{Name: "dependents", Modifiers: Dependents},
			{Name: "marital_status", Modifiers: MaritalStatusAdjustment},
			{Name: "new_vehicle", Modifiers: NewVehicles},
			{Name: "single_vehicle", Modifiers: SingleVehicle},
			{Name: "single_house", Modifiers: SingleHouse},
		},
		Collections: map[Line]CollectionKeys{
			LineAuto: UserProfile.VehicleKeys,
			LineHome: UserProfile.HouseKeys,
		},
		UmbrellaFallback: IneligibleOutcome(),
	}
}

// Eligibility.

// lifeMaxAge is exclusive.
const lifeMaxAge = 60

func AutoEligible(p UserProfile) bool {
	return len(p.Vehicles) > 0
}

func DisabilityEligible(p UserProfile) bool {
	return p.HasIncome()
}

func HomeEligible(p UserProfile) bool {
	return len(p.Houses) > 0
}

func LifeEligible(p UserProfile) bool {
	return p.Age < lifeMaxAge
}

// General rules.

// AgeAdjustment is -2 under 30, -1 from 30 to 39, 0 otherwise.
func AgeAdjustment(p UserProfile) int {
	switch {
	case p.Age < 30:
		return -2
	case p.Age < 40:
		return -1
	default:
		return 0
	}
}

// IncomeAdjustment is -1 for incomes strictly above 200k.
func IncomeAdjustment(p UserProfile) int {
	if p.Income > highIncomeThreshold {
		return -1
	}
	return 0
}

// Specific rules.

// MortgagedHouses adds 1 to each mortgaged house and 1 to disability once
// when any house is mortgaged.
func MortgagedHouses(p UserProfile, _ time.Time) Modifiers {
	mods := Modifiers{}
	for _, h := range p.Houses {
		if h.OwnershipStatus == OwnershipMortgaged {
			mods.addKeyed(LineHome, h.Key, 1)
		}
	}
	if len(mods) > 0 {
		mods.addScalar(LineDisability, 1)
	}
	return mods
}

// Dependents adds 1 to disability and life.
func Dependents(p UserProfile, _ time.Time) Modifiers {
	if !p.HasDependents() {
		return nil
	}
	return Modifiers{
		LineDisability: Scalar(1),
		LineLife:       Scalar(1),
	}
}

// MaritalStatusAdjustment adds 1 to life and removes 1 from disability for
// married applicants.
func MaritalStatusAdjustment(p UserProfile, _ time.Time) Modifiers {
	if !p.IsMarried() {
		return nil
	}
	return Modifiers{
		LineLife:       Scalar(1),
		LineDisability: Scalar(-1),
	}
}

// newVehicleMaxAge is exclusive, in calendar years.
const newVehicleMaxAge = 5

// NewVehicles adds 1 to each vehicle produced less than five calendar years
// before asOf.
func NewVehicles(p UserProfile, asOf time.Time) Modifiers {
	mods := Modifiers{}
	for _, v := range p.Vehicles {
		if asOf.Year()-v.Year < newVehicleMaxAge {
			mods.addKeyed(LineAuto, v.Key, 1)
		}
	}
	return mods
}

// SingleVehicle adds 1 to the only vehicle.
func SingleVehicle(p UserProfile, _ time.Time) Modifiers {
	if len(p.Vehicles) != 1 {
		return nil
	}
	return Modifiers{LineAuto: Keyed(map[int]int{p.Vehicles[0].Key: 1})}
}

// SingleHouse adds 1 to the only house.
func SingleHouse(p UserProfile, _ time.Time) Modifiers {
	if len(p.Houses) != 1 {
		return nil
	}
	return Modifiers{LineHome: Keyed(map[int]int{p.Houses[0].Key: 1})}
}
