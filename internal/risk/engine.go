package risk

import (
	"fmt"
	"time"

	dErrors "riskprofile/pkg/domain-errors"
)

// Stage names one step of the evaluation pipeline.
type Stage string

const (
	StageValidate    Stage = "validate"
	StageBaseRisk    Stage = "base_risk"
	StageEligibility Stage = "eligibility"
	StageAccumulate  Stage = "accumulate"
	StageMap         Stage = "map"
	StageUmbrella    Stage = "umbrella"
)

// StageFunc wraps the execution of a single stage. It must call run exactly
// once and return its error.
type StageFunc func(stage Stage, run func() error) error

func runStage(_ Stage, run func() error) error {
	return run()
}

// Evaluation is the full trace of one pipeline run.
type Evaluation struct {
	BaseRisk int
	// Scores is the accumulated numeric state before category mapping.
	Scores ScoreSheet
	// Applied names the specific rules that produced at least one modifier.
	Applied []string
	Profile *RiskProfile
}

// Evaluate runs the pipeline over p. asOf anchors time-dependent rules.
// This is pure domain logic: no I/O and p is never modified.
func Evaluate(p UserProfile, rules Rules, asOf time.Time) (*Evaluation, error) {
	return EvaluateStages(p, rules, asOf, runStage)
}

// EvaluateStages is Evaluate with every stage executed through wrap.
func EvaluateStages(p UserProfile, rules Rules, asOf time.Time, wrap StageFunc) (*Evaluation, error) {
	if wrap == nil {
		wrap = runStage
	}
	eval := &Evaluation{}

	stages := []struct {
		stage Stage
		run   func() error
	}{
		{StageValidate, p.Validate},
		{StageBaseRisk, func() error {
			eval.BaseRisk = BaseRisk(p, rules.General)
			return nil
		}},
		{StageEligibility, func() error {
			eval.Scores = InitialScores(p, eval.BaseRisk, rules)
			return nil
		}},
		{StageAccumulate, func() error {
			applied, err := Accumulate(p, &eval.Scores, rules.Specific, asOf)
			eval.Applied = applied
			return err
		}},
		{StageMap, func() error {
			eval.Profile = MapScores(eval.Scores)
			return nil
		}},
		{StageUmbrella, func() error {
			DeriveUmbrella(eval.Profile, rules.UmbrellaFallback)
			return nil
		}},
	}
	for _, st := range stages {
		if err := wrap(st.stage, st.run); err != nil {
			return nil, err
		}
	}
	return eval, nil
}

// BaseRisk sums the risk answers and every general rule delta.
func BaseRisk(p UserProfile, general []GeneralRule) int {
	base := p.RiskAnswerSum()
	for _, rule := range general {
		base += rule.Delta(p)
	}
	return base
}

// InitialScores gates every configured line and seeds eligible ones with
// base. Collection lines get one item per key at base.
func InitialScores(p UserProfile, base int, rules Rules) ScoreSheet {
	var sheet ScoreSheet
	for _, gate := range rules.Eligibility {
		if !gate.Eligible(p) {
			sheet.set(gate.Line, IneligibleScore())
			continue
		}
		keys, isCollection := rules.Collections[gate.Line]
		if !isCollection {
			sheet.set(gate.Line, ScalarScore(base))
			continue
		}
		itemKeys := keys(p)
		items := make([]ItemScore, len(itemKeys))
		for i, key := range itemKeys {
			items[i] = ItemScore{Key: key, Value: base}
		}
		sheet.set(gate.Line, ItemsScore(items))
	}
	return sheet
}

// Accumulate applies every specific rule once, in order, and returns the
// names of the rules that produced modifiers. Modifiers for ineligible lines
// are discarded.
func Accumulate(p UserProfile, sheet *ScoreSheet, specific []SpecificRule, asOf time.Time) ([]string, error) {
	var applied []string
	for _, rule := range specific {
		mods := rule.Modifiers(p, asOf)
		if len(mods) == 0 {
			continue
		}
		applied = append(applied, rule.Name)
		for _, line := range mods.lines() {
			if err := sheet.apply(line, mods[line]); err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInvariantViolation, fmt.Sprintf("rule %s", rule.Name))
			}
		}
	}
	return applied, nil
}

// MapScores converts the numeric sheet into categories. The umbrella line is
// left at its zero value until DeriveUmbrella runs.
func MapScores(sheet ScoreSheet) *RiskProfile {
	profile := &RiskProfile{}
	for _, e := range sheet.entries {
		profile.set(e.line, mapScore(e.score))
	}
	return profile
}

func mapScore(score LineScore) LineOutcome {
	switch score.kind {
	case kindScalar:
		return CategoryOutcome(CategoryFromScore(score.value))
	case kindItems:
		items := make([]ItemCategory, len(score.items))
		for i, item := range score.items {
			items[i] = ItemCategory{Key: item.Key, Value: CategoryFromScore(item.Value)}
		}
		return ItemsOutcome(items)
	}
	return IneligibleOutcome()
}

// DeriveUmbrella sets the umbrella line. The first eligible line, in
// eligibility order, with any economic result makes umbrella regular. With no
// eligible line umbrella is ineligible; otherwise it is fallback.
func DeriveUmbrella(profile *RiskProfile, fallback LineOutcome) {
	anyEligible := false
	for _, e := range profile.entries {
		if e.outcome.Ineligible() {
			continue
		}
		anyEligible = true
		if e.outcome.HasEconomic() {
			profile.Umbrella = CategoryOutcome(CategoryRegular)
			return
		}
	}
	if !anyEligible {
		profile.Umbrella = IneligibleOutcome()
		return
	}
	profile.Umbrella = fallback
}
