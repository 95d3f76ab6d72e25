package risk

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/goccy/go-json"

	dErrors "riskprofile/pkg/domain-errors"
)

const ineligibleLiteral = "ineligible"

// ItemCategory is the category of one vehicle or house.
type ItemCategory struct {
	Key   int      `json:"key"`
	Value Category `json:"value"`
}

// LineOutcome is the final result for one line. The zero value is ineligible.
type LineOutcome struct {
	kind     lineKind
	category Category
	items    []ItemCategory
}

// IneligibleOutcome is the result for a line that is not offered.
func IneligibleOutcome() LineOutcome {
	return LineOutcome{kind: kindIneligible}
}

// CategoryOutcome is the result for a scalar line.
func CategoryOutcome(c Category) LineOutcome {
	return LineOutcome{kind: kindScalar, category: c}
}

// ItemsOutcome is the result for a collection line.
func ItemsOutcome(items []ItemCategory) LineOutcome {
	return LineOutcome{kind: kindItems, items: slices.Clone(items)}
}

// Ineligible reports whether the line is not offered.
func (o LineOutcome) Ineligible() bool {
	return o.kind == kindIneligible
}

// Category returns the scalar category. ok is false unless o is a scalar outcome.
func (o LineOutcome) Category() (c Category, ok bool) {
	return o.category, o.kind == kindScalar
}

// Items returns a copy of the per-item categories.
func (o LineOutcome) Items() []ItemCategory {
	if o.kind != kindItems {
		return nil
	}
	return slices.Clone(o.items)
}

// HasEconomic reports whether the outcome, or any of its items, is economic.
func (o LineOutcome) HasEconomic() bool {
	switch o.kind {
	case kindScalar:
		return o.category == CategoryEconomic
	case kindItems:
		return slices.ContainsFunc(o.items, func(item ItemCategory) bool {
			return item.Value == CategoryEconomic
		})
	}
	return false
}

// Equal reports whether two outcomes carry the same result.
func (o LineOutcome) Equal(other LineOutcome) bool {
	return o.kind == other.kind && o.category == other.category && slices.Equal(o.items, other.items)
}

// String renders the outcome compactly, e.g. "regular" or "1:economic,2:regular".
func (o LineOutcome) String() string {
	switch o.kind {
	case kindScalar:
		return o.category.String()
	case kindItems:
		parts := make([]string, len(o.items))
		for i, item := range o.items {
			parts[i] = fmt.Sprintf("%d:%s", item.Key, item.Value)
		}
		return strings.Join(parts, ",")
	}
	return ineligibleLiteral
}

func (o LineOutcome) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case kindScalar:
		return json.Marshal(o.category)
	case kindItems:
		items := o.items
		if items == nil {
			items = []ItemCategory{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(ineligibleLiteral)
}

func (o *LineOutcome) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []ItemCategory
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*o = ItemsOutcome(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return err
	}
	if s == ineligibleLiteral {
		*o = IneligibleOutcome()
		return nil
	}
	c, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*o = CategoryOutcome(c)
	return nil
}

type outcomeEntry struct {
	line    Line
	outcome LineOutcome
}

// RiskProfile is the categorical result of an evaluation: one outcome per
// evaluated line plus the derived umbrella line.
type RiskProfile struct {
	entries  []outcomeEntry
	Umbrella LineOutcome
}

// Lines returns the evaluated lines in eligibility order. Umbrella is not
// included.
func (p *RiskProfile) Lines() []Line {
	lines := make([]Line, len(p.entries))
	for i, e := range p.entries {
		lines[i] = e.line
	}
	return lines
}

// Line returns the outcome for line. Umbrella is resolved too.
func (p *RiskProfile) Line(line Line) (LineOutcome, bool) {
	if line == LineUmbrella {
		return p.Umbrella, true
	}
	for _, e := range p.entries {
		if e.line == line {
			return e.outcome, true
		}
	}
	return LineOutcome{}, false
}

func (p *RiskProfile) set(line Line, outcome LineOutcome) {
	for i := range p.entries {
		if p.entries[i].line == line {
			p.entries[i].outcome = outcome
			return
		}
	}
	p.entries = append(p.entries, outcomeEntry{line: line, outcome: outcome})
}

// Summary renders every outcome, umbrella included, keyed by line name.
func (p *RiskProfile) Summary() map[string]string {
	summary := make(map[string]string, len(p.entries)+1)
	for _, e := range p.entries {
		summary[e.line.String()] = e.outcome.String()
	}
	summary[LineUmbrella.String()] = p.Umbrella.String()
	return summary
}

// MarshalJSON encodes the profile as an object keyed by line name.
func (p *RiskProfile) MarshalJSON() ([]byte, error) {
	out := make(map[string]LineOutcome, len(p.entries)+1)
	for _, e := range p.entries {
		out[e.line.String()] = e.outcome
	}
	out[LineUmbrella.String()] = p.Umbrella
	return json.Marshal(out)
}

// UnmarshalJSON decodes an object produced by MarshalJSON. Lines are restored
// in the default eligibility order.
func (p *RiskProfile) UnmarshalJSON(data []byte) error {
	var raw map[string]LineOutcome
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded := RiskProfile{}
	for _, line := range []Line{LineAuto, LineDisability, LineHome, LineLife} {
		if outcome, ok := raw[line.String()]; ok {
			decoded.set(line, outcome)
			delete(raw, line.String())
		}
	}
	if umbrella, ok := raw[LineUmbrella.String()]; ok {
		decoded.Umbrella = umbrella
		delete(raw, LineUmbrella.String())
	}
	for name := range raw {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown line %q", name))
	}
	*p = decoded
	return nil
}
