package risk

import (
	"fmt"
	"slices"

	dErrors "riskprofile/pkg/domain-errors"
)

type lineKind uint8

const (
	kindIneligible lineKind = iota
	kindScalar
	kindItems
)

// ItemScore is the numeric score of one vehicle or house.
type ItemScore struct {
	Key   int
	Value int
}

// LineScore is the numeric state of one line between eligibility and
// category mapping. The zero value is ineligible.
type LineScore struct {
	kind  lineKind
	value int
	items []ItemScore
}

// IneligibleScore marks a line that will not be offered.
func IneligibleScore() LineScore {
	return LineScore{kind: kindIneligible}
}

// ScalarScore is a single score for the whole line.
func ScalarScore(value int) LineScore {
	return LineScore{kind: kindScalar, value: value}
}

// ItemsScore is one score per collection item, in declared order.
func ItemsScore(items []ItemScore) LineScore {
	return LineScore{kind: kindItems, items: slices.Clone(items)}
}

// Ineligible reports whether the line was gated out.
func (s LineScore) Ineligible() bool {
	return s.kind == kindIneligible
}

// Value returns the scalar score. ok is false for ineligible and collection lines.
func (s LineScore) Value() (value int, ok bool) {
	return s.value, s.kind == kindScalar
}

// Items returns a copy of the per-item scores. It is nil unless the line is a
// collection line.
func (s LineScore) Items() []ItemScore {
	if s.kind != kindItems {
		return nil
	}
	return slices.Clone(s.items)
}

// IsCollection reports whether the line holds per-item scores.
func (s LineScore) IsCollection() bool {
	return s.kind == kindItems
}

func (s *LineScore) apply(m Modifier) error {
	switch s.kind {
	case kindIneligible:
		return nil
	case kindScalar:
		if m.IsKeyed() {
			return dErrors.New(dErrors.CodeInvariantViolation, "keyed modifier applied to a scalar line")
		}
		s.value += m.Delta()
		return nil
	case kindItems:
		if !m.IsKeyed() {
			return dErrors.New(dErrors.CodeInvariantViolation, "scalar modifier applied to a collection line")
		}
		for _, key := range m.Keys() {
			idx := key - 1
			if idx < 0 || idx >= len(s.items) || s.items[idx].Key != key {
				return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("modifier targets unknown item key %d", key))
			}
			s.items[idx].Value += m.DeltaFor(key)
		}
		return nil
	}
	return dErrors.New(dErrors.CodeInvariantViolation, "line score in unknown state")
}

type scoreEntry struct {
	line  Line
	score LineScore
}

// ScoreSheet holds the numeric score of every evaluated line, in eligibility
// order. It is built by InitialScores and adjusted by Accumulate.
type ScoreSheet struct {
	entries []scoreEntry
}

// Lines returns the evaluated lines in order.
func (s *ScoreSheet) Lines() []Line {
	lines := make([]Line, len(s.entries))
	for i, e := range s.entries {
		lines[i] = e.line
	}
	return lines
}

// Get returns a copy of the score for line.
func (s *ScoreSheet) Get(line Line) (LineScore, bool) {
	if e := s.find(line); e != nil {
		return e.score.clone(), true
	}
	return LineScore{}, false
}

func (s LineScore) clone() LineScore {
	s.items = slices.Clone(s.items)
	return s
}

func (s *ScoreSheet) set(line Line, score LineScore) {
	if e := s.find(line); e != nil {
		e.score = score
		return
	}
	s.entries = append(s.entries, scoreEntry{line: line, score: score})
}

func (s *ScoreSheet) find(line Line) *scoreEntry {
	for i := range s.entries {
		if s.entries[i].line == line {
			return &s.entries[i]
		}
	}
	return nil
}

// apply adds m to line. Lines the sheet does not track are left alone, like
// ineligible lines.
func (s *ScoreSheet) apply(line Line, m Modifier) error {
	e := s.find(line)
	if e == nil {
		return nil
	}
	if err := e.score.apply(m); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvariantViolation, fmt.Sprintf("line %s", line))
	}
	return nil
}
