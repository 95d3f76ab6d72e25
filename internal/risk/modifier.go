package risk

import (
	"maps"
	"slices"
)

type modifierKind uint8

const (
	scalarModifier modifierKind = iota + 1
	keyedModifier
)

// Modifier is a score adjustment for one line: either a single delta for a
// scalar line or per-item deltas for a collection line.
type Modifier struct {
	kind  modifierKind
	delta int
	byKey map[int]int
}

// Scalar adjusts a scalar line by delta.
func Scalar(delta int) Modifier {
	return Modifier{kind: scalarModifier, delta: delta}
}

// Keyed adjusts individual items of a collection line. The map is copied.
func Keyed(byKey map[int]int) Modifier {
	return Modifier{kind: keyedModifier, byKey: maps.Clone(byKey)}
}

// IsKeyed reports whether m targets collection items.
func (m Modifier) IsKeyed() bool {
	return m.kind == keyedModifier
}

// Delta is the scalar adjustment. It is zero for keyed modifiers.
func (m Modifier) Delta() int {
	return m.delta
}

// Keys returns the targeted item keys in ascending order.
func (m Modifier) Keys() []int {
	return slices.Sorted(maps.Keys(m.byKey))
}

// DeltaFor returns the adjustment for item key.
func (m Modifier) DeltaFor(key int) int {
	return m.byKey[key]
}

// Modifiers is the output of one rule: the adjustments it makes, by line.
// Lines a rule leaves alone are absent.
type Modifiers map[Line]Modifier

// addKeyed merges a keyed adjustment into mods, accumulating repeat keys.
func (mods Modifiers) addKeyed(line Line, key, delta int) {
	m, ok := mods[line]
	if !ok {
		m = Modifier{kind: keyedModifier, byKey: map[int]int{}}
	}
	m.byKey[key] += delta
	mods[line] = m
}

// addScalar merges a scalar adjustment into mods.
func (mods Modifiers) addScalar(line Line, delta int) {
	m, ok := mods[line]
	if !ok {
		m = Modifier{kind: scalarModifier}
	}
	m.delta += delta
	mods[line] = m
}

// lines returns the targeted lines in a stable order.
func (mods Modifiers) lines() []Line {
	return slices.Sorted(maps.Keys(mods))
}
