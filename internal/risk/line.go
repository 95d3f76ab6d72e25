package risk

// Line names an insurance product line.
type Line string

const (
	LineAuto       Line = "auto"
	LineDisability Line = "disability"
	LineHome       Line = "home"
	LineLife       Line = "life"
	LineUmbrella   Line = "umbrella"
)

// String returns the wire name of the line.
func (l Line) String() string {
	return string(l)
}

// IsValid reports whether l is one of the known product lines.
func (l Line) IsValid() bool {
	switch l {
	case LineAuto, LineDisability, LineHome, LineLife, LineUmbrella:
		return true
	}
	return false
}
