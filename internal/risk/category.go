package risk

import (
	"fmt"

	dErrors "riskprofile/pkg/domain-errors"
)

// Category is the coarse risk bucket reported to the client.
// The zero value is not a valid category.
type Category int

const (
	CategoryEconomic Category = iota + 1
	CategoryRegular
	CategoryResponsible
)

// Score thresholds, inclusive upper bounds.
const (
	economicMaxScore = 0
	regularMaxScore  = 2
)

// CategoryFromScore maps a numeric score to its category.
// score <= 0 is economic, 1..2 is regular, 3 and up is responsible.
func CategoryFromScore(score int) Category {
	switch {
	case score <= economicMaxScore:
		return CategoryEconomic
	case score <= regularMaxScore:
		return CategoryRegular
	default:
		return CategoryResponsible
	}
}

func (c Category) String() string {
	switch c {
	case CategoryEconomic:
		return "economic"
	case CategoryRegular:
		return "regular"
	case CategoryResponsible:
		return "responsible"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	return c >= CategoryEconomic && c <= CategoryResponsible
}

// ParseCategory parses the wire name of a category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "economic":
		return CategoryEconomic, nil
	case "regular":
		return CategoryRegular, nil
	case "responsible":
		return CategoryResponsible, nil
	}
	return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unknown risk category %q", s))
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("cannot encode %s", c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
