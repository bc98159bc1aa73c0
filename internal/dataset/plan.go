package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	apperrors "fundingpulse/internal/errors"
)

// Field identifies one semantic column of the funding table.
type Field string

const (
	FieldDate           Field = "date"
	FieldStartupName    Field = "startup_name"
	FieldSector         Field = "sector"
	FieldCity           Field = "city"
	FieldInvestmentType Field = "investment_type"
	FieldAmount         Field = "amount"
)

// Locator selects one source column. Exactly one strategy must be set:
// a fixed zero-based position, an exact header name, or a case-insensitive
// substring match against the header.
type Locator struct {
	Index *int   `yaml:"index,omitempty" validate:"omitempty,min=0"`
	Name  string `yaml:"name,omitempty"`
	Match string `yaml:"match,omitempty"`
}

func (l Locator) strategies() int {
	n := 0
	if l.Index != nil {
		n++
	}
	if l.Name != "" {
		n++
	}
	if l.Match != "" {
		n++
	}
	return n
}

// resolve finds the column index for the locator within header, which has
// already been trimmed cell-by-cell.
func (l Locator) resolve(header []string) (int, bool) {
	switch {
	case l.Index != nil:
		if *l.Index < len(header) {
			return *l.Index, true
		}
	case l.Name != "":
		for i, h := range header {
			if h == l.Name {
				return i, true
			}
		}
	case l.Match != "":
		needle := strings.ToLower(l.Match)
		for i, h := range header {
			if strings.Contains(strings.ToLower(h), needle) {
				return i, true
			}
		}
	}
	return 0, false
}

// ColumnPlan maps every semantic field to a column locator. The plan is
// static configuration: schema drift in the source file is handled by
// editing the plan, not the cleaning code.
type ColumnPlan struct {
	Date           Locator `yaml:"date"`
	StartupName    Locator `yaml:"startup_name"`
	Sector         Locator `yaml:"sector"`
	City           Locator `yaml:"city"`
	InvestmentType Locator `yaml:"investment_type"`
	Amount         Locator `yaml:"amount"`
}

var planValidator = validator.New()

// Validate checks that every field has exactly one locator strategy and
// that fixed positions are non-negative.
func (p ColumnPlan) Validate() error {
	if err := planValidator.Struct(p); err != nil {
		return apperrors.NewConfigError("invalid column plan", err)
	}
	for field, loc := range p.locators() {
		if loc.strategies() != 1 {
			return apperrors.NewConfigError(
				fmt.Sprintf("column plan field %q must set exactly one of index, name or match", field), nil)
		}
	}
	return nil
}

func (p ColumnPlan) locators() map[Field]Locator {
	return map[Field]Locator{
		FieldDate:           p.Date,
		FieldStartupName:    p.StartupName,
		FieldSector:         p.Sector,
		FieldCity:           p.City,
		FieldInvestmentType: p.InvestmentType,
		FieldAmount:         p.Amount,
	}
}

// Resolution holds the resolved source column index for each semantic field.
type Resolution struct {
	Date           int
	StartupName    int
	Sector         int
	City           int
	InvestmentType int
	Amount         int
}

// Resolve maps the plan onto an actual header row. Any field that cannot be
// located is a configuration error: normalization must abort rather than
// return an empty set indistinguishable from "all rows invalid".
func (p ColumnPlan) Resolve(header []string) (*Resolution, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	res := &Resolution{}
	targets := map[Field]*int{
		FieldDate:           &res.Date,
		FieldStartupName:    &res.StartupName,
		FieldSector:         &res.Sector,
		FieldCity:           &res.City,
		FieldInvestmentType: &res.InvestmentType,
		FieldAmount:         &res.Amount,
	}
	for field, loc := range p.locators() {
		idx, ok := loc.resolve(header)
		if !ok {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("column plan field %q does not resolve against source header (%d columns)", field, len(header)), nil)
		}
		*targets[field] = idx
	}
	return res, nil
}

// DefaultPlan returns the plan for the merged funding export: fixed column
// positions after the standard four metadata lines.
func DefaultPlan() ColumnPlan {
	idx := func(i int) *int { return &i }
	return ColumnPlan{
		Date:           Locator{Index: idx(13)},
		StartupName:    Locator{Index: idx(14)},
		Sector:         Locator{Index: idx(15)},
		City:           Locator{Index: idx(17)},
		InvestmentType: Locator{Index: idx(19)},
		Amount:         Locator{Index: idx(20)},
	}
}

// LoadPlan reads and validates a column plan from a YAML file.
func LoadPlan(path string) (ColumnPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ColumnPlan{}, apperrors.NewConfigError("failed to read column plan file", err)
	}
	var plan ColumnPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return ColumnPlan{}, apperrors.NewConfigError("failed to parse column plan file", err)
	}
	if err := plan.Validate(); err != nil {
		return ColumnPlan{}, err
	}
	return plan, nil
}
