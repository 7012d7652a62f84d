// Package calculator computes injection volumes for reconstituted peptides,
// assuming a U-100 insulin syringe (100 units per ml).
package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitMcg Unit = "mcg"
	UnitMg  Unit = "mg"
)

var ErrInvalidInput = errors.New("invalid calculator input")

var (
	thousand   = decimal.NewFromInt(1000)
	unitsPerMl = decimal.NewFromInt(100)
)

type Input struct {
	VialSizeMg             float64 `json:"vial_size_mg"`
	ReconstitutionVolumeMl float64 `json:"reconstitution_volume_ml"`
	DesiredDose            float64 `json:"desired_dose"`
	DoseUnit               Unit    `json:"dose_unit"`
}

type Result struct {
	Units                   float64 `json:"units"`
	MlNeeded                float64 `json:"ml_needed"`
	ConcentrationMgPerMl    float64 `json:"concentration_mg_per_ml"`
	ConcentrationMcgPerUnit float64 `json:"concentration_mcg_per_unit"`
}

// Calculate returns ErrInvalidInput when any quantity is not positive.
func Calculate(in Input) (Result, error) {
	if in.VialSizeMg <= 0 || in.ReconstitutionVolumeMl <= 0 || in.DesiredDose <= 0 {
		return Result{}, fmt.Errorf("%w: vial size, volume and dose must be positive", ErrInvalidInput)
	}

	dose := decimal.NewFromFloat(in.DesiredDose)
	switch in.DoseUnit {
	case UnitMcg, "":
		dose = dose.Div(thousand)
	case UnitMg:
	default:
		return Result{}, fmt.Errorf("%w: unknown dose unit %q", ErrInvalidInput, in.DoseUnit)
	}

	concentration := decimal.NewFromFloat(in.VialSizeMg).Div(decimal.NewFromFloat(in.ReconstitutionVolumeMl))
	ml := dose.Div(concentration)
	units := ml.Mul(unitsPerMl)
	mcgPerUnit := concentration.Mul(thousand).Div(unitsPerMl)

	return Result{
		Units:                   units.Round(1).InexactFloat64(),
		MlNeeded:                ml.Round(3).InexactFloat64(),
		ConcentrationMgPerMl:    concentration.Round(2).InexactFloat64(),
		ConcentrationMcgPerUnit: mcgPerUnit.Round(1).InexactFloat64(),
	}, nil
}
