package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/peptide_shop/internal/calculator"
	"github.com/Skotchmaster/peptide_shop/pkg/logging"
	"github.com/labstack/echo/v4"
)

// Calculate serves the dosage calculator. It reads vial_size_mg,
// reconstitution_volume_ml, desired_dose and dose_unit from the query.
func Calculate(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "calculator")

	var in calculator.Input
	var unit string
	if err := echo.QueryParamsBinder(c).
		Float64("vial_size_mg", &in.VialSizeMg).
		Float64("reconstitution_volume_ml", &in.ReconstitutionVolumeMl).
		Float64("desired_dose", &in.DesiredDose).
		String("dose_unit", &unit).
		BindError(); err != nil {
		return badRequest(l, "calculator_error", "invalid query", err)
	}
	in.DoseUnit = calculator.Unit(unit)

	res, err := calculator.Calculate(in)
	if err != nil {
		return badRequest(l, "calculator_error", err.Error(), err)
	}
	return c.JSON(http.StatusOK, res)
}
