package fusion

import (
	"fmt"
	"math"

	"github.com/Alias1177/fxsignal/internal/fault"
	"github.com/Alias1177/fxsignal/internal/trading/risk"
	"github.com/Alias1177/fxsignal/models"
	"github.com/go-playground/validator/v10"
)

const riskTolerance = 1e-6

var validate = validator.New()

// Validate checks field constraints and the price-level invariants of a signal
func Validate(s *models.TradingSignal) error {
	if err := validate.Struct(s); err != nil {
		return fault.E(fault.Validation, "fusion.Validate", err)
	}

	switch s.Direction {
	case models.DirectionBuy:
		if !(s.TPPrice > s.EntryPrice && s.EntryPrice > s.SLPrice) {
			return fault.E(fault.Validation, "fusion.Validate",
				fmt.Errorf("BUY levels out of order: tp=%v entry=%v sl=%v", s.TPPrice, s.EntryPrice, s.SLPrice))
		}
	case models.DirectionSell:
		if !(s.SLPrice > s.EntryPrice && s.EntryPrice > s.TPPrice) {
			return fault.E(fault.Validation, "fusion.Validate",
				fmt.Errorf("SELL levels out of order: sl=%v entry=%v tp=%v", s.SLPrice, s.EntryPrice, s.TPPrice))
		}
	}

	if want := risk.RiskPercent(s.EntryPrice, s.SLPrice); math.Abs(s.RiskPercent-want) > riskTolerance {
		return fault.E(fault.Validation, "fusion.Validate",
			fmt.Errorf("risk_percent %v does not match stop distance %v", s.RiskPercent, want))
	}
	return nil
}
