// Package salary turns a vacancy's published salary bounds into a single point estimate.
package salary

import (
	"strings"

	"github.com/aluiziolira/go-lang-salaries/models"
)

const (
	// upperOnlyFactor discounts a vacancy that only publishes a ceiling.
	upperOnlyFactor = 0.8
	// lowerOnlyFactor raises a vacancy that only publishes a floor.
	lowerOnlyFactor = 1.2
)

// Estimator produces a point estimate for a vacancy, or ok=false to skip it.
type Estimator interface {
	Estimate(v models.Vacancy) (float64, bool)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(v models.Vacancy) (float64, bool)

// Estimate calls f(v).
func (f EstimatorFunc) Estimate(v models.Vacancy) (float64, bool) {
	return f(v)
}

// Predict applies the bound rules: midpoint when both bounds are known,
// upper*0.8 or lower*1.2 when only one is, nothing when neither is.
// Zero and negative bounds count as absent.
func Predict(from, to float64) (float64, bool) {
	hasFrom := from > 0
	hasTo := to > 0

	switch {
	case !hasFrom && !hasTo:
		return 0, false
	case !hasFrom:
		return to * upperOnlyFactor, true
	case !hasTo:
		return from * lowerOnlyFactor, true
	default:
		return (from + to) / 2, true
	}
}

// ForCurrency returns the HeadHunter estimator: vacancies quoting another
// currency are skipped. An empty currency tag is accepted.
func ForCurrency(code string) Estimator {
	accepted := strings.TrimSpace(code)
	return EstimatorFunc(func(v models.Vacancy) (float64, bool) {
		if v.Currency != "" && !strings.EqualFold(strings.TrimSpace(v.Currency), accepted) {
			return 0, false
		}
		return Predict(v.SalaryFrom, v.SalaryTo)
	})
}

// AnyCurrency returns the SuperJob estimator, which assumes every listing is
// already in the target currency.
func AnyCurrency() Estimator {
	return EstimatorFunc(func(v models.Vacancy) (float64, bool) {
		return Predict(v.SalaryFrom, v.SalaryTo)
	})
}
