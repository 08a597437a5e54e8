// Package finance provides common financial calculation primitives: present
// value, internal rate of return, and payback analysis over year-indexed cash
// flow schedules.
package finance

import (
	"math"
)

// IRRLowerBound and IRRUpperBound bracket the sane range for the IRR solver.
// Rates outside this range are reported as undetermined rather than
// extrapolated.
const (
	IRRLowerBound = -0.50
	IRRUpperBound = 2.00
)

// irrMaxIterations bounds the bisection loop; 1e-7 interval width is reached
// well before this.
const irrMaxIterations = 200

// DiscountFactor returns 1 / (1+rate)^t for a possibly fractional time t.
func DiscountFactor(rate, t float64) float64 {
	return math.Pow(1+rate, -t)
}

// EscalatedPrice applies compound annual escalation to a base price.
func EscalatedPrice(base, escalation float64, year int) float64 {
	return base * math.Pow(1+escalation, float64(year))
}

// NPV calculates the net present value of a schedule of cash flows, where
// years[i] is the year of flows[i] relative to the valuation date. Negative
// years (pre-development) are supported.
func NPV(years []int, flows []float64, rate float64) float64 {
	npv := 0.0
	for i, cf := range flows {
		npv += cf * DiscountFactor(rate, float64(years[i]))
	}
	return npv
}

// IRR finds the discount rate at which the NPV of the schedule is zero, using
// bisection within [IRRLowerBound, IRRUpperBound]. The second return value is
// false when no root exists in that range; callers must report the IRR as
// undetermined in that case rather than extrapolate.
func IRR(years []int, flows []float64, tolerance float64) (float64, bool) {
	allZero := true
	for _, cf := range flows {
		if cf != 0 {
			allZero = false
			break
		}
	}
	if len(flows) < 2 || allZero {
		return 0, false
	}

	lo, hi := IRRLowerBound, IRRUpperBound
	npvLo := NPV(years, flows, lo)
	npvHi := NPV(years, flows, hi)
	if math.Abs(npvLo) < tolerance {
		return lo, true
	}
	if math.Abs(npvHi) < tolerance {
		return hi, true
	}
	if npvLo*npvHi > 0 {
		// No sign change within the sane rate range.
		return 0, false
	}

	for i := 0; i < irrMaxIterations; i++ {
		mid := (lo + hi) / 2
		npvMid := NPV(years, flows, mid)
		if math.Abs(npvMid) < tolerance || (hi-lo)/2 < 1e-7 {
			return mid, true
		}
		if npvLo*npvMid < 0 {
			hi = mid
		} else {
			lo = mid
			npvLo = npvMid
		}
	}
	return (lo + hi) / 2, true
}

// Payback returns the first year in which cumulative cash flow turns
// non-negative, interpolated to a fraction of that year. The second return
// value is false when the investment is never recovered within the schedule.
func Payback(years []int, flows []float64) (float64, bool) {
	cumulative := 0.0
	for i, cf := range flows {
		previous := cumulative
		cumulative += cf
		if cumulative >= 0 {
			if i == 0 || cf == 0 {
				return float64(years[i]), true
			}
			fraction := math.Abs(previous) / math.Abs(cf)
			return float64(years[i]-1) + fraction, true
		}
	}
	return 0, false
}
