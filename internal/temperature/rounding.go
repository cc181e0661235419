package temperature

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundHalfEven rounds x to places decimal places, breaking ties towards the even digit
// (6.5 -> 6, 7.5 -> 8). The float is taken at its shortest decimal representation so
// 2.675 is treated as the tie it reads as.
func RoundHalfEven(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	if places < 0 {
		places = 0
	}
	return decimal.NewFromFloat(x).RoundBank(int32(places)).InexactFloat64()
}

// Round applies RoundHalfEven to the magnitude.
func Round(v Value, places int) (Value, error) {
	if err := v.validate("temperature.Round"); err != nil {
		return Value{}, err
	}
	return Value{Magnitude: noNegativeZero(RoundHalfEven(v.Magnitude, places)), Unit: v.Unit}, nil
}

func Floor(v Value) (Value, error) {
	if err := v.validate("temperature.Floor"); err != nil {
		return Value{}, err
	}
	return Value{Magnitude: noNegativeZero(math.Floor(v.Magnitude)), Unit: v.Unit}, nil
}

func Ceil(v Value) (Value, error) {
	if err := v.validate("temperature.Ceil"); err != nil {
		return Value{}, err
	}
	return Value{Magnitude: noNegativeZero(math.Ceil(v.Magnitude)), Unit: v.Unit}, nil
}

// noNegativeZero maps -0 to 0; math.Ceil(-0.4) would otherwise show as "-0".
func noNegativeZero(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x
}

// Display holds the three temperatures shown to the user.
type Display struct {
	Current Value `json:"current"`
	Min     Value `json:"min"`
	Max     Value `json:"max"`
}

// NewDisplay converts provider readings into unit. The current temperature is rounded
// half-to-even to precision places; the minimum is floored and the maximum ceiled so the
// shown range is never narrower than the reported one.
func NewDisplay(current, minimum, maximum Value, unit Unit, precision int) (Display, error) {
	c, err := Convert(current, unit)
	if err != nil {
		return Display{}, err
	}
	lo, err := Convert(minimum, unit)
	if err != nil {
		return Display{}, err
	}
	hi, err := Convert(maximum, unit)
	if err != nil {
		return Display{}, err
	}

	if c, err = Round(c, precision); err != nil {
		return Display{}, err
	}
	if lo, err = Floor(lo); err != nil {
		return Display{}, err
	}
	if hi, err = Ceil(hi); err != nil {
		return Display{}, err
	}
	return Display{Current: c, Min: lo, Max: hi}, nil
}
