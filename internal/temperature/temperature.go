package temperature

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/vzahanych/weather-notify/internal/apperr"
)

type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
	Kelvin     Unit = "kelvin"
)

// DefaultPrecision is the number of decimal places kept for the primary displayed temperature.
const DefaultPrecision = 2

const absoluteZeroC = 273.15

func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "celsius":
		return Celsius, nil
	case "f", "fahrenheit":
		return Fahrenheit, nil
	case "k", "kelvin":
		return Kelvin, nil
	default:
		return "", fmt.Errorf("unknown temperature unit %q", s)
	}
}

// Symbol is the short suffix shown after the degree sign.
func (u Unit) Symbol() string {
	switch u {
	case Celsius:
		return "C"
	case Fahrenheit:
		return "F"
	case Kelvin:
		return "K"
	default:
		return "?"
	}
}

// Value is a magnitude paired with its unit.
type Value struct {
	Magnitude float64 `json:"magnitude"`
	Unit      Unit    `json:"unit"`
}

func New(magnitude float64, unit Unit) Value {
	return Value{Magnitude: magnitude, Unit: unit}
}

func (v Value) String() string {
	return v.Format() + "°" + v.Unit.Symbol()
}

// Format renders the magnitude with the fewest digits that represent it exactly.
func (v Value) Format() string {
	return strconv.FormatFloat(noNegativeZero(v.Magnitude), 'f', -1, 64)
}

func (v Value) validate(op string) error {
	if math.IsNaN(v.Magnitude) || math.IsInf(v.Magnitude, 0) {
		return apperr.Numeric(op, fmt.Errorf("non-finite magnitude %v", v.Magnitude))
	}
	switch v.Unit {
	case Celsius, Fahrenheit, Kelvin:
		return nil
	default:
		return apperr.Numeric(op, fmt.Errorf("unknown unit %q", v.Unit))
	}
}

func ToCelsius(v Value) (Value, error) {
	return Convert(v, Celsius)
}

func ToFahrenheit(v Value) (Value, error) {
	return Convert(v, Fahrenheit)
}

func ToKelvin(v Value) (Value, error) {
	return Convert(v, Kelvin)
}

// Convert maps v into the target unit. Converting into v's own unit returns v unchanged.
func Convert(v Value, to Unit) (Value, error) {
	if err := v.validate("temperature.Convert"); err != nil {
		return Value{}, err
	}
	if err := (Value{Unit: to}).validate("temperature.Convert"); err != nil {
		return Value{}, err
	}
	if v.Unit == to {
		return v, nil
	}

	m := v.Magnitude
	var out float64
	switch {
	case v.Unit == Kelvin && to == Celsius:
		out = m - absoluteZeroC
	case v.Unit == Celsius && to == Kelvin:
		out = m + absoluteZeroC
	case v.Unit == Celsius && to == Fahrenheit:
		out = m*9/5 + 32
	case v.Unit == Fahrenheit && to == Celsius:
		out = (m - 32) * 5 / 9
	case v.Unit == Kelvin && to == Fahrenheit:
		out = (m-absoluteZeroC)*9/5 + 32
	case v.Unit == Fahrenheit && to == Kelvin:
		out = (m-32)*5/9 + absoluteZeroC
	}
	return Value{Magnitude: out, Unit: to}, nil
}
