package notify

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vzahanych/weather-notify/internal/apperr"
	"github.com/vzahanych/weather-notify/internal/temperature"
	"github.com/vzahanych/weather-notify/internal/weather"
)

// DefaultIcon is shown for conditions without a dedicated icon.
const DefaultIcon = "dialog-information"

// Freedesktop icon names keyed by the provider's condition group.
var conditionIcons = map[string]string{
	"Clear":        "weather-clear",
	"Clouds":       "weather-overcast",
	"Drizzle":      "weather-showers-scattered",
	"Rain":         "weather-showers",
	"Thunderstorm": "weather-storm",
	"Snow":         "weather-snow",
	"Mist":         "weather-fog",
	"Fog":          "weather-fog",
	"Haze":         "weather-fog",
	"Smoke":        "weather-fog",
	"Dust":         "weather-fog",
	"Sand":         "weather-fog",
	"Ash":          "weather-fog",
	"Squall":       "weather-storm",
	"Tornado":      "weather-severe-alert",
}

const fewCloudsID = 801

// IconFor picks the icon for a condition. Unknown groups map to DefaultIcon.
func IconFor(c weather.Condition) string {
	night := strings.HasSuffix(c.Icon, "n")

	switch {
	case c.Main == "Clouds" && c.ID == fewCloudsID:
		if night {
			return "weather-few-clouds-night"
		}
		return "weather-few-clouds"
	case c.Main == "Clear" && night:
		return "weather-clear-night"
	}

	if icon, ok := conditionIcons[c.Main]; ok {
		return icon
	}
	return DefaultIcon
}

// Compose builds the notification for place from the first reported condition and the
// display temperatures, which must share one unit.
//
//	summary: "Paris 10.03°C"
//	body:    "Clear sky... 9°C / 12°C"
func Compose(place string, snapshot *weather.Snapshot, display temperature.Display) (Payload, error) {
	const op = "notify.Compose"

	place = strings.TrimSpace(place)
	if place == "" {
		return Payload{}, apperr.EmptyInput(op)
	}
	if snapshot == nil {
		return Payload{}, apperr.DataFormat(op, nil, fmt.Errorf("no snapshot"))
	}
	condition, err := snapshot.Primary()
	if err != nil {
		return Payload{}, apperr.DataFormat(op, nil, err)
	}

	unit := display.Current.Unit
	if display.Min.Unit != unit || display.Max.Unit != unit {
		return Payload{}, apperr.Numeric(op, fmt.Errorf("mixed units %s/%s/%s", unit, display.Min.Unit, display.Max.Unit))
	}
	for _, v := range []temperature.Value{display.Current, display.Min, display.Max} {
		// Convert to the same unit is the identity but rejects non-finite values.
		if _, err := temperature.Convert(v, unit); err != nil {
			return Payload{}, err
		}
	}

	summary := fmt.Sprintf("%s %s", place, display.Current)
	body := fmt.Sprintf("%s... %s / %s", capitalize(condition.Description), display.Min, display.Max)

	payload, err := NewPayload(summary, body, IconFor(condition))
	if err != nil {
		return Payload{}, apperr.DataFormat(op, nil, err)
	}
	return payload, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
