package domain

import "strconv"

// WeatherColumns is the header of the combined weather file.
var WeatherColumns = []string{
	"date",
	"temperature_max",
	"temperature_min",
	"precipitation_sum",
	"windspeed_max",
	"weather_code",
}

// WeatherRecord is one day of archived weather. Nil fields had no value in
// the source.
type WeatherRecord struct {
	Date             string
	TemperatureMax   *float64
	TemperatureMin   *float64
	PrecipitationSum *float64
	WindspeedMax     *float64
	WeatherCode      *int
}

// Cells renders the record in WeatherColumns order. Nil values become "".
func (r WeatherRecord) Cells() []string {
	return []string{
		r.Date,
		formatFloatPtr(r.TemperatureMax),
		formatFloatPtr(r.TemperatureMin),
		formatFloatPtr(r.PrecipitationSum),
		formatFloatPtr(r.WindspeedMax),
		formatIntPtr(r.WeatherCode),
	}
}

func (r WeatherRecord) empty() bool {
	return r.Date == "" &&
		r.TemperatureMax == nil &&
		r.TemperatureMin == nil &&
		r.PrecipitationSum == nil &&
		r.WindspeedMax == nil &&
		r.WeatherCode == nil
}

// DedupWeather drops records with no values at all and collapses records
// sharing a date to the first one seen. Input order is otherwise preserved.
func DedupWeather(records []WeatherRecord) []WeatherRecord {
	seen := make(map[string]bool, len(records))
	out := make([]WeatherRecord, 0, len(records))
	for _, r := range records {
		if r.empty() {
			continue
		}
		if seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		out = append(out, r)
	}
	return out
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
