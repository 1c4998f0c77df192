package providers

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// ForecastHour is the trimmed view of one hourly forecast entry.
type ForecastHour struct {
	Time       string          `json:"time"`
	TempC      float64         `json:"temp_c"`
	TempF      float64         `json:"temp_f"`
	IsDay      int64           `json:"is_day"`
	Condition  json.RawMessage `json:"condition"`
	WindMph    float64         `json:"wind_mph"`
	WindKph    float64         `json:"wind_kph"`
	WindDegree int64           `json:"wind_degree"`
	WindDir    string          `json:"wind_dir"`
}

// Forecast is the reshaped forecast: the provider's location block plus the
// upcoming hours keyed forecast_hour_1..N.
type Forecast struct {
	Location json.RawMessage         `json:"location"`
	Forecast map[string]ForecastHour `json:"forecast"`
}

// ReshapeForecast keeps the first hours entries whose time_epoch is not
// before the location's local time. ok is false when the payload lacks the
// location or forecast blocks; callers then return the payload unchanged.
func ReshapeForecast(raw []byte, hours int) (forecast *Forecast, ok bool) {
	location := gjson.GetBytes(raw, "location")
	days := gjson.GetBytes(raw, "forecast.forecastday")
	if !location.IsObject() || !days.Exists() {
		return nil, false
	}

	now := location.Get("localtime_epoch").Int()
	out := &Forecast{
		Location: json.RawMessage(location.Raw),
		Forecast: make(map[string]ForecastHour, hours),
	}

	n := 0
	for _, day := range days.Array() {
		for _, hour := range day.Get("hour").Array() {
			if n >= hours {
				return out, true
			}
			if hour.Get("time_epoch").Int() < now {
				continue
			}
			n++
			out.Forecast[fmt.Sprintf("forecast_hour_%d", n)] = ForecastHour{
				Time:       hour.Get("time").String(),
				TempC:      hour.Get("temp_c").Float(),
				TempF:      hour.Get("temp_f").Float(),
				IsDay:      hour.Get("is_day").Int(),
				Condition:  rawOrNull(hour.Get("condition")),
				WindMph:    hour.Get("wind_mph").Float(),
				WindKph:    hour.Get("wind_kph").Float(),
				WindDegree: hour.Get("wind_degree").Int(),
				WindDir:    hour.Get("wind_dir").String(),
			}
		}
	}
	return out, true
}

func rawOrNull(r gjson.Result) json.RawMessage {
	if !r.Exists() {
		return json.RawMessage("null")
	}
	return json.RawMessage(r.Raw)
}
