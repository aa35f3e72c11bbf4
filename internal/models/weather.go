package models

import "time"

// WeatherQuery selects the place and window for a weather lookup.
type WeatherQuery struct {
	LocationID ID         `form:"locationId" json:"locationId,omitempty"`
	City       string     `form:"city" json:"city,omitempty"`
	Latitude   *float64   `form:"lat" json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude  *float64   `form:"lon" json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	Days       int        `form:"days" json:"days,omitempty" validate:"omitempty,min=1,max=16"`
	StartDate  *time.Time `form:"startDate" time_format:"2006-01-02" json:"startDate,omitempty"`
	EndDate    *time.Time `form:"endDate" time_format:"2006-01-02" json:"endDate,omitempty"`
}

// HasPlace reports whether the query names a location in any supported way.
func (q WeatherQuery) HasPlace() bool {
	return q.LocationID != "" || q.City != "" || (q.Latitude != nil && q.Longitude != nil)
}

// CurrentWeather is a single observation.
type CurrentWeather struct {
	Location      string    `json:"location"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Temperature   float64   `json:"temperature"`
	FeelsLike     float64   `json:"feelsLike"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"`
	WindDirection float64   `json:"windDirection"`
	Pressure      float64   `json:"pressure"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon,omitempty"`
	ObservedAt    time.Time `json:"observedAt"`
}

// ForecastDay is one day of a forecast.
type ForecastDay struct {
	Date          string  `json:"date"`
	TempMin       float64 `json:"tempMin"`
	TempMax       float64 `json:"tempMax"`
	Precipitation float64 `json:"precipitation"`
	Humidity      float64 `json:"humidity"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon,omitempty"`
}

// Forecast is a multi-day forecast for one place.
type Forecast struct {
	Location string        `json:"location"`
	Days     []ForecastDay `json:"days"`
}

// WeatherRecord is one historical observation.
type WeatherRecord struct {
	Date          string  `json:"date"`
	Temperature   float64 `json:"temperature"`
	TempMin       float64 `json:"tempMin"`
	TempMax       float64 `json:"tempMax"`
	Precipitation float64 `json:"precipitation"`
	Description   string  `json:"description"`
}

// HistoricalWeather is a series of past observations.
type HistoricalWeather struct {
	Location string          `json:"location"`
	Records  []WeatherRecord `json:"records"`
}

// WeatherSnapshot is the background-refreshed random weather shown on the
// landing page, with the time it was fetched.
type WeatherSnapshot struct {
	Weather   CurrentWeather `json:"weather"`
	FetchedAt time.Time      `json:"fetchedAt"`
}
