package upstream

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/weather-events-bff/internal/models"
)

const weatherPath = "/api/weather"

// RandomWeather returns a random observation. It needs no session.
func (c *Client) RandomWeather(ctx context.Context) (*models.CurrentWeather, error) {
	var out models.CurrentWeather
	if err := c.do(ctx, request{name: "weather.random", method: http.MethodGet, path: weatherPath + "/random"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CurrentWeather returns the current observation for q.
func (c *Client) CurrentWeather(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.CurrentWeather, error) {
	var out models.CurrentWeather
	req := request{name: "weather.current", method: http.MethodGet, path: weatherPath + "/current", query: weatherValues(q), session: sess}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Forecast returns a multi-day forecast for q.
func (c *Client) Forecast(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.Forecast, error) {
	var out models.Forecast
	req := request{name: "weather.forecast", method: http.MethodGet, path: weatherPath + "/forecast", query: weatherValues(q), session: sess}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HistoricalWeather returns past observations for q.
func (c *Client) HistoricalWeather(ctx context.Context, sess *models.Session, q models.WeatherQuery) (*models.HistoricalWeather, error) {
	var out models.HistoricalWeather
	req := request{name: "weather.historical", method: http.MethodGet, path: weatherPath + "/historical", query: weatherValues(q), session: sess}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func weatherValues(q models.WeatherQuery) url.Values {
	v := url.Values{}
	if q.LocationID != "" {
		v.Set("locationId", q.LocationID.String())
	}
	if q.City != "" {
		v.Set("city", q.City)
	}
	if q.Latitude != nil && q.Longitude != nil {
		v.Set("lat", strconv.FormatFloat(*q.Latitude, 'f', -1, 64))
		v.Set("lon", strconv.FormatFloat(*q.Longitude, 'f', -1, 64))
	}
	if q.Days > 0 {
		v.Set("days", strconv.Itoa(q.Days))
	}
	if q.StartDate != nil {
		v.Set("startDate", q.StartDate.Format("2006-01-02"))
	}
	if q.EndDate != nil {
		v.Set("endDate", q.EndDate.Format("2006-01-02"))
	}
	return v
}
