// README: Open-Meteo weather lookup used as an optional prompt hint.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	geocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	forecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// Client resolves a place name to coordinates and fetches a short
// weather summary. Every failure is returned as an error; callers use
// the summary as a best-effort hint and drop it on failure.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: 10 * time.Second}}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		Windspeed   float64 `json:"windspeed"`
	} `json:"current_weather"`
	Daily struct {
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		PrecipProbMax  []int     `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Lookup returns a one-line weather summary for place on the given
// date. date accepts "today" (or empty) for current conditions and a
// 2006-01-02 calendar date for the daily forecast; anything else falls
// back to current conditions.
func (c *Client) Lookup(ctx context.Context, place, date string) (string, error) {
	name, lat, lng, err := c.geocode(ctx, place)
	if err != nil {
		return "", err
	}

	if d, perr := time.Parse("2006-01-02", date); perr == nil {
		summary, err := c.dailyForecast(ctx, lat, lng, d)
		if err == nil {
			return fmt.Sprintf("📍 %s %s: %s", name, date, summary), nil
		}
		// Date out of forecast range: degrade to current conditions.
	}

	temp, wind, err := c.currentWeather(ctx, lat, lng)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📍 %s 現況: %.1f°C, 風速 %.0f km/h", name, temp, wind), nil
}

func (c *Client) geocode(ctx context.Context, place string) (name string, lat, lng float64, err error) {
	q := url.Values{}
	q.Set("name", place)
	q.Set("count", "1")
	q.Set("format", "json")

	var resp geocodingResponse
	if err := c.getJSON(ctx, geocodingURL+"?"+q.Encode(), &resp); err != nil {
		return "", 0, 0, err
	}
	if len(resp.Results) == 0 {
		return "", 0, 0, fmt.Errorf("weather: no match for %q", place)
	}
	r := resp.Results[0]
	return r.Name, r.Latitude, r.Longitude, nil
}

func (c *Client) currentWeather(ctx context.Context, lat, lng float64) (temp, wind float64, err error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lng))
	q.Set("current_weather", "true")

	var resp forecastResponse
	if err := c.getJSON(ctx, forecastURL+"?"+q.Encode(), &resp); err != nil {
		return 0, 0, err
	}
	return resp.CurrentWeather.Temperature, resp.CurrentWeather.Windspeed, nil
}

func (c *Client) dailyForecast(ctx context.Context, lat, lng float64, date time.Time) (string, error) {
	day := date.Format("2006-01-02")
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lng))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	q.Set("timezone", "auto")
	q.Set("start_date", day)
	q.Set("end_date", day)

	var resp forecastResponse
	if err := c.getJSON(ctx, forecastURL+"?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	d := resp.Daily
	if len(d.TemperatureMax) == 0 || len(d.TemperatureMin) == 0 {
		return "", fmt.Errorf("weather: date out of forecast range")
	}
	summary := fmt.Sprintf("%.0f~%.0f°C", d.TemperatureMin[0], d.TemperatureMax[0])
	if len(d.PrecipProbMax) > 0 {
		summary += fmt.Sprintf(", 降雨機率 %d%%", d.PrecipProbMax[0])
	}
	return summary, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather: upstream returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
