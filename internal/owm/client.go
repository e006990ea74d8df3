package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// DefaultBaseURL is the production OpenWeatherMap endpoint root.
const DefaultBaseURL = "https://api.openweathermap.org"

var (
	errNoAPIKey     = errors.New("openweather api key is not configured")
	errNoHTTPClient = errors.New("http client not configured")
	errUnexpected   = errors.New("unexpected status code")
	errMissingField = errors.New("missing field in response")
)

// Client calls the OpenWeatherMap current-conditions endpoints. Every call is
// a single attempt: any network error, non-2xx status, undecodable body, or
// absent field fails the whole fetch.
type Client struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewClient(client *http.Client, apiKey string) *Client {
	return &Client{
		client:  client,
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
	}
}

// NewClientAt points the client at an alternate endpoint root.
func NewClientAt(client *http.Client, apiKey, baseURL string) *Client {
	c := NewClient(client, apiKey)
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	if c.client == nil {
		return errNoHTTPClient
	}
	if c.apiKey == "" {
		return errNoAPIKey
	}
	query.Set("appid", c.apiKey)

	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return stripURL(path, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return stripURL(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// stripURL drops the request URL from transport errors, keeping the operation
// and the underlying cause. url.Error text embeds the full URL, api key
// included, and must never reach logs or run reports.
func stripURL(path string, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s %s: %w", uerr.Op, path, uerr.Err)
	}
	return err
}

func coordQuery(lat, lon float64) url.Values {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	return values
}
