package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ironsheep/map-georef/internal/config"
)

// Nominatim queries an OpenStreetMap Nominatim search endpoint.
//
// Requests are limited to RequestsPerSecond across all callers sharing the
// client, as the public service's usage policy demands.
type Nominatim struct {
	baseURL      string
	countryCodes string
	userAgent    string
	timeout      time.Duration
	client       *http.Client
	limiter      *rate.Limiter
}

// NewNominatim creates a client from the geocoding config section.
func NewNominatim(cfg config.GeocodingConfig) *Nominatim {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Nominatim{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		countryCodes: cfg.CountryCodes,
		userAgent:    cfg.UserAgent,
		timeout:      cfg.Timeout,
		client:       &http.Client{},
		limiter:      rate.NewLimiter(limit, 1),
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode asks for the single best match restricted to the configured
// countries. The timeout covers the rate limiter wait and the round trip.
func (n *Nominatim) Geocode(ctx context.Context, query string) (*Place, error) {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, &GeocodeError{Query: query, Err: err}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")
	if n.countryCodes != "" {
		params.Set("countrycodes", n.countryCodes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &GeocodeError{Query: query, Err: err}
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &GeocodeError{Query: query, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &GeocodeError{Query: query, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &GeocodeError{Query: query, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, &GeocodeError{Query: query, Err: fmt.Errorf("invalid lat %q", results[0].Lat)}
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, &GeocodeError{Query: query, Err: fmt.Errorf("invalid lon %q", results[0].Lon)}
	}

	return &Place{Lon: lon, Lat: lat, DisplayName: results[0].DisplayName}, nil
}
