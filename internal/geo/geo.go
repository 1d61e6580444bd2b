// Package geo resolves coordinates to display addresses through a
// nominatim-style reverse geocoding endpoint. Lookups are best effort:
// any failure falls back to the raw coordinate string and never blocks
// case submission.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is the public nominatim reverse endpoint.
const DefaultEndpoint = "https://nominatim.openstreetmap.org/reverse"

// Client is a reverse geocoding client.
type Client struct {
	endpoint string
	httpc    *http.Client
	logger   *zap.SugaredLogger
}

// NewClient creates a geocoding client against the given endpoint.
func NewClient(endpoint string, logger *zap.SugaredLogger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Fallback renders the raw coordinate string used whenever a lookup fails.
func Fallback(lat, lon float64) string {
	return fmt.Sprintf("%s, %s",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64))
}

// ReverseGeocode resolves coordinates to a display address, falling back to
// the raw coordinates on any failure.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) string {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Fallback(lat, lon)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warnw("Reverse geocode failed", "error", err)
		return Fallback(lat, lon)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnw("Reverse geocode non-OK response", "status", resp.StatusCode)
		return Fallback(lat, lon)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.DisplayName == "" {
		return Fallback(lat, lon)
	}
	return body.DisplayName
}
