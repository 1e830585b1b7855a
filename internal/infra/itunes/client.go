// Package itunes provides a client for the iTunes Search API.
package itunes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the search has no results.
var ErrNotFound = errors.New("track not found on itunes")

// Client is an iTunes Search API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type searchResponse struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		TrackName     string `json:"trackName"`
		ArtistName    string `json:"artistName"`
		TrackViewURL  string `json:"trackViewUrl"`
		CollectionURL string `json:"collectionViewUrl"`
	} `json:"results"`
}

// New creates a new iTunes client.
func New() *Client {
	return &Client{
		baseURL:    "https://itunes.apple.com/search",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// TrackURL searches for the terms and returns the Apple Music URL of the top result.
// Reference: https://performance-partners.apple.com/search-api
func (c *Client) TrackURL(ctx context.Context, terms ...string) (string, error) {
	var parts []string
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("search terms are required")
	}

	params := url.Values{}
	params.Set("term", strings.Join(parts, " "))
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("itunes API error %d", resp.StatusCode)
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrap(err, "failed to parse response")
	}

	if len(response.Results) == 0 || response.Results[0].TrackViewURL == "" {
		zlog.Debug().Msgf("no itunes results for: %s", params.Get("term"))
		return "", ErrNotFound
	}

	return response.Results[0].TrackViewURL, nil
}
