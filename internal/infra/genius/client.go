// Package genius provides a client for the Genius lyrics database.
package genius

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyricpost/internal/domain/lyrics"
	"github.com/osa030/lyricpost/internal/infra/retry"
)

// ErrNotFound is returned when no song with lyrics is found.
var ErrNotFound = errors.New("song not found on genius")

// nonSongTerms marks search hits that are pages about a release rather than a song.
var nonSongTerms = regexp.MustCompile(`(?i)(tracks?\s?list|album art(work)?|liner notes|booklet|credits|interview|skit|instrumental|setlist)`)

// Client is a Genius API client.
type Client struct {
	accessToken   string
	baseURL       string
	excludedTerms []string
	httpClient    *http.Client
	retry         retry.Policy
}

// Config represents Genius client configuration.
type Config struct {
	AccessToken   string
	ExcludedTerms []string // Hits whose title contains one of these are skipped
	Retry         retry.Policy
}

// searchResponse represents the response from the search API.
type searchResponse struct {
	Meta struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"meta"`
	Response struct {
		Hits []hit `json:"hits"`
	} `json:"response"`
}

type hit struct {
	Type   string `json:"type"`
	Result struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		LyricsState   string `json:"lyrics_state"`
		PrimaryArtist struct {
			Name string `json:"name"`
		} `json:"primary_artist"`
	} `json:"result"`
}

// New creates a new Genius client.
func New(cfg Config) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, errors.New("genius access token is required")
	}

	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = retry.Policy{MaxAttempts: 3, Backoff: retry.Linear(time.Second)}
	}
	policy.Retryable = retry.IsTransient

	return &Client{
		accessToken:   cfg.AccessToken,
		baseURL:       "https://api.genius.com",
		excludedTerms: cfg.ExcludedTerms,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		retry:         policy,
	}, nil
}

// Search finds the song for title and artist and fetches its lyrics.
// Returns ErrNotFound when no usable hit exists.
func (c *Client) Search(ctx context.Context, title, artist string) (*lyrics.Song, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}

	var hits []hit
	err := c.retry.Do(ctx, func() error {
		h, err := c.search(ctx, strings.TrimSpace(title+" "+artist))
		if err != nil {
			return err
		}
		hits = h
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search genius")
	}

	best, ok := c.pickHit(hits, artist)
	if !ok {
		return nil, ErrNotFound
	}

	var text string
	err = c.retry.Do(ctx, func() error {
		t, err := c.fetchLyrics(ctx, best.Result.URL)
		if err != nil {
			return err
		}
		text = t
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch lyrics from %s", best.Result.URL)
	}
	if text == "" {
		return nil, ErrNotFound
	}

	return &lyrics.Song{
		Title:  best.Result.Title,
		Artist: best.Result.PrimaryArtist.Name,
		URL:    best.Result.URL,
		Lyrics: text,
	}, nil
}

// search calls the search API.
// Reference: https://docs.genius.com/#search-h2
func (c *Client) search(ctx context.Context, query string) ([]hit, error) {
	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("genius API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response searchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	return response.Response.Hits, nil
}

// pickHit returns the first usable song hit, preferring one by artist.
func (c *Client) pickHit(hits []hit, artist string) (hit, bool) {
	var fallback *hit
	for i := range hits {
		h := hits[i]
		if !c.isLyrics(h) {
			continue
		}
		if strings.EqualFold(h.Result.PrimaryArtist.Name, artist) {
			return h, true
		}
		if fallback == nil {
			fallback = &hits[i]
		}
	}
	if fallback == nil {
		return hit{}, false
	}
	return *fallback, true
}

// isLyrics reports whether the hit is a song page that can carry lyrics.
func (c *Client) isLyrics(h hit) bool {
	if h.Type != "song" || h.Result.URL == "" {
		return false
	}
	if h.Result.LyricsState != "" && h.Result.LyricsState != "complete" {
		return false
	}
	title := strings.ToLower(h.Result.Title)
	for _, term := range c.excludedTerms {
		if strings.Contains(title, strings.ToLower(term)) {
			zlog.Debug().Msgf("skipping excluded genius hit: %s", h.Result.Title)
			return false
		}
	}
	return !nonSongTerms.MatchString(h.Result.Title)
}

// fetchLyrics downloads a song page and extracts the lyrics text.
func (c *Client) fetchLyrics(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to fetch page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf("HTTP error fetching lyrics page: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse HTML")
	}

	return ExtractLyrics(doc), nil
}

// ExtractLyrics returns the lyrics text of a Genius song page.
// Line breaks become newlines; containers are joined with a newline.
func ExtractLyrics(doc *goquery.Document) string {
	var parts []string
	doc.Find(`div[data-lyrics-container="true"]`).Each(func(_ int, sel *goquery.Selection) {
		sel.Find(`[data-exclude-from-selection="true"]`).Remove()
		sel.Find("br").ReplaceWithHtml("\n")
		parts = append(parts, sel.Text())
	})
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
