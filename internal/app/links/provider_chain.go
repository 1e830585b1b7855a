package links

import (
	"context"
	"strings"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyricpost/internal/domain/track"
)

// Link is a found cross-reference.
type Link struct {
	DisplayName string
	URL         string
}

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// ProviderChain asks every provider in order for a link.
type ProviderChain struct {
	providers []ProviderWithMetadata
}

// NewProviderChain creates a new provider chain.
func NewProviderChain(providers []ProviderWithMetadata) *ProviderChain {
	return &ProviderChain{
		providers: providers,
	}
}

// Collect returns the links found by the providers, in provider order.
// A failing provider is logged and skipped.
func (c *ProviderChain) Collect(ctx context.Context, song track.NowPlaying) []Link {
	var links []Link
	for i, pm := range c.providers {
		zlog.Debug().Msgf("trying provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		u, err := pm.Provider.Link(ctx, song)
		if err != nil {
			zlog.Warn().Msgf("provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			continue
		}
		if u == "" {
			zlog.Debug().Msgf("provider found no link: provider=%s", pm.DisplayName)
			continue
		}
		links = append(links, Link{DisplayName: pm.DisplayName, URL: u})
	}
	return links
}

// Providers returns the providers in the chain.
func (c *ProviderChain) Providers() []ProviderWithMetadata {
	return c.providers
}

// FormatReply builds the reply text posted under an excerpt.
func FormatReply(geniusURL string, links []Link) string {
	var b strings.Builder
	b.WriteString("\n\ngenius: ")
	b.WriteString(geniusURL)
	for _, l := range links {
		b.WriteString("\n")
		b.WriteString(l.DisplayName)
		b.WriteString(": ")
		b.WriteString(l.URL)
	}
	return b.String()
}
