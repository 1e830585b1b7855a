package links

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/lyricpost/internal/infra/config"
)

// DefaultProviders is the provider order used when none are configured.
var DefaultProviders = []config.LinkConfig{
	{Type: "lastfm"},
	{Type: "apple"},
	{Type: "spotify"},
}

// NewProviderChainFromConfig creates a provider chain from configuration.
// A nil client disables the providers that need it.
func NewProviderChainFromConfig(cfg *config.Config, lastfm LastFmClient, apple AppleClient) (*ProviderChain, error) {
	pcfgs := cfg.Links
	if len(pcfgs) == 0 {
		pcfgs = DefaultProviders
	}

	var providers []ProviderWithMetadata

	for i, pcfg := range pcfgs {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating link provider: index=%d type=%s settings=%+v", i+1, pcfg.Type, pcfg.Settings)
		switch pcfg.Type {
		case "lastfm":
			if lastfm == nil {
				zlog.Info().Msg("last.fm is not configured, skipping lastfm link provider")
				continue
			}
			provider, err = NewLastFmProvider(lastfm, pcfg.Settings)

		case "apple":
			if apple == nil {
				continue
			}
			provider, err = NewAppleProvider(apple, pcfg.Settings)

		case "spotify":
			provider = &SpotifyProvider{}

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		name := pcfg.Name
		if name == "" {
			name = pcfg.Type
		}
		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: name,
		})

		zlog.Info().Msgf("registered link provider: index=%d type=%s display_name=%s", i+1, pcfg.Type, name)
	}

	return NewProviderChain(providers), nil
}
