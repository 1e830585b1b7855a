package filter

import (
	"context"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// LengthLimitConfig represents the configuration for LengthLimitFilter.
type LengthLimitConfig struct {
	MinChars int `yaml:"min_chars" mapstructure:"min_chars" default:"1" validate:"gte=1"`
	MaxLines int `yaml:"max_lines" mapstructure:"max_lines" validate:"gte=0"`
}

// LengthLimitFilter rejects excerpts that are too short to stand alone or span too many lines.
type LengthLimitFilter struct {
	config *LengthLimitConfig
}

// NewLengthLimitFilter creates a new length limit filter.
func NewLengthLimitFilter() *LengthLimitFilter {
	return &LengthLimitFilter{}
}

func (f *LengthLimitFilter) Name() string {
	return "length_limit_filter"
}

func (f *LengthLimitFilter) Description() string {
	return "Checks if the excerpt length is within allowed limits"
}

func (f *LengthLimitFilter) ReturnCodes() []string {
	return []string{"excerpt_too_short", "excerpt_too_long"}
}

func (f *LengthLimitFilter) ValidateConfig(settings map[string]any) error {
	var config LengthLimitConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &config,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	if err := defaults.Set(&config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}

	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}

	f.config = &config
	zlog.Info().Msgf("length limit filter config: %+v", config)
	return nil
}

func (f *LengthLimitFilter) Check(ctx context.Context, c Candidate) Result {
	// If config is not set, accept everything
	if f.config == nil {
		return Accept()
	}

	if utf8.RuneCountInString(c.Text) < f.config.MinChars {
		return Reject("excerpt_too_short")
	}

	// 0 means no limit
	if f.config.MaxLines > 0 && len(c.Lines) > f.config.MaxLines {
		return Reject("excerpt_too_long")
	}

	return Accept()
}

func init() {
	Register("length_limit_filter", func() Filter {
		return &LengthLimitFilter{}
	})
}
