package filter

import (
	"bufio"
	"context"
	"os"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"
)

// ProfanityConfig represents the configuration for ProfanityFilter.
type ProfanityConfig struct {
	// BlocklistPath replaces the built-in word list with one word per line.
	BlocklistPath  string   `yaml:"blocklist_path" mapstructure:"blocklist_path"`
	FalsePositives []string `yaml:"false_positives" mapstructure:"false_positives"`
}

// ProfanityFilter rejects excerpts that contain blocked words.
type ProfanityFilter struct {
	detector *goaway.ProfanityDetector
}

// NewProfanityFilter creates a profanity filter using the built-in word list.
func NewProfanityFilter() *ProfanityFilter {
	return &ProfanityFilter{detector: goaway.NewProfanityDetector()}
}

func (f *ProfanityFilter) Name() string {
	return "profanity_filter"
}

func (f *ProfanityFilter) Description() string {
	return "Rejects excerpts containing blocked words"
}

func (f *ProfanityFilter) ReturnCodes() []string {
	return []string{"profane_lyrics"}
}

func (f *ProfanityFilter) ValidateConfig(settings map[string]any) error {
	var config ProfanityConfig
	if err := mapstructure.Decode(settings, &config); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}

	words := goaway.DefaultProfanities
	if config.BlocklistPath != "" {
		loaded, err := loadWordList(config.BlocklistPath)
		if err != nil {
			return err
		}
		if len(loaded) == 0 {
			return errors.Newf("blocklist %s contains no words", config.BlocklistPath)
		}
		words = loaded
	}

	falsePositives := append(append([]string{}, goaway.DefaultFalsePositives...), config.FalsePositives...)
	f.detector = goaway.NewProfanityDetector().
		WithCustomDictionary(words, falsePositives, goaway.DefaultFalseNegatives)

	zlog.Info().Msgf("profanity filter config: words=%d false_positives=%d", len(words), len(falsePositives))
	return nil
}

func (f *ProfanityFilter) Check(ctx context.Context, c Candidate) Result {
	if f.detector == nil {
		f.detector = goaway.NewProfanityDetector()
	}
	if f.detector.IsProfane(c.Text) {
		return Reject("profane_lyrics")
	}
	return Accept()
}

// loadWordList reads one lowercase word per line, skipping blanks and # comments.
func loadWordList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open blocklist %s", path)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read blocklist %s", path)
	}
	return words, nil
}

func init() {
	Register("profanity_filter", func() Filter {
		return NewProfanityFilter()
	})
}
