package filter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengthLimitFilter_Check(t *testing.T) {
	tests := []struct {
		name        string
		minChars    int
		maxLines    int
		lines       []string
		wantCode    string
		description string
	}{
		{
			name:        "Within limits",
			minChars:    5,
			maxLines:    3,
			lines:       []string{"Yesterday, all my troubles seemed so far away"},
			description: "Should accept excerpt within limits",
		},
		{
			name:        "Too short",
			minChars:    10,
			lines:       []string{"Oh."},
			wantCode:    "excerpt_too_short",
			description: "Should reject excerpt shorter than min_chars",
		},
		{
			name:        "Too many lines",
			minChars:    1,
			maxLines:    2,
			lines:       []string{"one", "two", "three"},
			wantCode:    "excerpt_too_long",
			description: "Should reject excerpt with more lines than max_lines",
		},
		{
			name:        "No line limit",
			minChars:    1,
			maxLines:    0,
			lines:       []string{"one", "two", "three", "four"},
			description: "max_lines 0 means no limit",
		},
		{
			name:        "Min counts runes",
			minChars:    3,
			lines:       []string{"àéî"},
			description: "Should count characters, not bytes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewLengthLimitFilter()
			f.config = &LengthLimitConfig{
				MinChars: tt.minChars,
				MaxLines: tt.maxLines,
			}

			result := f.Check(context.Background(), Candidate{
				Lines: tt.lines,
				Text:  strings.Join(tt.lines, "\n"),
			})

			if tt.wantCode != "" {
				assert.False(t, result.Accepted, tt.description)
				assert.Equal(t, tt.wantCode, result.Code)
			} else {
				assert.True(t, result.Accepted, tt.description)
			}
		})
	}
}

func TestLengthLimitFilter_Unconfigured(t *testing.T) {
	result := NewLengthLimitFilter().Check(context.Background(), Candidate{})
	assert.True(t, result.Accepted)
}

func TestLengthLimitFilter_ValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]interface{}
		wantErr  bool
	}{
		{
			name: "Valid config",
			settings: map[string]interface{}{
				"min_chars": 20,
				"max_lines": 4,
			},
		},
		{
			name: "Zero min (uses default min=1)",
			settings: map[string]interface{}{
				"min_chars": 0,
			},
		},
		{
			name: "Invalid negative min",
			settings: map[string]interface{}{
				"min_chars": -1,
			},
			wantErr: true,
		},
		{
			name: "Invalid negative max",
			settings: map[string]interface{}{
				"max_lines": -1,
			},
			wantErr: true,
		},
		{
			name: "Wrong type",
			settings: map[string]interface{}{
				"max_lines": "many",
			},
			wantErr: true,
		},
		{
			name:     "Empty settings (uses defaults, min=1)",
			settings: map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewLengthLimitFilter()
			err := f.ValidateConfig(tt.settings)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.GreaterOrEqual(t, f.config.MinChars, 1)
			}
		})
	}
}
