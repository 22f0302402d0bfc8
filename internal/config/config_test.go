package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = "/tmp/out"
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
	assert.Equal(t, 12, cfg.FPS)
	assert.Equal(t, QualityBalanced, cfg.Quality)
	assert.Equal(t, []Format{FormatGIF, FormatAPNG}, cfg.Formats)
	assert.Equal(t, 1, cfg.Workers)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"bad quality", func(c *Config) { c.Quality = "extreme" }},
		{"no formats", func(c *Config) { c.Formats = nil }},
		{"bad format", func(c *Config) { c.Formats = []Format{"webm"} }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"no output dir", func(c *Config) { c.OutputDir = "" }},
		{"zero grace", func(c *Config) { c.CancelGrace = 0 }},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.OutputDir = "/tmp/out"
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateDeduplicatesFormats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDir = "/tmp/out"
	cfg.Formats = []Format{FormatGIF, FormatAPNG, FormatGIF, FormatAPNG}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []Format{FormatGIF, FormatAPNG}, cfg.Formats)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"gif", FormatGIF, false},
		{"GIF", FormatGIF, false},
		{"apng", FormatAPNG, false},
		{"png", FormatAPNG, false},
		{"png-sequence", FormatPNGSequence, false},
		{"png_sequence", FormatPNGSequence, false},
		{" gif ", FormatGIF, false},
		{"webm", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseFormat(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseFormat(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseQuality(t *testing.T) {
	for _, s := range []string{"fast", "balanced", "high", "ultra", "ULTRA"} {
		_, err := ParseQuality(s)
		assert.NoError(t, err, "ParseQuality(%q)", s)
	}
	_, err := ParseQuality("lossless")
	assert.Error(t, err)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "gif", FormatGIF.Extension())
	assert.Equal(t, "png", FormatAPNG.Extension())
	assert.Equal(t, "png", FormatPNGSequence.Extension())

	assert.Equal(t, "gif", FormatGIF.Subdir())
	assert.Equal(t, "apng", FormatAPNG.Subdir())
	assert.Equal(t, "png_sequence", FormatPNGSequence.Subdir())

	assert.Less(t, FormatRank(FormatGIF), FormatRank(FormatAPNG))
	assert.Less(t, FormatRank(FormatAPNG), FormatRank(FormatPNGSequence))
}

func TestFormatsValueReplacesDefaultOnFirstSet(t *testing.T) {
	formats := []Format{FormatGIF, FormatAPNG} // default set
	v := &FormatsValue{P: &formats}

	require.NoError(t, v.Set("png-sequence"))
	assert.Equal(t, []Format{FormatPNGSequence}, formats)

	// Repeated flags accumulate instead of resetting again.
	require.NoError(t, v.Set("gif,apng"))
	assert.Equal(t, []Format{FormatPNGSequence, FormatGIF, FormatAPNG}, formats)

	assert.Error(t, v.Set("webm"))
}

func TestNormalizeDirArg(t *testing.T) {
	assert.Equal(t, "/media/out", NormalizeDirArg("/media/out/"))
	assert.Equal(t, "/media/out", NormalizeDirArg("/media/out"))
	assert.Equal(t, "/", NormalizeDirArg("/"))
}

func TestValidatePaths(t *testing.T) {
	assert.Error(t, ValidatePaths("/media/frames", "/media/frames"))
	assert.Error(t, ValidatePaths("/media/frames", "/media/frames/out"))
	assert.NoError(t, ValidatePaths("/media/frames", "/media/frames-out"))
	assert.NoError(t, ValidatePaths("/media/frames", "/media/out"))
}
