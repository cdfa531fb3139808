package contextutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumericToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"plain integer", "2300", 2300, true},
		{"decimal", "46.3 years", 46.3, true},
		{"currency with thousands", "$12,450", 12450, true},
		{"euro", "€1,200 per year", 1200, true},
		{"percent", "81.5%", 81.5, true},
		{"negative", "-2.5 tonnes", -2.5, true},
		{"embedded in text", "about 73 out of 100", 73, true},
		{"no digits", "Gross National Happiness", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumericToken(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseChoice(t *testing.T) {
	t.Run("currency prefix and unit suffix", func(t *testing.T) {
		parts, ok := ParseChoice("$2,300 USD")
		require.True(t, ok)
		assert.Equal(t, "$", parts.Prefix)
		assert.InDelta(t, 2300, parts.Magnitude, 1e-9)
		assert.Equal(t, 0, parts.Decimals)
		assert.Equal(t, "USD", parts.Suffix)
	})

	t.Run("decimal with unit", func(t *testing.T) {
		parts, ok := ParseChoice("46.3 years")
		require.True(t, ok)
		assert.Equal(t, "", parts.Prefix)
		assert.InDelta(t, 46.3, parts.Magnitude, 1e-9)
		assert.Equal(t, 1, parts.Decimals)
		assert.Equal(t, "years", parts.Suffix)
	})

	t.Run("percent suffix", func(t *testing.T) {
		parts, ok := ParseChoice("81.5%")
		require.True(t, ok)
		assert.Equal(t, "%", parts.Suffix)
		assert.Equal(t, "", parts.Separator)
	})

	t.Run("spaced percent suffix", func(t *testing.T) {
		parts, ok := ParseChoice("81.5 %")
		require.True(t, ok)
		assert.Equal(t, "%", parts.Suffix)
		assert.Equal(t, " ", parts.Separator)
	})

	t.Run("textual choice rejected", func(t *testing.T) {
		_, ok := ParseChoice("Military strength")
		assert.False(t, ok)
	})
}

func TestChoicePartsRender(t *testing.T) {
	parts, ok := ParseChoice("$2,300.75 USD")
	require.True(t, ok)

	assert.Equal(t, "$2301 USD", parts.Render(0))
	assert.Equal(t, "$2300.8 USD", parts.Render(1))

	// Unit spacing survives re-rendering
	tight, ok := ParseChoice("46.0%")
	require.True(t, ok)
	assert.Equal(t, "46%", tight.Render(0))

	spaced, ok := ParseChoice("46.0 %")
	require.True(t, ok)
	assert.Equal(t, "46 %", spaced.Render(0))
}

func TestFormatLikeToken(t *testing.T) {
	assert.Equal(t, "46.3", FormatLikeToken("45.9", 46.3))
	assert.Equal(t, "46", FormatLikeToken("45", 46.3))
}
