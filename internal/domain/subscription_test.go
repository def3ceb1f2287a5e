package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in     string
		want   Tier
		wantOK bool
	}{
		{"free", TierFree, true},
		{"Essential", TierEssential, true},
		{"  PREMIUM ", TierPremium, true},
		{"enterprise", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTier(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTier_UnknownFailsClosed(t *testing.T) {
	assert.Equal(t, TierFree, NormalizeTier("gold"))
	assert.Equal(t, TierFree, NormalizeTier(""))
	assert.Equal(t, TierPremium, NormalizeTier("premium"))
}

func TestParseAssistant(t *testing.T) {
	a, ok := ParseAssistant("Coly")
	assert.True(t, ok)
	assert.Equal(t, AssistantColy, a)

	a, ok = ParseAssistant("max")
	assert.True(t, ok)
	assert.Equal(t, AssistantMax, a)

	_, ok = ParseAssistant("siri")
	assert.False(t, ok)
}

func TestAssistant_DisplayName(t *testing.T) {
	assert.Equal(t, "Coly", AssistantColy.DisplayName())
	assert.Equal(t, "Max", AssistantMax.DisplayName())
}
