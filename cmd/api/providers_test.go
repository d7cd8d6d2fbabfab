package main

import (
	"testing"

	"photobooth/internal/infra"
	"photobooth/internal/providers/image"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvidersFollowsCredentials(t *testing.T) {
	tests := []struct {
		name       string
		gemini     string
		stability  string
		wantGen    bool
		wantStages []string
	}{
		{name: "both", gemini: "g", stability: "s", wantGen: true, wantStages: []string{"gemini-edit", "stability"}},
		{name: "gemini only", gemini: "g", wantGen: true, wantStages: []string{"gemini-edit", "imagen-conditioned"}},
		{name: "stability only", stability: "s", wantStages: []string{"stability"}},
		{name: "none", wantStages: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &infra.Config{GeminiAPIKey: tt.gemini, StabilityAPIKey: tt.stability}
			gen, stylizer := newProviders(cfg, nil, nil)

			assert.Equal(t, tt.wantGen, gen != nil)
			chain, ok := stylizer.(*image.Chain)
			require.True(t, ok)
			assert.Equal(t, tt.wantStages, chain.Stages())
		})
	}
}
