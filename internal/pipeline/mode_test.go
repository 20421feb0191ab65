package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in       string
		expected Mode
	}{
		{in: "development", expected: ModeDevelopment},
		{in: "hot", expected: ModeHot},
		{in: "production", expected: ModeProduction},
		{in: "", expected: ModeDevelopment},
		{in: "staging", expected: ModeDevelopment},
		{in: "PRODUCTION", expected: ModeDevelopment},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.expected, ParseMode(tt.in))
		})
	}
}
