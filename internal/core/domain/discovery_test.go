package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestConfidenceThresholds_Tier tests score to tier mapping
func TestConfidenceThresholds_Tier(t *testing.T) {
	thresholds := DefaultConfidenceThresholds

	tests := []struct {
		name  string
		score float64
		want  Confidence
	}{
		{"well above high", 0.99, ConfidenceHigh},
		{"exactly high", 0.95, ConfidenceHigh},
		{"just below high", 0.9499, ConfidenceMedium},
		{"exactly medium", 0.80, ConfidenceMedium},
		{"just below medium", 0.7999, ConfidenceLow},
		{"zero", 0.0, ConfidenceLow},
		{"negative", -0.2, ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, thresholds.Tier(tt.score))
		})
	}
}

// TestConfidenceThresholds_Custom tests non-default cutoffs
func TestConfidenceThresholds_Custom(t *testing.T) {
	thresholds := ConfidenceThresholds{High: 0.9, Medium: 0.5}

	assert.Equal(t, ConfidenceHigh, thresholds.Tier(0.9))
	assert.Equal(t, ConfidenceMedium, thresholds.Tier(0.6))
	assert.Equal(t, ConfidenceLow, thresholds.Tier(0.49))
}

// TestExtraction_Empty tests empty content detection
func TestExtraction_Empty(t *testing.T) {
	var nilExtraction *Extraction
	assert.True(t, nilExtraction.Empty())

	assert.True(t, (&Extraction{}).Empty())
	assert.False(t, (&Extraction{Text: "some text"}).Empty())
	assert.False(t, (&Extraction{Records: []Record{{Index: 0}}}).Empty())
}
