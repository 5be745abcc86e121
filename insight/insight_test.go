package insight

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_AllRisks(t *testing.T) {
	r := Score("150/90", "150", 4)

	assert.Equal(t, 50, r.Score)
	assert.Equal(t, []string{RiskHighBloodPressure, RiskHighBloodSugar, RiskLongTermMedication}, r.Risks)
	assert.Equal(t, []string{SuggestLifestyle, SuggestSalt, SuggestSugar}, r.Suggestions)
}

func TestScore_Healthy(t *testing.T) {
	r := Score("120/80", "90", 0)

	assert.Equal(t, 100, r.Score)
	assert.Equal(t, []string{RiskNone}, r.Risks)
	assert.Equal(t, []string{SuggestContinue}, r.Suggestions)
}

func TestScore_Partial(t *testing.T) {
	tests := []struct {
		name        string
		bp, sugar   string
		count       int64
		score       int
		risks       []string
		suggestions []string
	}{
		{
			name: "blood pressure only", bp: "140/90", sugar: "", count: 0,
			score: 80, risks: []string{RiskHighBloodPressure}, suggestions: []string{SuggestSalt},
		},
		{
			name: "sugar at threshold is fine", bp: "", sugar: "140", count: 3,
			score: 100, risks: []string{RiskNone}, suggestions: []string{SuggestContinue},
		},
		{
			name: "long-term medication only", bp: "118/76", sugar: "abc", count: 5,
			score: 90, risks: []string{RiskLongTermMedication}, suggestions: []string{SuggestContinue},
		},
		{
			name: "sugar with units", bp: "", sugar: "180 mg/dL", count: 0,
			score: 80, risks: []string{RiskHighBloodSugar}, suggestions: []string{SuggestSugar},
		},
		{
			name: "bp and medication", bp: "150/100", sugar: "100", count: 4,
			score: 70, risks: []string{RiskHighBloodPressure, RiskLongTermMedication},
			suggestions: []string{SuggestLifestyle, SuggestSalt},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Score(tt.bp, tt.sugar, tt.count)
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.risks, r.Risks)
			assert.Equal(t, tt.suggestions, r.Suggestions)
		})
	}
}

func TestParseLeadingInt(t *testing.T) {
	assert.Equal(t, 150, ParseLeadingInt("150"))
	assert.Equal(t, 95, ParseLeadingInt("  95.5"))
	assert.Equal(t, -3, ParseLeadingInt("-3"))
	assert.Equal(t, 0, ParseLeadingInt(""))
	assert.Equal(t, 0, ParseLeadingInt("high"))
	assert.Equal(t, 0, ParseLeadingInt("-"))
	assert.Equal(t, math.MaxInt, ParseLeadingInt("99999999999999999999"))
	assert.Equal(t, math.MinInt, ParseLeadingInt("-99999999999999999999 mg/dL"))
}

func TestScore_OverlongSugarReadingIsHigh(t *testing.T) {
	r := Score("", "99999999999999999999", 0)

	assert.Equal(t, 80, r.Score)
	assert.Equal(t, []string{RiskHighBloodSugar}, r.Risks)
	assert.Equal(t, []string{SuggestSugar}, r.Suggestions)
}
