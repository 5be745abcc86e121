// Package insight scores a patient's vitals and prescription history into
// a fixed set of risk labels and suggestions.
package insight

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

const (
	RiskHighBloodPressure  = "High Blood Pressure"
	RiskHighBloodSugar     = "High Blood Sugar"
	RiskLongTermMedication = "Long-term medication dependency"
	RiskNone               = "No major risks detected"

	SuggestLifestyle = "Lifestyle improvement recommended"
	SuggestSalt      = "Reduce salt intake"
	SuggestSugar     = "Avoid sugar and carbs"
	SuggestContinue  = "Keep following current treatment"

	baseScore          = 100
	sugarThreshold     = 140
	prescriptionLimit  = 3
	lifestyleThreshold = 80
)

// Report is the scored outcome rendered on the insights page.
type Report struct {
	Score       int
	Risks       []string
	Suggestions []string
}

// Score computes the report for the given blood pressure text, sugar text
// and number of prescriptions on file.
func Score(bp, sugar string, prescriptions int64) Report {
	score := baseScore
	var risks []string

	highBP := strings.Contains(bp, "140") || strings.Contains(bp, "150")
	if highBP {
		risks = append(risks, RiskHighBloodPressure)
		score -= 20
	}
	highSugar := ParseLeadingInt(sugar) > sugarThreshold
	if highSugar {
		risks = append(risks, RiskHighBloodSugar)
		score -= 20
	}
	if prescriptions > prescriptionLimit {
		risks = append(risks, RiskLongTermMedication)
		score -= 10
	}
	if len(risks) == 0 {
		risks = []string{RiskNone}
	}

	var suggestions []string
	if score < lifestyleThreshold {
		suggestions = append(suggestions, SuggestLifestyle)
	}
	if highBP {
		suggestions = append(suggestions, SuggestSalt)
	}
	if highSugar {
		suggestions = append(suggestions, SuggestSugar)
	}
	if len(suggestions) == 0 {
		suggestions = []string{SuggestContinue}
	}

	return Report{Score: score, Risks: risks, Suggestions: suggestions}
}

// ParseLeadingInt reads an optionally signed run of digits after leading
// whitespace, so "150 mg/dL" is 150. Anything unparsable is 0.
func ParseLeadingInt(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		// Atoi reports the saturated value on overflow.
		return n
	}
	if err != nil {
		return 0
	}
	return n
}
