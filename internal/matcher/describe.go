package matcher

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Summary is the display form of a Result.
type Summary struct {
	Label      string `json:"label" yaml:"label"`
	Confidence string `json:"confidence" yaml:"confidence"`
	Detail     string `json:"detail" yaml:"detail"`
}

const maxDetailReasons = 3

// Describe renders a result as a short label, confidence and detail line.
func Describe(res Result) Summary {
	caser := cases.Title(language.English)
	status := caser.String(strings.ReplaceAll(string(res.Status), "_", " "))
	if res.Best == nil {
		return Summary{
			Label:      status,
			Confidence: caser.String(ConfidenceNone.String()),
			Detail:     "no catalog entry matched the folder evidence",
		}
	}

	label := fmt.Sprintf("%s: %s", status, res.Best.Name)
	reasons := res.Best.Reasons
	if len(reasons) > maxDetailReasons {
		reasons = reasons[:maxDetailReasons]
	}
	parts := make([]string, 0, len(reasons)+1)
	for _, r := range reasons {
		parts = append(parts, r.String())
	}
	if res.Status == StatusNeedsReview && len(res.TopK) > 1 {
		parts = append(parts, fmt.Sprintf("%d candidates to review", len(res.TopK)))
	}
	return Summary{
		Label:      label,
		Confidence: caser.String(res.Best.Confidence.String()),
		Detail:     fmt.Sprintf("score %.2f via %s; %s", res.Best.Score, res.Stage, strings.Join(parts, "; ")),
	}
}
