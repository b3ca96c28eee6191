package types

import (
	"strconv"
	"strings"
)

// BlockedPrefix marks assistant content that the gateway substituted for a
// refused turn. The full form is "BLOCKED:<risk code>:<score>".
const BlockedPrefix = "BLOCKED:"

// Verdict is the decoded form of a blocked turn.
type Verdict struct {
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
}

// ParseVerdict decodes content produced by the gateway for a blocked turn.
// ok is false for ordinary assistant content.
func ParseVerdict(content string) (v Verdict, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(content), BlockedPrefix)
	if !found {
		return Verdict{}, false
	}
	code, rawScore, found := strings.Cut(rest, ":")
	if !found || code == "" {
		return Verdict{}, false
	}
	score, err := strconv.ParseFloat(rawScore, 64)
	if err != nil {
		return Verdict{}, false
	}
	return Verdict{Category: code, Name: RiskName(code), Score: score}, true
}
