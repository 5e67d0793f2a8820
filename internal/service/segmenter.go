package service

import (
	"regexp"
	"strings"
)

var (
	trailingBuildingNoRe = regexp.MustCompile(`(\d+(?:-\d+)?)$`)
	bareNumberRe         = regexp.MustCompile(`^\d+(?:-\d+)?$`)
	fusedRoadNumberRe    = regexp.MustCompile(`^(.*?[^\d-])\d+(?:-\d+)?$`)
)

// ExtractDetail returns the part of rawTokens not covered by the canonical
// address, or "" when nothing follows the matched address.
func ExtractDetail(rawTokens []string, canonical string) string {
	canonicalTokens := strings.Fields(canonical)
	if len(rawTokens) == 0 || len(canonicalTokens) == 0 {
		return ""
	}

	heuristics := []func([]string, []string) int{
		matchBuildingNumber,
		matchRoadName,
		matchLastToken,
	}
	for _, h := range heuristics {
		idx := h(rawTokens, canonicalTokens)
		if idx < 0 {
			continue
		}
		if idx >= len(rawTokens)-1 {
			return ""
		}
		return strings.Join(rawTokens[idx+1:], " ")
	}
	return ""
}

// matchBuildingNumber finds the raw token carrying the canonical building number.
func matchBuildingNumber(rawTokens, canonicalTokens []string) int {
	m := trailingBuildingNoRe.FindStringSubmatch(strings.Join(canonicalTokens, " "))
	if m == nil {
		return -1
	}
	number := m[1]
	for i, tok := range rawTokens {
		if tok == number || strings.Contains(tok, number) {
			return i
		}
	}
	return -1
}

// matchRoadName finds the raw token for the road name ("테헤란로" or a fused
// "테헤란로123") and steps over a bare building number following it.
func matchRoadName(rawTokens, canonicalTokens []string) int {
	road := roadNameToken(canonicalTokens)
	if road == "" {
		return -1
	}
	idx := indexMutualContains(rawTokens, road)
	if idx < 0 {
		return -1
	}
	if idx+1 < len(rawTokens) && bareNumberRe.MatchString(rawTokens[idx+1]) {
		idx++
	}
	return idx
}

// matchLastToken is the naive fallback on the canonical address's last token.
func matchLastToken(rawTokens, canonicalTokens []string) int {
	return indexMutualContains(rawTokens, canonicalTokens[len(canonicalTokens)-1])
}

func roadNameToken(canonicalTokens []string) string {
	last := len(canonicalTokens) - 1
	tok := canonicalTokens[last]
	if bareNumberRe.MatchString(tok) {
		if last == 0 {
			return ""
		}
		return canonicalTokens[last-1]
	}
	if m := fusedRoadNumberRe.FindStringSubmatch(tok); m != nil {
		return m[1]
	}
	return tok
}

func indexMutualContains(tokens []string, target string) int {
	for i, tok := range tokens {
		if strings.Contains(tok, target) || strings.Contains(target, tok) {
			return i
		}
	}
	return -1
}
