package service

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	separatorRe  = regexp.MustCompile(`[·ㆍ,/.;:]`)
	hyphenRe     = regexp.MustCompile(`\s*-\s*`)
)

// formerNameMarkers open a "(구 역삼동)" style group. Longer forms first.
var formerNameMarkers = []string{"구", "舊", "formerly", "former", "old"}

// regionAbbreviations expands province and metropolitan-city short forms.
var regionAbbreviations = map[string]string{
	"서울": "서울특별시",
	"부산": "부산광역시",
	"대구": "대구광역시",
	"인천": "인천광역시",
	"광주": "광주광역시",
	"대전": "대전광역시",
	"울산": "울산광역시",
	"세종": "세종특별자치시",
	"경기": "경기도",
	"강원": "강원특별자치도",
	"충북": "충청북도",
	"충남": "충청남도",
	"전북": "전북특별자치도",
	"전남": "전라남도",
	"경북": "경상북도",
	"경남": "경상남도",
	"제주": "제주특별자치도",
}

// NormalizeAddress cleans raw address text. It is idempotent.
func NormalizeAddress(raw string) string {
	s := norm.NFC.String(raw)
	s = separatorRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")

	// Stripping can expose a new "(구 ..." opener, so run to a fixed point.
	for {
		stripped := stripFormerNames(s)
		if stripped == s {
			break
		}
		s = stripped
	}

	s = whitespaceRe.ReplaceAllString(s, " ")
	s = hyphenRe.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}

// stripFormerNames removes parenthesized former-name groups, nested
// parentheses included. A group that never closes is cut at the last ")"
// inside it, or kept when there is none.
func stripFormerNames(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '(' && startsFormerName(s[i+1:]) {
			if end := closingParen(s, i); end >= 0 {
				b.WriteByte(' ')
				i = end
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func startsFormerName(rest string) bool {
	rest = strings.TrimLeft(rest, " ")
	for _, m := range formerNameMarkers {
		if len(rest) < len(m) || !strings.EqualFold(rest[:len(m)], m) {
			continue
		}
		if after := rest[len(m):]; after == "" || after[0] == ' ' || after[0] == ')' {
			return true
		}
	}
	return false
}

func closingParen(s string, open int) int {
	depth, last := 0, -1
	for j := open; j < len(s); j++ {
		switch s[j] {
		case '(':
			depth++
		case ')':
			depth--
			last = j
			if depth == 0 {
				return j
			}
		}
	}
	return last
}

// ExpandRegionAbbreviation replaces the first token when it is a known
// region short form. Only the first token is ever checked.
func ExpandRegionAbbreviation(address string) string {
	tokens := strings.Split(address, " ")
	if len(tokens) == 0 {
		return address
	}
	full, ok := regionAbbreviations[tokens[0]]
	if !ok {
		return address
	}
	tokens[0] = full
	return strings.Join(tokens, " ")
}

// Tokenize splits a normalized address on spaces, dropping empty tokens.
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}
