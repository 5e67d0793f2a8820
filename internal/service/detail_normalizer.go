package service

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Detail markers: 동 = block, 호 = unit, 층 = floor, 지하 = basement.
var (
	pureHyphenPairRe   = regexp.MustCompile(`^(\d+)-(\d+)$`)
	hyphenPairRe       = regexp.MustCompile(`(\d+)-(\d+)`)
	numericBlockUnitRe = regexp.MustCompile(`(\d{1,4})동\s*(\d{1,5})`)
	letterBlockUnitRe  = regexp.MustCompile(`([A-Za-z가-힣]{1,2})동\s*(\d{1,5})`)
	basementFloorRe    = regexp.MustCompile(`(?i)B\d+층`)
	basementShortRe    = regexp.MustCompile(`(?i)\bB(\d{1,3})(?:\s*F\b)?`)
	basementWordRe     = regexp.MustCompile(`지하\s*(\d+)`)
	floorShortRe       = regexp.MustCompile(`(\d+)\s*[Ff]\b`)
)

// NormalizeDetail restructures a raw sub-unit string into "N동 M호" /
// "지하 N층" / "N층" form. The rewrite order is fixed: each step skips
// input already in its canonical shape, so a second pass is a no-op.
func NormalizeDetail(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return ""
	}

	// 1. "3-402" -> "3동 402호"
	if pureHyphenPairRe.MatchString(s) {
		s = pureHyphenPairRe.ReplaceAllString(s, "${1}동 ${2}호")
	}

	// 2. embedded "3-402" when no block marker exists anywhere
	if !strings.Contains(s, "동") {
		s = rewriteUnlessFollowed(s, hyphenPairRe, "호동", func(g []string) string {
			return g[1] + "동 " + g[2] + "호"
		})
	}

	// 3. "101동 505" -> "101동 505호"
	s = rewriteUnlessFollowed(s, numericBlockUnitRe, "호층동", func(g []string) string {
		return g[1] + "동 " + g[2] + "호"
	})

	// 4. "A동 101" -> "A동 101호"
	s = rewriteUnlessFollowed(s, letterBlockUnitRe, "호층동", func(g []string) string {
		return g[1] + "동 " + g[2] + "호"
	})

	// 5. "B1" -> "지하 1층"; "B1동" is a block name
	if !basementFloorRe.MatchString(s) {
		s = rewriteUnlessFollowed(s, basementShortRe, "호층동", func(g []string) string {
			return "지하 " + g[1] + "층"
		})
	}

	// 6. "지하 2" -> "지하 2층"
	s = rewriteUnlessFollowed(s, basementWordRe, "층호", func(g []string) string {
		return "지하 " + g[1] + "층"
	})

	// 7. "3F" -> "3층"
	if !strings.Contains(s, "층") {
		s = floorShortRe.ReplaceAllString(s, "${1}층")
	}

	return strings.Join(strings.Fields(s), " ")
}

// rewriteUnlessFollowed replaces every match of re whose remainder does not
// start (after optional spaces) with one of the markers in skip, nor directly
// with a digit.
func rewriteUnlessFollowed(s string, re *regexp.Regexp, skip string, build func(groups []string) string) string {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	if locs == nil {
		return s
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		if followedBy(s[end:], skip) {
			continue
		}
		groups := make([]string, len(loc)/2)
		for i := range groups {
			if loc[2*i] >= 0 {
				groups[i] = s[loc[2*i]:loc[2*i+1]]
			}
		}
		b.WriteString(s[last:start])
		b.WriteString(build(groups))
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}

func followedBy(rest, markers string) bool {
	if r, _ := utf8.DecodeRuneInString(rest); unicode.IsDigit(r) {
		return true
	}
	rest = strings.TrimLeft(rest, " ")
	if rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return strings.ContainsRune(markers, r)
}
