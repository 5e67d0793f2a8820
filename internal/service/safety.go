package service

import (
	"regexp"
	"strconv"
	"strings"

	"addrcore/internal/utils"
)

// noDetailPhrases state explicitly that there is no detail address.
// Acceptable for general buildings, not for apartments.
var noDetailPhrases = []string{"상세주소없음", "상세주소 없음", "주소없음", "없음", "해당없음"}

var forbiddenWords = []string{
	"모름", "모르겠", "미정", "미상", "알수없음", "테스트", "test",
	"unknown", "null", "none", "n/a", "asdf", "qwer", "ㅇㅇ", "ㅁㅁ",
}

var placeholderTokenRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^x+$`),
	regexp.MustCompile(`^0{2,}$`),
	regexp.MustCompile(`^1{5,}$`),
	regexp.MustCompile(`^-{2,}$`),
	regexp.MustCompile(`^\.{2,}$`),
}

// invalidDetailChars never appear in a legitimate detail address.
const invalidDetailChars = "<>{}[]|\\^~`$@!?*=;\"'"

var mobilePhoneRe = regexp.MustCompile(`01[016789][-\s]?\d{3,4}[-\s]?\d{4}`)

var memoKeywords = []string{
	"부재시", "문앞", "경비실", "관리실", "택배함", "무인택배", "보관함",
	"연락주세요", "전화주세요", "전화요망", "배송전", "초인종", "노크",
}

var (
	unitNumberRe  = regexp.MustCompile(`(\d+)\s*호`)
	blockNumberRe = regexp.MustCompile(`(\d+)\s*동`)
)

const maxPlausibleNumber = 9999

// HasForbiddenWord reports placeholder or refusal text in a detail address.
func HasForbiddenWord(detail string, isApartment bool) bool {
	compact := utils.Compact(detail)
	if compact == "" {
		return false
	}

	for _, phrase := range noDetailPhrases {
		if compact == utils.Compact(phrase) {
			return isApartment
		}
	}

	if utils.ContainsAnyCompact(detail, forbiddenWords) {
		return true
	}

	for _, tok := range strings.Fields(detail) {
		for _, re := range placeholderTokenRes {
			if re.MatchString(tok) {
				return true
			}
		}
	}
	return false
}

// HasInvalidCharacters reports disallowed symbols or C0 control characters.
func HasInvalidCharacters(detail string) bool {
	for _, r := range detail {
		if r < 0x20 || r == 0x7f {
			return true
		}
		if strings.ContainsRune(invalidDetailChars, r) {
			return true
		}
	}
	return false
}

// HasMixedMemo reports a phone number or delivery instruction mixed into the detail.
func HasMixedMemo(detail string) bool {
	if mobilePhoneRe.MatchString(detail) {
		return true
	}
	return utils.ContainsAnyCompact(detail, memoKeywords)
}

// HasUnrealisticValue reports a block or unit number of zero or above 9999.
func HasUnrealisticValue(detail string) bool {
	for _, re := range []*regexp.Regexp{unitNumberRe, blockNumberRe} {
		for _, m := range re.FindAllStringSubmatch(detail, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n == 0 || n > maxPlausibleNumber {
				return true
			}
		}
	}
	return false
}
