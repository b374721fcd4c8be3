package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// normalizeFunc canonicalizes a matched substring. ok=false means the value
// could not be canonicalized; callers keep the raw match and flag the field
// low-confidence. A normalizeFunc never panics and never returns an error.
type normalizeFunc func(string) (value string, ok bool)

func normalizerFor(n Normalizer) normalizeFunc {
	switch n {
	case NormalizerDate:
		return normalizeDate
	case NormalizerAmount:
		return normalizeAmount
	case NormalizerCollapseSpaces:
		return normalizeCollapseSpaces
	default:
		return func(s string) (string, bool) { return s, true }
	}
}

var (
	dateKanjiRe = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	dateSepRe   = regexp.MustCompile(`(\d{4})[/.\-](\d{1,2})[/.\-](\d{1,2})`)
)

// normalizeDate converts Japanese and separator-style dates to ISO-8601
// (e.g. 2024年12月20日 -> 2024-12-20).
func normalizeDate(s string) (string, bool) {
	t := toASCIIDigits(s)
	m := dateKanjiRe.FindStringSubmatch(t)
	if m == nil {
		m = dateSepRe.FindStringSubmatch(t)
	}
	if m == nil {
		return s, false
	}
	year, month, day := atoi(m[1]), atoi(m[2]), atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return s, false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// normalizeAmount strips currency marks and thousands separators, leaving a
// plain ASCII digit string (e.g. ¥100,000 -> 100000).
func normalizeAmount(s string) (string, bool) {
	t := toASCIIDigits(s)
	var b strings.Builder
	for _, r := range t {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',' || r == '，' || r == '¥' || r == '￥' || r == '円' || r == ' ' || r == '　' || r == '\t':
			// separator or currency mark, dropped
		default:
			return s, false
		}
	}
	if b.Len() == 0 {
		return s, false
	}
	return b.String(), true
}

func normalizeCollapseSpaces(s string) (string, bool) {
	return strings.Join(strings.Fields(s), " "), true
}

// toASCIIDigits maps fullwidth digits to their ASCII counterparts; OCR of
// Japanese forms frequently yields ０-９.
func toASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			return r - '０' + '0'
		}
		return r
	}, s)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
