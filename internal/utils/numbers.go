package contextutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Numeric token grammar: optional currency prefix, optional sign, digits with
// optional thousands separators, optional single decimal point and fractional
// digits, optional unit suffix. Isolated here so the validation engine never
// does ad-hoc string surgery.

var (
	numericTokenRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	// choiceRe splits a rendered answer choice into prefix (currency symbol
	// and/or sign), magnitude, separator, and suffix (unit text).
	choiceRe = regexp.MustCompile(`^\s*([$€£¥]?\s*-?)(\d[\d,]*(?:\.\d+)?)(\s*)(.*?)\s*$`)
)

// ChoiceParts is the decomposition of a rendered answer choice.
type ChoiceParts struct {
	Prefix    string
	Magnitude float64
	// Decimals is the number of fractional digits the magnitude was rendered with.
	Decimals int
	// Separator is the whitespace that sat between the magnitude and the unit.
	Separator string
	Suffix    string
}

// ParseNumericToken extracts the first numeric token from a string, ignoring
// currency symbols and thousands separators. Returns false when the string
// contains no digits.
func ParseNumericToken(s string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", "¥", "", ",", "").Replace(s)
	token := numericTokenRe.FindString(cleaned)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseChoice decomposes a rendered answer choice into prefix, magnitude and
// suffix. Returns false when the choice does not lead with a numeric value
// (mixed textual choices such as "Gross National Happiness").
func ParseChoice(s string) (ChoiceParts, bool) {
	m := choiceRe.FindStringSubmatch(s)
	if m == nil {
		return ChoiceParts{}, false
	}

	raw := strings.ReplaceAll(m[2], ",", "")
	negative := strings.Contains(m[1], "-")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ChoiceParts{}, false
	}
	if negative {
		v = -v
	}

	decimals := 0
	if idx := strings.IndexByte(raw, '.'); idx >= 0 {
		decimals = len(raw) - idx - 1
	}

	prefix := strings.TrimRight(strings.TrimSuffix(m[1], "-"), " ")
	return ChoiceParts{
		Prefix:    prefix,
		Magnitude: v,
		Decimals:  decimals,
		Separator: m[3],
		Suffix:    m[4],
	}, true
}

// Render re-assembles a choice from its parts using the given number of
// fractional digits, preserving the original prefix, suffix and the spacing
// between magnitude and unit.
func (p ChoiceParts) Render(decimals int) string {
	magnitude := strconv.FormatFloat(p.Magnitude, 'f', decimals, 64)
	out := p.Prefix + magnitude
	if p.Suffix != "" {
		out += p.Separator + p.Suffix
	}
	return out
}

// FormatLikeToken renders v in the same decimal-vs-integer style as the
// original token: one fractional digit when the original carried any,
// otherwise a plain integer.
func FormatLikeToken(original string, v float64) string {
	if strings.Contains(original, ".") {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.0f", v)
}
