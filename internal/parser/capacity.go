package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/maltedev/fridge-capacity-crawler/internal/models"
)

// Labels as they appear in the spec text, e.g. "총용량: 870L/냉장: 503L/냉동: 367L/".
const (
	LabelTotal   = "총용량"
	LabelFridge  = "냉장"
	LabelFreezer = "냉동"
)

var (
	totalPattern   = capacityPattern(LabelTotal)
	fridgePattern  = capacityPattern(LabelFridge)
	freezerPattern = capacityPattern(LabelFreezer)
)

// Spec text is normalized to ASCII spaces first, so \s covers NBSP and other
// Unicode spacing. Digits may come from any decimal script.
func capacityPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(label) + `\s*:?\s*([\p{Nd},]+)\s*L`)
}

// ExtractCapacities searches the spec text for each capacity label on its own.
// A label that does not occur leaves its field nil.
func ExtractCapacities(specText string) models.Capacities {
	specText = normalizeSpaces(specText)
	return models.Capacities{
		Total:   findLiters(totalPattern, specText),
		Fridge:  findLiters(fridgePattern, specText),
		Freezer: findLiters(freezerPattern, specText),
	}
}

func findLiters(pattern *regexp.Regexp, text string) *int {
	matches := pattern.FindStringSubmatch(text)
	if len(matches) < 2 {
		return nil
	}

	digits := asciiDigits(strings.ReplaceAll(matches[1], ",", ""))
	if digits == "" {
		return nil
	}

	value, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &value
}

func normalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}

// asciiDigits rewrites decimal digits of any script (e.g. full-width) to
// ASCII. Every Nd range in the Unicode tables is a run of whole 0-9 blocks.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if v, ok := digitValue(r); ok {
			return '0' + rune(v)
		}
		return r
	}, s)
}

func digitValue(r rune) (int, bool) {
	for _, rg := range unicode.Nd.R16 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) && rg.Stride == 1 {
			return int(r-rune(rg.Lo)) % 10, true
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if r >= rune(rg.Lo) && r <= rune(rg.Hi) && rg.Stride == 1 {
			return int(r-rune(rg.Lo)) % 10, true
		}
	}
	return 0, false
}
