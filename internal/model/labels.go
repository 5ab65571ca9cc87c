package model

import (
	"strings"
	"unicode"
)

// acronyms keep their conventional casing in generated labels.
var acronyms = map[string]string{
	"ai":   "AI",
	"co2":  "CO2",
	"html": "HTML",
	"id":   "ID",
	"kwh":  "kWh",
	"url":  "URL",
}

// DefaultLabeler turns a field or route name into a label: "issueType" reads
// "Issue Type", "time_slot" reads "Time Slot" and "requestId" reads
// "Request ID".
func DefaultLabeler(name string) string {
	words := splitWords(name)
	for i, word := range words {
		lower := strings.ToLower(word)
		if acronym, ok := acronyms[lower]; ok {
			words[i] = acronym
			continue
		}
		runes := []rune(lower)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// splitWords breaks on separators and on lower-to-upper, digit-to-upper and
// acronym-to-word boundaries ("HTMLBody" gives "HTML", "Body").
func splitWords(name string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}
