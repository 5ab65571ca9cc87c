package model

import (
	"sort"
	"strconv"
	"strings"
)

// Extension suffixes the builder reads after the x-formgen- prefix.
const (
	ExtensionWidget         = "widget"
	ExtensionClears         = "clears"
	ExtensionRequiredUnless = "required-unless"
	ExtensionMinDate        = "min-date"
)

var extensionKeys = map[string]struct{}{
	ExtensionWidget:         {},
	ExtensionClears:         {},
	ExtensionRequiredUnless: {},
	ExtensionMinDate:        {},
}

// ExtensionKeys returns the recognised extension suffixes in sorted order.
func ExtensionKeys() []string {
	keys := make([]string, 0, len(extensionKeys))
	for key := range extensionKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsKnownExtension reports whether key (without prefix) is understood.
func IsKnownExtension(key string) bool {
	_, ok := extensionKeys[key]
	return ok
}

// CheckExtensionValue reports why value is unusable for key, or "" when it is
// fine.
func CheckExtensionValue(key string, value any) string {
	switch key {
	case ExtensionClears:
		if _, ok := stringList(value); !ok {
			return "must list at least one field name"
		}
	case ExtensionMinDate:
		if _, err := strconv.Atoi(strings.TrimSpace(toString(value))); err != nil {
			return "must be a whole number of days"
		}
	default:
		if _, ok := toStringValue(value); !ok {
			return "must be a non-empty string, number, or boolean"
		}
	}
	return ""
}
