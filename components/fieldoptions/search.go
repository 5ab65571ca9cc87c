package fieldoptions

import (
	"sort"
	"strings"
)

// Search filters choices by a case-insensitive substring of the label or
// value. Label prefix matches come first; otherwise declared order is kept.
func Search(choices []Choice, query string, limit int, opts Options) []Choice {
	limit = clampLimit(limit, opts)
	if limit == 0 {
		return nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode != EmptySearchAll {
			return nil
		}
		if len(choices) <= limit {
			return append([]Choice{}, choices...)
		}
		return append([]Choice{}, choices[:limit]...)
	}

	q := strings.ToLower(query)
	matches := make([]matchedChoice, 0, len(choices))
	for _, choice := range choices {
		label := strings.ToLower(choice.Label)
		if !strings.Contains(label, q) && !strings.Contains(strings.ToLower(choice.Value), q) {
			continue
		}
		matches = append(matches, matchedChoice{
			choice:   choice,
			isPrefix: strings.HasPrefix(label, q),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Choice, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.choice)
	}
	return out
}

type matchedChoice struct {
	choice   Choice
	isPrefix bool
}
