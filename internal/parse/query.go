package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var spaceRe = regexp.MustCompile(`\s+`)

// LikeEscape is the escape character used by SearchTerm patterns; queries must
// declare it with ESCAPE '!'.
const LikeEscape = "!"

// SearchTerm collapses whitespace and escapes LIKE wildcards so the term
// matches literally. The returned pattern is wrapped in % for substring search.
func SearchTerm(raw string) (string, bool) {
	s := strings.TrimSpace(spaceRe.ReplaceAllString(raw, " "))
	if s == "" {
		return "", false
	}
	r := strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)
	return "%" + r.Replace(s) + "%", true
}

// Sort describes a validated ORDER BY.
type Sort struct {
	Field string
	Desc  bool
}

// String renders the sort for GORM's Order.
func (s Sort) String() string {
	if s.Desc {
		return s.Field + " DESC"
	}
	return s.Field + " ASC"
}

// SortParam validates field against allowed and falls back to def.
// Any order other than "asc" sorts descending.
func SortParam(field, order, def string, allowed ...string) Sort {
	chosen := def
	for _, a := range allowed {
		if field == a {
			chosen = a
			break
		}
	}
	return Sort{Field: chosen, Desc: !strings.EqualFold(strings.TrimSpace(order), "asc")}
}

// PositiveInt parses raw as an int clamped to [1, max]. Empty or invalid input yields def.
func PositiveInt(raw string, def, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
