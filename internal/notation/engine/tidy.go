package engine

import "strings"

var punctuation = strings.NewReplacer(
	" ,", ",",
	" .", ".",
	" ;", ";",
	" )", ")",
	"( ", "(",
)

// Tidy collapses whitespace runs, trims the ends and removes spaces before
// closing punctuation and after an opening parenthesis. Tidy(Tidy(s)) ==
// Tidy(s).
func Tidy(s string) string {
	return punctuation.Replace(strings.Join(strings.Fields(s), " "))
}
