package transcribe

import "strings"

// titleWordLimit caps how many transcript words make it into the title.
const titleWordLimit = 5

// DeriveTitle builds a short title from a transcript: the first five words,
// with an ellipsis when the transcript is longer. Whitespace runs collapse
// to single spaces.
func DeriveTitle(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "Nota sin título"
	}
	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + "..."
}
