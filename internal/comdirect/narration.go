package comdirect

import "strings"

// Labels embedded in the narration blob of cash rows. The bank packs
// counterparty and memo into one free-text field, marking sub-fields with
// "<label>:" words.
const (
	keyOriginator = "Auftraggeber"
	keyRecipient  = "Empfänger"
	keyText       = "Buchungstext"
)

var narrationKeys = map[string]bool{
	keyOriginator: true,
	keyRecipient:  true,
	keyText:       true,
}

// narrationState is the accumulator threaded through the word scan: the
// label currently being collected and the words gathered for it so far.
type narrationState struct {
	parsed       map[string]string
	currentKey   string
	currentWords []string
}

// parseNarration splits a narration blob into labeled sub-fields. Words are
// scanned left to right; a word of the form "<key>:" flushes the running
// accumulator and opens a new label. Words before the first label are
// discarded, since in observed statements that leading text is boilerplate
// already present in the activity column. A blob without any label yields an
// empty map; callers fall back to the raw blob.
func parseNarration(text string) map[string]string {
	state := narrationState{parsed: make(map[string]string)}
	for _, word := range strings.Split(text, " ") {
		state = state.consume(word)
	}
	return state.flush().parsed
}

func (s narrationState) consume(word string) narrationState {
	if stem, ok := strings.CutSuffix(word, ":"); ok && narrationKeys[stem] {
		next := s.flush()
		next.currentKey = stem
		next.currentWords = nil
		return next
	}
	s.currentWords = append(s.currentWords, word)
	return s
}

// flush closes the running accumulator under its label. Accumulated words
// without an active label are dropped.
func (s narrationState) flush() narrationState {
	if s.currentKey == "" {
		return s
	}
	s.parsed[s.currentKey] = strings.Join(s.currentWords, " ")
	s.currentKey = ""
	s.currentWords = nil
	return s
}
