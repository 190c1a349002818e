package chunking

import (
	"strings"
	"unicode"
)

// Common abbreviations that end with a period but do not end a sentence.
var abbreviations = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "rev": {},
	"st": {}, "jr": {}, "sr": {}, "vs": {}, "etc": {}, "inc": {},
	"ltd": {}, "co": {}, "corp": {}, "dept": {}, "est": {}, "fig": {},
	"gen": {}, "gov": {}, "no": {}, "vol": {}, "approx": {}, "e.g": {},
	"i.e": {}, "u.s": {}, "u.k": {},
}

// SplitSentences splits raw text into trimmed sentence strings.
// Consecutive whitespace and newlines collapse to single spaces first; empty
// input yields an empty sequence. Splitting is punctuation-aware: it does not
// break after common abbreviations, single-letter initials, or digits
// followed by more of the same number.
func SplitSentences(text string) []string {
	clean := normaliseWhitespace(text)
	if clean == "" {
		return nil
	}

	runes := []rune(clean)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}

		// Consume runs of terminators ("...", "?!") and trailing quotes.
		end := i
		for end+1 < len(runes) && (isTerminator(runes[end+1]) || isClosing(runes[end+1])) {
			end++
		}

		if !boundaryAt(runes, start, i, end) {
			i = end
			continue
		}

		sentence := strings.TrimSpace(string(runes[start : end+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end + 1
		i = end
	}

	// Trailing text without a terminator is still a sentence.
	if start < len(runes) {
		tail := strings.TrimSpace(string(runes[start:]))
		if tail != "" {
			sentences = append(sentences, tail)
		}
	}

	return sentences
}

// boundaryAt reports whether the terminator at position term (with trailing
// punctuation through end) closes a sentence starting at start.
func boundaryAt(runes []rune, start, term, end int) bool {
	// End of input always closes the sentence.
	if end+1 >= len(runes) {
		return true
	}

	// A sentence boundary needs following whitespace.
	if !unicode.IsSpace(runes[end+1]) {
		return false
	}

	if runes[term] == '.' {
		word := lastWord(runes, start, term)
		if _, ok := abbreviations[strings.ToLower(word)]; ok {
			return false
		}
		// Single-letter initials ("J. Smith").
		if len([]rune(word)) == 1 && unicode.IsUpper([]rune(word)[0]) {
			return false
		}
	}

	// Look at the first non-space rune after the terminator run; sentences
	// open with an uppercase letter, a digit, or an opening quote/bracket.
	for j := end + 1; j < len(runes); j++ {
		r := runes[j]
		if unicode.IsSpace(r) {
			continue
		}
		return unicode.IsUpper(r) || unicode.IsDigit(r) || isOpening(r)
	}
	return true
}

// lastWord returns the word immediately preceding position term.
func lastWord(runes []rune, start, term int) string {
	end := term
	begin := end
	for begin > start {
		r := runes[begin-1]
		if unicode.IsSpace(r) {
			break
		}
		begin--
	}
	word := string(runes[begin:end])
	return strings.Trim(word, "\"'([{")
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isClosing(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}

func isOpening(r rune) bool {
	return r == '"' || r == '\'' || r == '(' || r == '[' || r == '“' || r == '‘'
}

// normaliseWhitespace collapses all whitespace runs, newlines included, to
// single spaces and trims the result.
func normaliseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var prevSpace bool
	for _, r := range s {
		if unicode.IsSpace(r) {
			if prevSpace {
				continue
			}
			b.WriteRune(' ')
			prevSpace = true
			continue
		}
		b.WriteRune(r)
		prevSpace = false
	}

	return strings.TrimSpace(b.String())
}
