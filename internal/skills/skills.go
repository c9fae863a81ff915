// Package skills derives a normalized skill set from résumé text using a fixed vocabulary.
package skills

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Set is a sorted list of vocabulary terms without duplicates.
type Set []string

// Contains reports whether term is in the set, ignoring case.
func (s Set) Contains(term string) bool {
	for _, skill := range s {
		if strings.EqualFold(skill, term) {
			return true
		}
	}
	return false
}

func (s Set) Len() int { return len(s) }

func (s Set) String() string { return strings.Join(s, ", ") }

// Vocabulary is the reference list of known skill terms.
type Vocabulary struct {
	terms    []string
	exact    map[string]string
	patterns []*regexp.Regexp
}

func NewVocabulary(terms []string) *Vocabulary {
	v := &Vocabulary{exact: make(map[string]string, len(terms))}
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if _, dup := v.exact[term]; dup {
			continue
		}
		v.terms = append(v.terms, term)
		v.exact[term] = term
		v.patterns = append(v.patterns, wholeTermPattern(term))
	}
	return v
}

// wholeTermPattern matches term case-insensitively as a whole word. A term
// edge that is not a word character (the "++" of "C++") is delimited by a
// non-word character or the text boundary, since \b never holds there.
func wholeTermPattern(term string) *regexp.Regexp {
	left, right := `\b`, `\b`
	if !isWordByte(term[0]) {
		left = `(?:^|\W)`
	}
	if !isWordByte(term[len(term)-1]) {
		right = `(?:\W|$)`
	}
	return regexp.MustCompile(`(?i)` + left + regexp.QuoteMeta(term) + right)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func (v *Vocabulary) Terms() []string {
	return append([]string(nil), v.terms...)
}

// Find returns every vocabulary term found as a whole word in text, ignoring case,
// in vocabulary order.
func (v *Vocabulary) Find(text string) []string {
	var found []string
	for idx, pattern := range v.patterns {
		if pattern.MatchString(text) {
			found = append(found, v.terms[idx])
		}
	}
	return found
}

type Extractor struct {
	vocabulary *Vocabulary
}

func NewExtractor(vocabulary *Vocabulary) *Extractor {
	return &Extractor{vocabulary: vocabulary}
}

// Extract returns the vocabulary terms present in text. Chunks that equal a term
// exactly are kept, and every term is also searched case-insensitively as a
// whole word. Empty text yields an empty set.
func (e *Extractor) Extract(text string) Set {
	if strings.TrimSpace(text) == "" {
		return Set{}
	}

	found := make(map[string]struct{})
	for _, chunk := range Chunks(text) {
		if term, ok := e.vocabulary.exact[chunk]; ok {
			found[term] = struct{}{}
		}
	}
	for _, term := range e.vocabulary.Find(text) {
		found[term] = struct{}{}
	}

	set := make(Set, 0, len(found))
	for term := range found {
		set = append(set, term)
	}
	sort.Strings(set)

	return set
}

// functionWords end a phrase chunk.
var functionWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "with": true,
	"in": true, "of": true, "for": true, "to": true, "on": true, "at": true,
	"by": true, "from": true, "as": true, "using": true, "including": true,
	"is": true, "are": true, "was": true, "were": true, "i": true, "my": true,
	"our": true, "we": true, "led": true, "managed": true, "via": true,
}

// Chunks segments text into candidate phrases. Chunks break at punctuation
// other than the symbols used inside skill names (+ # . / -), at line breaks
// and at function words.
func Chunks(text string) []string {
	var (
		chunks []string
		words  []string
	)

	flush := func() {
		if len(words) > 0 {
			chunks = append(chunks, strings.Join(words, " "))
			words = words[:0]
		}
	}

	for _, segment := range strings.FieldsFunc(text, isChunkBreak) {
		for _, word := range strings.Fields(segment) {
			word = strings.Trim(word, ".-/")
			if word == "" {
				continue
			}
			if functionWords[strings.ToLower(word)] {
				flush()
				continue
			}
			words = append(words, word)
		}
		flush()
	}

	return chunks
}

func isChunkBreak(r rune) bool {
	switch r {
	case '+', '#', '.', '/', '-', '&', ' ', '\t':
		return false
	case '\n', '\r':
		return true
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
