package scoring

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// Entry is one non-zero weight of a sparse vector.
type Entry struct {
	Index  int
	Weight float64
}

// Vector is a sparse vector ordered by Index.
type Vector []Entry

// Matrix is a fitted TF-IDF space: one row per input document.
type Matrix struct {
	Features []string
	Rows     []Vector
}

// Vectorizer builds TF-IDF vectors with English stop words removed and the
// vocabulary limited to the MaxFeatures most frequent terms of the corpus.
type Vectorizer struct {
	MaxFeatures int
}

// FitTransform fits the vocabulary on docs and returns their vectors. Term
// weights are raw counts times the smoothed idf ln((1+n)/(1+df))+1 and every
// row is L2-normalised.
func (v Vectorizer) FitTransform(docs []string) *Matrix {
	counts := make([]map[string]int, len(docs))
	totals := make(map[string]int)
	for i, doc := range docs {
		counts[i] = make(map[string]int)
		for _, token := range Tokenize(doc) {
			counts[i][token]++
			totals[token]++
		}
	}

	features := selectFeatures(totals, v.MaxFeatures)
	index := make(map[string]int, len(features))
	for i, term := range features {
		index[term] = i
	}

	df := make([]int, len(features))
	for _, doc := range counts {
		for term := range doc {
			if idx, ok := index[term]; ok {
				df[idx]++
			}
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(features))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1
	}

	rows := make([]Vector, len(docs))
	for i, doc := range counts {
		row := make(Vector, 0, len(doc))
		for term, count := range doc {
			if idx, ok := index[term]; ok {
				row = append(row, Entry{Index: idx, Weight: float64(count) * idf[idx]})
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a].Index < row[b].Index })
		rows[i] = row.normalized()
	}

	return &Matrix{Features: features, Rows: rows}
}

// selectFeatures keeps the limit most frequent terms (ties broken
// alphabetically) and returns them in alphabetical order.
func selectFeatures(totals map[string]int, limit int) []string {
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(a, b int) bool {
		if totals[terms[a]] != totals[terms[b]] {
			return totals[terms[a]] > totals[terms[b]]
		}
		return terms[a] < terms[b]
	})
	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	sort.Strings(terms)
	return terms
}

func (v Vector) norm() float64 {
	var sum float64
	for _, e := range v {
		sum += e.Weight * e.Weight
	}
	return math.Sqrt(sum)
}

func (v Vector) normalized() Vector {
	norm := v.norm()
	if norm == 0 {
		return v
	}
	out := make(Vector, len(v))
	for i, e := range v {
		out[i] = Entry{Index: e.Index, Weight: e.Weight / norm}
	}
	return out
}

// Cosine returns the cosine similarity of a and b; 0 when either is a zero vector.
func Cosine(a, b Vector) float64 {
	na, nb := a.norm(), b.norm()
	if na == 0 || nb == 0 {
		return 0
	}

	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}

	return dot / (na * nb)
}

// Tokenize lower-cases text and returns its words of two or more letters or
// digits, without English stop words.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})

	tokens := words[:0]
	for _, word := range words {
		if len([]rune(word)) < 2 || stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
