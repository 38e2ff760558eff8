package skills

import "math"

// Vector is a binary presence vector over a Vocabulary: 1 marks a present token, 0 an absent one.
type Vector []float64

// Vocabulary is the ordered set of distinct tokens shared by every vector of one scoring run.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// BuildVocabulary returns the union of the user's tokens and every job's tokens.
// User tokens come first, then each job's tokens in input order; duplicates keep their first position.
func BuildVocabulary(user []string, jobs [][]string) *Vocabulary {
	v := &Vocabulary{index: make(map[string]int, len(user))}

	v.add(user)
	for _, job := range jobs {
		v.add(job)
	}

	return v
}

func (v *Vocabulary) add(tokens []string) {
	for _, token := range tokens {
		if _, ok := v.index[token]; ok {
			continue
		}
		v.index[token] = len(v.tokens)
		v.tokens = append(v.tokens, token)
	}
}

// Len returns the number of dimensions.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns a copy of the vocabulary in index order.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

// Index returns the position of token and whether it is part of the vocabulary.
func (v *Vocabulary) Index(token string) (int, bool) {
	idx, ok := v.index[token]
	return idx, ok
}

// Vectorize projects tokens onto the vocabulary. Tokens the vocabulary does not know are ignored.
func (v *Vocabulary) Vectorize(tokens []string) Vector {
	vec := make(Vector, len(v.tokens))
	for _, token := range tokens {
		if idx, ok := v.index[token]; ok {
			vec[idx] = 1
		}
	}

	return vec
}

// Cosine returns the cosine similarity of a and b.
// It is 0 when either vector has zero norm or the lengths differ.
func Cosine(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
