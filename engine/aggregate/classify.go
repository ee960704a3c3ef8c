package aggregate

import (
	"strings"
	"unicode"
)

// Bucket is the semantic split of a keyword's volume.
type Bucket int

const (
	BucketEntity Bucket = iota
	BucketMerch
)

func (b Bucket) String() string {
	if b == BucketMerch {
		return "merch"
	}
	return "entity"
}

// Classifier assigns each keyword to exactly one bucket.
type Classifier interface {
	Classify(keyword string) Bucket
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(keyword string) Bucket

func (f ClassifierFunc) Classify(keyword string) Bucket { return f(keyword) }

// TermClassifier marks a keyword as merch when any of its words is a merch
// indicator. Matching is on whole words so names like "Arteta" do not match
// "art".
type TermClassifier struct {
	indicators map[string]struct{}
}

// NewTermClassifier builds a classifier from indicator words.
func NewTermClassifier(indicators []string) *TermClassifier {
	c := &TermClassifier{indicators: make(map[string]struct{}, len(indicators))}
	for _, w := range indicators {
		c.indicators[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return c
}

func (c *TermClassifier) Classify(keyword string) Bucket {
	words := strings.FieldsFunc(strings.ToLower(keyword), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := c.indicators[w]; ok {
			return BucketMerch
		}
	}
	return BucketEntity
}
