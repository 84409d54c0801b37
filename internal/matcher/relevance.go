package matcher

import "strings"

// IsRelevant decides whether a past role counts toward experience for a target title.
// It is a token-overlap heuristic and will misclassify roles that share no literal words
// with the target (and, less often, unrelated roles that share a generic word).
//
// A role is relevant when its title shares at least one word with the target, when its
// technologies share at least two words with the target, or when both its industry and
// its title share a word with the target.
func IsRelevant(title, target, technologies, industry string) bool {
	targetWords := wordSet(target)
	if len(targetWords) == 0 {
		return false
	}

	titleMatches := overlap(wordSet(title), targetWords)
	techMatches := overlap(wordSet(technologies), targetWords)
	industryMatches := overlap(wordSet(industry), targetWords)

	return titleMatches >= 1 ||
		techMatches >= 2 ||
		(industryMatches >= 1 && titleMatches >= 1)
}

func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
