package matcher

import (
	"context"
	"strings"

	"github.com/khrees2412/jobmatch/pkg/models"
	"go.uber.org/zap"
)

// SimilarityThreshold is the lowest table score treated as "similar"
const SimilarityThreshold = 0.7

// Similarity looks up precomputed skill and industry similarities
type Similarity struct {
	reader SimilarityReader
	logger *zap.Logger
}

// NewSimilarity wraps a similarity table reader. A nil reader never finds anything.
func NewSimilarity(reader SimilarityReader, logger *zap.Logger) *Similarity {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Similarity{reader: reader, logger: logger}
}

// FindSimilar returns the first name from known that the table pairs with name.
// known is keyed by lower-cased name. Lookup errors count as "no match".
func (s *Similarity) FindSimilar(ctx context.Context, kind models.SimilarityKind, name string, known map[string]models.Proficiency) (string, bool) {
	if s == nil || s.reader == nil || len(known) == 0 {
		return "", false
	}

	names, err := s.reader.SimilarNames(ctx, kind, name, SimilarityThreshold)
	if err != nil {
		s.logger.Warn("similarity lookup failed",
			zap.String("kind", string(kind)),
			zap.String("name", name),
			zap.Error(err),
		)
		return "", false
	}

	for _, candidate := range names {
		if _, ok := known[strings.ToLower(candidate)]; ok {
			return candidate, true
		}
	}
	return "", false
}
