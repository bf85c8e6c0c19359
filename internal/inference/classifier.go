// AngelaMos | 2026
// classifier.go

package inference

import (
	"context"
	"image"
)

type Result struct {
	Index      int
	Label      string
	Confidence float32
}

// Classifier maps one leaf photo to one of the Labels. Implementations must
// be deterministic for a fixed model and safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) (Result, error)
}

// ResultFromScores picks the arg-max class. Low confidence is reported,
// never rejected.
func ResultFromScores(scores []float32) (Result, bool) {
	idx, confidence := ArgMax(scores)
	label, ok := Label(idx)
	if !ok {
		return Result{}, false
	}

	return Result{
		Index:      idx,
		Label:      label,
		Confidence: confidence,
	}, true
}

// ArgMax returns the index and value of the largest score, preferring the
// lowest index on ties. It returns -1 for an empty slice.
func ArgMax(scores []float32) (int, float32) {
	if len(scores) == 0 {
		return -1, 0
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	return best, scores[best]
}
