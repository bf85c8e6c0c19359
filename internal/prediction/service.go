// AngelaMos | 2026
// service.go

package prediction

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/inference"
)

const tracerName = "leafcare/prediction"

type Service struct {
	repo       Repository
	classifier inference.Classifier
	logger     *slog.Logger
}

func NewService(
	repo Repository,
	classifier inference.Classifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		classifier: classifier,
		logger:     logger,
	}
}

type Outcome struct {
	Result    inference.Result
	Remedy    string
	ImageName string
}

// Predict classifies an uploaded leaf image and records the outcome under
// username, or under GuestUsername when the caller is anonymous. Nothing is
// recorded when classification fails.
func (s *Service) Predict(
	ctx context.Context,
	username, filename string,
	body io.Reader,
) (*Outcome, error) {
	if username == "" {
		username = GuestUsername
	}
	imageName := imageBaseName(filename)

	ctx, span := core.StartSpan(ctx, tracerName, "prediction.predict",
		attribute.String("prediction.username", username),
		attribute.String("prediction.image", imageName),
	)
	defer span.End()

	img, err := inference.Decode(body)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	result, err := s.classifier.Classify(ctx, img)
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("classify image: %w", err)
	}

	if err := s.repo.Create(ctx, &Log{
		Username:    username,
		ImageName:   imageName,
		DiseaseName: result.Label,
	}); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	core.AddSpanEvent(ctx, "prediction.logged",
		attribute.String("prediction.disease", result.Label),
		attribute.Float64("prediction.confidence", float64(result.Confidence)),
	)

	s.logger.InfoContext(ctx, "prediction recorded",
		"username", username,
		"image", imageName,
		"disease", result.Label,
		"confidence", result.Confidence,
	)

	return &Outcome{
		Result:    result,
		Remedy:    Remedy(result.Label),
		ImageName: imageName,
	}, nil
}

func (s *Service) ListLogs(ctx context.Context) ([]Log, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func imageBaseName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
