// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/carterperez-dev/leafcare/internal/core"
)

type ImageSaver interface {
	Save(filename string, body io.Reader) (string, error)
	Remove(url string) error
}

type Service struct {
	repo   Repository
	images ImageSaver
	logger *slog.Logger
}

func NewService(repo Repository, images ImageSaver, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		images: images,
		logger: logger,
	}
}

// AddSupplement stores a new catalog entry. The image, when given, is only
// written after the name is known to be free and is removed again if the
// insert still loses a race.
func (s *Service) AddSupplement(
	ctx context.Context,
	req AddSupplementRequest,
	image *ImageUpload,
) (*Supplement, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)

	if name == "" || description == "" {
		return nil, fmt.Errorf(
			"add supplement: name and description are required: %w",
			core.ErrInvalidInput,
		)
	}
	if !validPrice(req.Price) {
		return nil, fmt.Errorf(
			"add supplement: price must be a positive finite number: %w",
			core.ErrInvalidInput,
		)
	}

	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("add supplement: %w", core.ErrDuplicateKey)
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	supplement := &Supplement{
		Name:        name,
		Description: description,
		Price:       req.Price,
	}

	if image != nil {
		url, err := s.images.Save(image.Filename, image.Body)
		if err != nil {
			return nil, err
		}
		supplement.ImageURL = &url
	}

	if err := s.repo.Create(ctx, supplement); err != nil {
		if supplement.HasImage() {
			s.removeImage(*supplement.ImageURL)
		}
		return nil, err
	}

	return supplement, nil
}

func (s *Service) DeleteSupplement(ctx context.Context, name string) error {
	deleted, err := s.repo.Delete(ctx, name)
	if err != nil {
		return err
	}

	if deleted.HasImage() {
		s.removeImage(*deleted.ImageURL)
	}

	return nil
}

func (s *Service) ListSupplements(ctx context.Context) ([]Supplement, error) {
	return s.repo.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// validPrice rejects NaN along with non-positive and infinite values.
func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0)
}

func (s *Service) removeImage(url string) {
	if err := s.images.Remove(url); err != nil {
		s.logger.Warn("failed to remove supplement image",
			"url", url,
			"error", err,
		)
	}
}
