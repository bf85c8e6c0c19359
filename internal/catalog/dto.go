// AngelaMos | 2026
// dto.go

package catalog

import (
	"io"
	"time"
)

type AddSupplementRequest struct {
	Name        string  `json:"name"        validate:"required,max=200"`
	Description string  `json:"description" validate:"required,max=4000"`
	Price       float64 `json:"price"       validate:"gt=0"`
}

// ImageUpload is an optional file attached to a new supplement.
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

type SupplementResponse struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SupplementListResponse struct {
	Supplements []SupplementResponse `json:"supplements"`
}

func ToSupplementResponse(s *Supplement) SupplementResponse {
	resp := SupplementResponse{
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		CreatedAt:   s.CreatedAt,
	}
	if s.HasImage() {
		resp.ImageURL = *s.ImageURL
	}
	return resp
}

func ToSupplementResponseList(supplements []Supplement) []SupplementResponse {
	responses := make([]SupplementResponse, 0, len(supplements))
	for _, s := range supplements {
		responses = append(responses, ToSupplementResponse(&s))
	}
	return responses
}
