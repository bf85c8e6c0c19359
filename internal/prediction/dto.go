// AngelaMos | 2026
// dto.go

package prediction

import (
	"time"

	"github.com/samber/lo"
)

type PredictionResponse struct {
	Disease    string  `json:"disease"`
	ClassIndex int     `json:"class_index"`
	Confidence float32 `json:"confidence"`
	Remedy     string  `json:"remedy"`
	ImageName  string  `json:"image_name"`
}

type LogResponse struct {
	Username    string    `json:"username"`
	ImageName   string    `json:"image_name"`
	DiseaseName string    `json:"disease_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type LogListResponse struct {
	Logs []LogResponse `json:"logs"`
}

func ToLogResponseList(logs []Log) []LogResponse {
	return lo.Map(logs, func(l Log, _ int) LogResponse {
		return LogResponse{
			Username:    l.Username,
			ImageName:   l.ImageName,
			DiseaseName: l.DiseaseName,
			CreatedAt:   l.CreatedAt,
		}
	})
}
