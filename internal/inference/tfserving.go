// AngelaMos | 2026
// tfserving.go

package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/leafcare/internal/config"
	"github.com/carterperez-dev/leafcare/internal/core"
)

const tracerName = "leafcare/inference"

// TFServingClassifier runs the trained model on a TensorFlow Serving
// instance over its REST API.
type TFServingClassifier struct {
	predictURL string
	statusURL  string
	inputSize  int
	client     *http.Client
}

func NewTFServingClassifier(cfg config.InferenceConfig) (*TFServingClassifier, error) {
	c := &TFServingClassifier{
		inputSize: cfg.InputSize,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if c.inputSize <= 0 {
		c.inputSize = DefaultInputSize
	}
	if c.client.Timeout <= 0 {
		c.client.Timeout = 10 * time.Second
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return c, nil
	}

	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("parse inference endpoint: %w", err)
	}

	model := url.PathEscape(cfg.Model)
	c.statusURL = endpoint + "/v1/models/" + model
	c.predictURL = c.statusURL + ":predict"

	return c, nil
}

// Configured reports whether a model server endpoint was given.
func (c *TFServingClassifier) Configured() bool {
	return c.predictURL != ""
}

type predictRequest struct {
	Instances []Tensor `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float32 `json:"predictions"`
	Error       string      `json:"error,omitempty"`
}

func (c *TFServingClassifier) Classify(
	ctx context.Context,
	img image.Image,
) (Result, error) {
	if !c.Configured() {
		return Result{}, fmt.Errorf("classify: no endpoint: %w", core.ErrModelUnavailable)
	}

	ctx, span := core.StartSpan(ctx, tracerName, "inference.classify",
		attribute.Int("inference.input_size", c.inputSize),
	)
	defer span.End()

	body, err := json.Marshal(predictRequest{
		Instances: []Tensor{Preprocess(img, c.inputSize)},
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		core.SetSpanError(ctx, err)
		return Result{}, fmt.Errorf("predict: %v: %w", err, core.ErrModelUnavailable)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read predict response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf(
			"predict: model server returned %d: %w",
			resp.StatusCode,
			core.ErrModelUnavailable,
		)
		core.SetSpanError(ctx, err)
		return Result{}, err
	}

	var decoded predictResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Result{}, fmt.Errorf("decode predict response: %w", err)
	}

	if len(decoded.Predictions) != 1 || len(decoded.Predictions[0]) != len(Labels) {
		return Result{}, fmt.Errorf(
			"predict: expected 1x%d scores, got %d rows: %w",
			len(Labels),
			len(decoded.Predictions),
			core.ErrModelUnavailable,
		)
	}

	result, ok := ResultFromScores(decoded.Predictions[0])
	if !ok {
		return Result{}, fmt.Errorf("predict: no class selected: %w", core.ErrModelUnavailable)
	}

	span.SetAttributes(
		attribute.String("inference.label", result.Label),
		attribute.Float64("inference.confidence", float64(result.Confidence)),
	)

	return result, nil
}

type modelStatusResponse struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
	} `json:"model_version_status"`
}

// Ping checks that the model server has at least one version AVAILABLE.
func (c *TFServingClassifier) Ping(ctx context.Context) error {
	if !c.Configured() {
		return fmt.Errorf("model status: no endpoint: %w", core.ErrModelUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("model status: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only response body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model status: server returned %d", resp.StatusCode)
	}

	var status modelStatusResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&status); err != nil {
		return fmt.Errorf("decode model status: %w", err)
	}

	for _, v := range status.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			return nil
		}
	}

	return fmt.Errorf("model status: no available version")
}

var _ Classifier = (*TFServingClassifier)(nil)
