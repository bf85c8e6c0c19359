// AngelaMos | 2026
// inference_test.go

package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/leafcare/internal/config"
	"github.com/carterperez-dev/leafcare/internal/core"
)

func TestLabels(t *testing.T) {
	require.Len(t, Labels, NumClasses)
	assert.Equal(t, "Apple___Apple_scab", Labels[0])
	assert.Equal(t, "Tomato___healthy", Labels[37])
	assert.Equal(t, 30, IndexOf("Tomato___Late_blight"))
	assert.Equal(t, -1, IndexOf("Banana___healthy"))

	_, ok := Label(38)
	assert.False(t, ok)
	_, ok = Label(-1)
	assert.False(t, ok)
}

func TestDiseases(t *testing.T) {
	diseases := Diseases()
	require.Len(t, diseases, NumClasses)

	assert.Equal(t, Disease{
		Index:     8,
		Label:     "Corn_(maize)___Common_rust_",
		Crop:      "Corn (maize)",
		Condition: "Common rust",
		Healthy:   false,
	}, diseases[8])
	assert.True(t, diseases[3].Healthy)
}

func TestArgMax(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float32
		wantIdx int
		wantVal float32
	}{
		{name: "empty", scores: nil, wantIdx: -1},
		{name: "single", scores: []float32{0.2}, wantIdx: 0, wantVal: 0.2},
		{name: "max in middle", scores: []float32{0.1, 0.7, 0.2}, wantIdx: 1, wantVal: 0.7},
		{name: "tie keeps first", scores: []float32{0.5, 0.5}, wantIdx: 0, wantVal: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, val := ArgMax(tt.scores)
			assert.Equal(t, tt.wantIdx, idx)
			assert.InDelta(t, tt.wantVal, val, 1e-6)
		})
	}
}

func TestResultFromScores_LowConfidenceStillWins(t *testing.T) {
	scores := make([]float32, NumClasses)
	for i := range scores {
		scores[i] = 0.02
	}
	scores[30] = 0.03

	result, ok := ResultFromScores(scores)
	require.True(t, ok)
	assert.Equal(t, "Tomato___Late_blight", result.Label)
	assert.InDelta(t, 0.03, result.Confidence, 1e-6)
}

func TestPreprocess_ShapeAndRange(t *testing.T) {
	img := imaging.New(300, 200, color.NRGBA{R: 10, G: 200, B: 30, A: 128})

	tensor := Preprocess(img, 128)
	require.Len(t, tensor, 128)
	require.Len(t, tensor[0], 128)

	assert.Equal(t, [3]float32{10, 200, 30}, tensor[0][0])
	assert.Equal(t, [3]float32{10, 200, 30}, tensor[127][127])
}

func TestPreprocess_Deterministic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}

	assert.Equal(t, Preprocess(img, 128), Preprocess(img, 128))
}

func TestDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(3, 3, color.White), imaging.JPEG))

	img, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Bounds().Dx())

	_, err = Decode(strings.NewReader("not an image"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func fakeModelServer(t *testing.T, winner int, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/models/plant_disease:predict", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		var req struct {
			Instances [][][][3]float32 `json:"instances"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
			len(req.Instances) != 1 || len(req.Instances[0]) != 128 {
			http.Error(w, "bad tensor", http.StatusBadRequest)
			return
		}

		scores := make([]float32, NumClasses)
		scores[winner] = 0.91
		_ = json.NewEncoder(w).Encode(map[string]any{"predictions": [][]float32{scores}})
	})
	mux.HandleFunc("GET /v1/models/plant_disease", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model_version_status":[{"version":"1","state":"AVAILABLE"}]}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTFServingClassifier_Classify(t *testing.T) {
	var calls atomic.Int32
	srv := fakeModelServer(t, 21, &calls)

	c, err := NewTFServingClassifier(config.InferenceConfig{
		Endpoint:  srv.URL + "/",
		Model:     "plant_disease",
		Timeout:   time.Second,
		InputSize: 128,
	})
	require.NoError(t, err)

	img := imaging.New(40, 40, color.NRGBA{R: 90, G: 140, B: 60, A: 255})

	first, err := c.Classify(context.Background(), img)
	require.NoError(t, err)
	second, err := c.Classify(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, "Potato___Late_blight", first.Label)
	assert.Equal(t, 21, first.Index)
	assert.InDelta(t, 0.91, first.Confidence, 1e-6)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(2), calls.Load())

	require.NoError(t, c.Ping(context.Background()))
}

func TestTFServingClassifier_Unavailable(t *testing.T) {
	img := imaging.New(8, 8, color.Black)

	unconfigured, err := NewTFServingClassifier(config.InferenceConfig{Model: "plant_disease"})
	require.NoError(t, err)
	assert.False(t, unconfigured.Configured())
	_, err = unconfigured.Classify(context.Background(), img)
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
	assert.ErrorIs(t, unconfigured.Ping(context.Background()), core.ErrModelUnavailable)

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	c, err := NewTFServingClassifier(config.InferenceConfig{
		Endpoint: failing.URL,
		Model:    "plant_disease",
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	_, err = c.Classify(context.Background(), img)
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
	assert.Error(t, c.Ping(context.Background()))
}

func TestTFServingClassifier_WrongVocabulary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[[0.1,0.9]]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewTFServingClassifier(config.InferenceConfig{Endpoint: srv.URL, Model: "m"})
	require.NoError(t, err)

	_, err = c.Classify(context.Background(), imaging.New(4, 4, color.White))
	assert.ErrorIs(t, err, core.ErrModelUnavailable)
}
