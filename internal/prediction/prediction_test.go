// AngelaMos | 2026
// prediction_test.go

package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carterperez-dev/leafcare/internal/core"
	"github.com/carterperez-dev/leafcare/internal/inference"
	"github.com/carterperez-dev/leafcare/internal/middleware"
)

type memoryRepo struct {
	mu   sync.Mutex
	logs []Log
}

func (m *memoryRepo) Create(_ context.Context, l *Log) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.Seq = int64(len(m.logs) + 1)
	l.CreatedAt = time.Now()
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memoryRepo) List(_ context.Context) ([]Log, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Log(nil), m.logs...), nil
}

func (m *memoryRepo) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.logs), nil
}

type stubClassifier struct {
	result inference.Result
	err    error
	calls  int
}

func (s *stubClassifier) Classify(_ context.Context, _ image.Image) (inference.Result, error) {
	s.calls++
	return s.result, s.err
}

func labelResult(t *testing.T, label string, confidence float32) inference.Result {
	t.Helper()

	idx := inference.IndexOf(label)
	require.GreaterOrEqual(t, idx, 0)
	return inference.Result{Index: idx, Label: label, Confidence: confidence}
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := imaging.New(32, 32, color.NRGBA{R: 60, G: 150, B: 40, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func newTestService(classifier inference.Classifier) (*Service, *memoryRepo) {
	repo := &memoryRepo{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, classifier, logger), repo
}

func TestRemedy(t *testing.T) {
	assert.Equal(t,
		"Remove infected plants and use copper fungicides.",
		Remedy("Tomato___Late_blight"),
	)
	assert.Equal(t, fallbackRemedy, Remedy("Tomato___healthy"))
	assert.Equal(t, fallbackRemedy, Remedy(""))

	for label := range remedies {
		assert.GreaterOrEqual(t, inference.IndexOf(label), 0, label)
	}
}

func TestPredict_LogsUserAndReturnsRemedy(t *testing.T) {
	classifier := &stubClassifier{result: labelResult(t, "Apple___Black_rot", 0.88)}
	svc, repo := newTestService(classifier)

	outcome, err := svc.Predict(context.Background(), "alice", "leaf.jpg", bytes.NewReader(jpegBytes(t)))
	require.NoError(t, err)

	assert.Equal(t, "Apple___Black_rot", outcome.Result.Label)
	assert.Equal(t, 1, outcome.Result.Index)
	assert.Equal(t, "Prune and destroy infected branches; use copper-based sprays.", outcome.Remedy)
	assert.Equal(t, "leaf.jpg", outcome.ImageName)

	logs, err := svc.ListLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "alice", logs[0].Username)
	assert.Equal(t, "leaf.jpg", logs[0].ImageName)
	assert.Equal(t, "Apple___Black_rot", logs[0].DiseaseName)
	assert.Len(t, repo.logs, 1)
}

func TestPredict_RecordsSpanEvent(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	classifier := &stubClassifier{result: labelResult(t, "Apple___Apple_scab", 0.75)}
	svc, _ := newTestService(classifier)

	_, err := svc.Predict(context.Background(), "alice", "leaf.jpg", bytes.NewReader(jpegBytes(t)))
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "prediction.predict", spans[0].Name())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "prediction.logged", spans[0].Events()[0].Name)
}

func TestPredict_AnonymousIsGuest(t *testing.T) {
	classifier := &stubClassifier{result: labelResult(t, "Tomato___healthy", 0.04)}
	svc, repo := newTestService(classifier)

	outcome, err := svc.Predict(context.Background(), "", `C:\photos\x.jpg`, bytes.NewReader(jpegBytes(t)))
	require.NoError(t, err)

	assert.Equal(t, fallbackRemedy, outcome.Remedy)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, GuestUsername, repo.logs[0].Username)
	assert.Equal(t, "x.jpg", repo.logs[0].ImageName)
}

func TestPredict_FailuresAreNotLogged(t *testing.T) {
	t.Run("not an image", func(t *testing.T) {
		classifier := &stubClassifier{}
		svc, repo := newTestService(classifier)

		_, err := svc.Predict(context.Background(), "alice", "notes.txt", strings.NewReader("hello"))
		assert.ErrorIs(t, err, core.ErrInvalidInput)
		assert.Zero(t, classifier.calls)
		assert.Empty(t, repo.logs)
	})

	t.Run("model unavailable", func(t *testing.T) {
		classifier := &stubClassifier{err: core.ErrModelUnavailable}
		svc, repo := newTestService(classifier)

		_, err := svc.Predict(context.Background(), "alice", "leaf.jpg", bytes.NewReader(jpegBytes(t)))
		assert.ErrorIs(t, err, core.ErrModelUnavailable)
		assert.Empty(t, repo.logs)
	})
}

func TestImageBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "leaf.png", want: "leaf.png"},
		{in: "../../etc/leaf.png", want: "leaf.png"},
		{in: `dir\leaf.png`, want: "leaf.png"},
		{in: "", want: "upload"},
		{in: "/", want: "upload"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, imageBaseName(tt.in), tt.in)
	}
}

func multipartImage(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func asUser(username string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.ContextWithClaims(r.Context(), &middleware.AccessTokenClaims{
				SessionID: "sess",
				Username:  username,
				Role:      middleware.RoleUser,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestHandler_Predict(t *testing.T) {
	classifier := &stubClassifier{result: labelResult(t, "Corn_(maize)___Common_rust_", 0.67)}
	svc, repo := newTestService(classifier)
	h := NewHandler(svc, 1<<20)

	r := chi.NewRouter()
	h.RegisterRoutes(r, asUser("bob"))

	body, contentType := multipartImage(t, "image", "corn.jpg", jpegBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/predictions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool               `json:"success"`
		Data    PredictionResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Corn_(maize)___Common_rust_", resp.Data.Disease)
	assert.Equal(t, 8, resp.Data.ClassIndex)
	assert.Equal(t, "Apply fungicides and practice crop rotation.", resp.Data.Remedy)

	require.Len(t, repo.logs, 1)
	assert.Equal(t, "bob", repo.logs[0].Username)
}

func TestHandler_PredictErrors(t *testing.T) {
	passthrough := func(next http.Handler) http.Handler { return next }

	tests := []struct {
		name       string
		classifier *stubClassifier
		field      string
		data       []byte
		limit      int64
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing image field",
			classifier: &stubClassifier{},
			field:      "photo",
			data:       []byte("x"),
			limit:      1 << 20,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not an image",
			classifier: &stubClassifier{},
			field:      "image",
			data:       []byte("plain text"),
			limit:      1 << 20,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "model down",
			classifier: &stubClassifier{err: core.ErrModelUnavailable},
			field:      "image",
			limit:      1 << 20,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "MODEL_UNAVAILABLE",
		},
		{
			name:       "too large",
			classifier: &stubClassifier{},
			field:      "image",
			limit:      16,
			wantStatus: http.StatusBadRequest,
			wantCode:   "UPLOAD_FAILURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(tt.classifier)
			h := NewHandler(svc, tt.limit)
			r := chi.NewRouter()
			h.RegisterRoutes(r, passthrough)

			data := tt.data
			if data == nil {
				data = jpegBytes(t)
			}
			body, contentType := multipartImage(t, tt.field, "leaf.jpg", data)
			req := httptest.NewRequest(http.MethodPost, "/predictions", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
			assert.Empty(t, repo.logs)
		})
	}
}

func TestHandler_ListDiseases(t *testing.T) {
	svc, _ := newTestService(&stubClassifier{})
	r := chi.NewRouter()
	NewHandler(svc, 1<<20).RegisterRoutes(r, func(next http.Handler) http.Handler { return next })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/diseases", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Diseases []inference.Disease `json:"diseases"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Diseases, inference.NumClasses)
}
