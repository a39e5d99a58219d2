package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dshills/stylist/internal/face"
	"github.com/dshills/stylist/internal/llm"
	"github.com/dshills/stylist/internal/metrics"
	"github.com/dshills/stylist/internal/profile"
	"github.com/dshills/stylist/internal/schema"
	"github.com/dshills/stylist/internal/synth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) Recommend(ctx context.Context, req synth.Request) schema.RecommendationSet {
	args := m.Called(ctx, req)
	return args.Get(0).(schema.RecommendationSet)
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, image []byte) (face.Attributes, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(face.Attributes), args.Error(1)
}

func newTestServer(t *testing.T, rec Recommender, an face.Analyzer, m *metrics.Metrics) *Server {
	t.Helper()
	s, err := New(Options{Recommender: rec, Analyzer: an, Metrics: m, Logger: zerolog.Nop(), MaxUploadBytes: 1 << 20})
	require.NoError(t, err)
	return s
}

// multipartBody builds an /analyze form. An empty image omits the file part.
func multipartBody(t *testing.T, image []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if image != nil {
		fw, err := w.CreateFormFile("image", "face.jpg")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNew_RequiresRecommender(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, &mockRecommender{}, nil, nil)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer(t, &mockRecommender{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec := do(s, req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderRequestID))
}

func TestAnalyze_Success(t *testing.T) {
	image := []byte("\xff\xd8\xff\xe0 fake jpeg")
	an := &mockAnalyzer{}
	an.On("Analyze", mock.Anything, image).Return(face.Attributes{Shape: "Oval", SkinTone: "Warm"}, nil).Once()

	want := synth.Fallback()
	want.Outfits[0].Name = "From Recommender"
	r := &mockRecommender{}
	r.On("Recommend", mock.Anything, synth.Request{
		Profile: profile.Profile{Shape: "Oval", SkinTone: "Warm", Gender: "Female"},
		APIKey:  "user-key",
	}).Return(want).Once()

	s := newTestServer(t, r, an, nil)
	body, ct := multipartBody(t, image, map[string]string{"gender": "Female", "api_key": "user-key"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, profile.Profile{Shape: "Oval", SkinTone: "Warm", Gender: "Female"}, got.Profile)
	assert.Equal(t, "From Recommender", got.Recommendations.Outfits[0].Name)
	an.AssertExpectations(t)
	r.AssertExpectations(t)
}

func TestAnalyze_BadRequests(t *testing.T) {
	cases := []struct {
		name   string
		image  []byte
		fields map[string]string
	}{
		{"missing image", nil, map[string]string{"gender": "Male"}},
		{"missing gender", []byte("img"), map[string]string{}},
		{"blank gender", []byte("img"), map[string]string{"gender": "  "}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &mockRecommender{}
			s := newTestServer(t, r, &mockAnalyzer{}, nil)
			body, ct := multipartBody(t, c.image, c.fields)
			req := httptest.NewRequest(http.MethodPost, "/analyze", body)
			req.Header.Set("Content-Type", ct)

			rec := do(s, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
			r.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
		})
	}
}

func TestAnalyze_NotMultipart(t *testing.T) {
	s := newTestServer(t, &mockRecommender{}, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{"gender":"Male"}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, do(s, req).Code)
}

func TestAnalyze_AnalyzerError(t *testing.T) {
	an := &mockAnalyzer{}
	an.On("Analyze", mock.Anything, mock.Anything).Return(face.Attributes{}, errors.New("no face detected")).Once()
	r := &mockRecommender{}
	s := newTestServer(t, r, an, nil)

	body, ct := multipartBody(t, []byte("img"), map[string]string{"gender": "Male"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)

	rec := do(s, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"no face detected"}`, rec.Body.String())
	r.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
}

func TestAnalyze_EndToEndFallback(t *testing.T) {
	m := metrics.New()
	syn := synth.New(synth.Options{Settings: llm.Settings{Provider: "groq"}, Metrics: m})
	s := newTestServer(t, syn, face.Unknown{}, m)

	body, ct := multipartBody(t, []byte("img"), map[string]string{"gender": "Male"})
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", ct)

	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, profile.Unknown, got.Profile.Shape)
	assert.Equal(t, "Male", got.Profile.Gender)
	assert.Equal(t, synth.Fallback(), got.Recommendations)

	metricsRec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), `stylist_fallbacks_total{reason="no_credential"} 1`)
	assert.Contains(t, metricsRec.Body.String(), `stylist_http_requests_total{method="POST",route="/analyze",status="200"} 1`)
}

func TestRecommend_JSON(t *testing.T) {
	r := &mockRecommender{}
	r.On("Recommend", mock.Anything, synth.Request{
		Profile: profile.Profile{Shape: "Square", SkinTone: "Cool"},
	}).Return(synth.Fallback()).Once()
	s := newTestServer(t, r, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"shape":"Square","skin_tone":"Cool"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(s, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, profile.Unspecified, got.Profile.Gender)
	assert.Len(t, got.Recommendations.Outfits, 3)
	r.AssertExpectations(t)
}

func TestRecommend_EmptyObject(t *testing.T) {
	r := &mockRecommender{}
	r.On("Recommend", mock.Anything, synth.Request{}).Return(synth.Fallback()).Once()
	s := newTestServer(t, r, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusOK, do(s, req).Code)
}

func TestRecommend_InvalidJSON(t *testing.T) {
	r := &mockRecommender{}
	s := newTestServer(t, r, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/recommend", strings.NewReader(`{"shape":`))
	req.Header.Set("Content-Type", "application/json")
	rec := do(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	r.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
}

func TestMetrics_RouteAbsentWithoutRegistry(t *testing.T) {
	s := newTestServer(t, &mockRecommender{}, nil, nil)
	assert.Equal(t, http.StatusNotFound, do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil)).Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	s := newTestServer(t, &mockRecommender{}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
