package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/fusion-resume/adapters/persistence"
	blurbUC "github.com/khoahotran/fusion-resume/internal/application/usecase/blurb"
	"github.com/khoahotran/fusion-resume/internal/config"
	"github.com/khoahotran/fusion-resume/pkg/logger"
)

var localDateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,6})?$`)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()
	uc := blurbUC.NewBlurbUseCase(persistence.NewMemoryBlurbRepo(), nil, log)
	return NewRouter(RouterDeps{
		Config:       config.Config{},
		Logger:       log,
		BlurbHandler: NewBlurbHandler(uc, log),
	})
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func create(t *testing.T, r http.Handler, userID int64, title, content string, keywords any) map[string]any {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/skill-blurbs", gin.H{
		"userId": userID, "title": title, "content": content, "keywords": keywords,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)
}

func TestBlurbHandler_CreateGetDeleteLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/skill-blurbs", gin.H{
		"title":    "AWS",
		"content":  "3+ years designing scalable cloud architectures...",
		"keywords": "aws,cloud,ec2,s3,lambda,rds",
		"userId":   1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "AWS", created["title"])
	assert.Equal(t, float64(1), created["userId"])
	assert.Equal(t, "aws,cloud,ec2,s3,lambda,rds", created["keywords"])
	assert.Regexp(t, localDateTimeRe, created["createdAt"])
	assert.Regexp(t, localDateTimeRe, created["updatedAt"])
	id := int64(created["id"].(float64))
	require.NotZero(t, id)

	path := fmt.Sprintf("/api/skill-blurbs/%d", id)
	w = doJSON(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, created, got)

	w = doJSON(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = doJSON(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "not found", body["error"])
}

func TestBlurbHandler_CreateValidation(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct {
		name string
		body any
	}{
		{"blank title", gin.H{"userId": 1, "title": "   ", "content": "c"}},
		{"missing title", gin.H{"userId": 1, "content": "c"}},
		{"long title", gin.H{"userId": 1, "title": strings.Repeat("t", 101), "content": "c"}},
		{"blank content", gin.H{"userId": 1, "title": "t", "content": ""}},
		{"long content", gin.H{"userId": 1, "title": "t", "content": strings.Repeat("c", 2001)}},
		{"long keywords", gin.H{"userId": 1, "title": "t", "content": "c", "keywords": strings.Repeat("k", 501)}},
		{"missing userId", gin.H{"title": "t", "content": "c"}},
		{"malformed json", `{"title":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/skill-blurbs", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	w := doJSON(t, r, http.MethodGet, "/api/skill-blurbs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w), "rejected bodies must not be stored")
}

func TestBlurbHandler_CreateAtLimits(t *testing.T) {
	r := newTestRouter(t)
	created := create(t, r, 1, strings.Repeat("t", 100), strings.Repeat("c", 2000), strings.Repeat("k", 500))
	assert.Len(t, created["title"], 100)
}

func TestBlurbHandler_CreateIgnoresClientIDAndTimestamps(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/skill-blurbs", gin.H{
		"id": 999, "userId": 1, "title": "t", "content": "c", "createdAt": "2001-01-01T00:00:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), body["id"])
	assert.NotEqual(t, "2001-01-01T00:00:00", body["createdAt"])
}

func TestBlurbHandler_ListAndByUser(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/skill-blurbs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	create(t, r, 1, "Go", "services", nil)
	create(t, r, 2, "Rust", "systems", nil)
	create(t, r, 1, "SQL", "queries", nil)

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 3)

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/user/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "Go", list[0]["title"])
	assert.Equal(t, "SQL", list[1]["title"])

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/user/7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/user/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlurbHandler_Search(t *testing.T) {
	r := newTestRouter(t)
	create(t, r, 1, "AWS Architect", "cloud", "aws,cloud")
	create(t, r, 1, "Kubernetes", "clusters", "k8s,cloud")
	create(t, r, 2, "AWS Basics", "cloud", "aws")

	titlesOf := func(w *httptest.ResponseRecorder) []string {
		var out []string
		for _, b := range decode[[]map[string]any](t, w) {
			out = append(out, b["title"].(string))
		}
		return out
	}

	w := doJSON(t, r, http.MethodGet, "/api/skill-blurbs/search?userId=1&title=aws", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"AWS Architect"}, titlesOf(w))

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/search?userId=1&keyword=CLOUD", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"AWS Architect", "Kubernetes"}, titlesOf(w))

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/search?userId=1&title=kube&keyword=aws", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Kubernetes"}, titlesOf(w), "title takes precedence over keyword")

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/search?userId=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"AWS Architect", "Kubernetes"}, titlesOf(w))

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/search?userId=2&keyword=k8s", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, titlesOf(w))

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/search?title=aws", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlurbHandler_Update(t *testing.T) {
	r := newTestRouter(t)
	created := create(t, r, 1, "Go", "services", "go")
	id := int64(created["id"].(float64))
	path := fmt.Sprintf("/api/skill-blurbs/%d", id)

	time.Sleep(2 * time.Millisecond)
	w := doJSON(t, r, http.MethodPut, path, gin.H{
		"id": 12345, "userId": 1, "title": "Go Expert", "content": "distributed services", "keywords": "go,grpc",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.Equal(t, float64(id), updated["id"], "path id wins over body id")
	assert.Equal(t, "Go Expert", updated["title"])
	assert.Equal(t, "go,grpc", updated["keywords"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])
	assert.NotEqual(t, created["updatedAt"], updated["updatedAt"])

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs", nil)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = doJSON(t, r, http.MethodPut, "/api/skill-blurbs/999", gin.H{"userId": 1, "title": "t", "content": "c"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPut, path, gin.H{"userId": 1, "title": "", "content": "c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/skill-blurbs/abc", gin.H{"userId": 1, "title": "t", "content": "c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlurbHandler_DeleteMissing(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, http.MethodDelete, "/api/skill-blurbs/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/skill-blurbs/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBlurbHandler_CORS(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/skill-blurbs", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/api/skill-blurbs", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)
}
