package siteimages

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

type memoryStore struct {
	nextID uint
	byKey  map[string]SiteImage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byKey: map[string]SiteImage{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (*SiteImage, error) {
	image, ok := s.byKey[key]
	if !ok {
		return nil, pastures.ErrNotFound
	}
	return &image, nil
}

func (s *memoryStore) Upsert(_ context.Context, image *SiteImage) (*SiteImage, error) {
	existing, ok := s.byKey[image.PlacementKey]
	if ok {
		image.ID = existing.ID
	} else {
		s.nextID++
		image.ID = s.nextID
	}
	s.byKey[image.PlacementKey] = *image
	saved := *image
	return &saved, nil
}

func (s *memoryStore) List(_ context.Context) ([]SiteImage, error) {
	out := make([]SiteImage, 0, len(s.byKey))
	for _, image := range s.byKey {
		out = append(out, image)
	}
	return out, nil
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	NewHandler(store, zap.NewNop()).RegisterRoutes(api)
	return router
}

func TestUpsertThenGetByPlacementKey(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	body := `{"url": "https://img.example.com/hero.jpg", "alt_text": "goats at sunrise"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/site-images/home-hero", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/site-images/home-hero", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var image SiteImage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &image))
	assert.Equal(t, "home-hero", image.PlacementKey)
	assert.Equal(t, "https://img.example.com/hero.jpg", image.URL)
	assert.Equal(t, "goats at sunrise", image.AltText)
}

func TestUpsert_ReplacesExistingAssignment(t *testing.T) {
	store := newMemoryStore()
	router := newTestRouter(store)

	for _, url := range []string{"https://img.example.com/a.jpg", "https://img.example.com/b.jpg"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/v1/site-images/home-hero",
			strings.NewReader(`{"url": "`+url+`"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	images, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "https://img.example.com/b.jpg", images[0].URL)
}

func TestGet_UnknownPlacementIs404(t *testing.T) {
	router := newTestRouter(newMemoryStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/site-images/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsert_RequiresURL(t *testing.T) {
	router := newTestRouter(newMemoryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/site-images/home-hero",
		strings.NewReader(`{"alt_text": "no url"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
