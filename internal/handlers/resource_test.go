package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/models"
	"resumebuilder/internal/repositories"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeTemplateStore is an in-memory Store[models.Template] capturing the
// arguments the handler passes down.
type fakeTemplateStore struct {
	docs      map[uuid.UUID]*models.Template
	lastQuery repositories.ListQuery
	lastScope repositories.Scope
}

func newFakeTemplateStore() *fakeTemplateStore {
	return &fakeTemplateStore{docs: map[uuid.UUID]*models.Template{}}
}

func (f *fakeTemplateStore) Create(_ context.Context, doc *models.Template) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	doc.ID = uuid.New()
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeTemplateStore) GetByID(_ context.Context, id uuid.UUID, scope repositories.Scope) (*models.Template, error) {
	f.lastScope = scope
	doc, ok := f.docs[id]
	if !ok {
		return nil, apperrors.NotFound("Invalid ID: no document found with that ID")
	}
	return doc, nil
}

func (f *fakeTemplateStore) Update(_ context.Context, id uuid.UUID, patch map[string]any, scope repositories.Scope) (*models.Template, error) {
	doc, err := f.GetByID(context.Background(), id, scope)
	if err != nil {
		return nil, err
	}
	if name, ok := patch["name"].(string); ok {
		doc.Name = name
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *fakeTemplateStore) Delete(_ context.Context, id uuid.UUID, scope repositories.Scope) error {
	if _, err := f.GetByID(context.Background(), id, scope); err != nil {
		return err
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeTemplateStore) List(_ context.Context, q repositories.ListQuery, scope repositories.Scope) ([]*models.Template, error) {
	f.lastQuery = q
	f.lastScope = scope
	out := make([]*models.Template, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out, nil
}

func newTemplateRouter(store *fakeTemplateStore) *gin.Engine {
	res := NewResource[models.Template](store)
	r := gin.New()
	r.POST("/templates", res.CreateOne)
	r.GET("/templates", res.GetAll)
	r.GET("/templates/:id", res.GetOne)
	r.PATCH("/templates/:id", res.UpdateOne)
	r.DELETE("/templates/:id", res.DeleteOne)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestResource_CreateAndGet(t *testing.T) {
	store := newFakeTemplateStore()
	r := newTemplateRouter(store)

	w := doJSON(t, r, http.MethodPost, "/templates", gin.H{
		"name":              "Modern",
		"image_preview_url": "https://cdn.example.com/modern.png",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "success", body["status"])

	doc := body["data"].(map[string]any)["data"].(map[string]any)
	id := doc["id"].(string)

	w = doJSON(t, r, http.MethodGet, "/templates/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeEnvelope(t, w)
	got := body["data"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "Modern", got["name"])
}

func TestResource_CreateValidationFails(t *testing.T) {
	store := newFakeTemplateStore()
	r := newTemplateRouter(store)

	w := doJSON(t, r, http.MethodPost, "/templates", gin.H{
		"name":              "ab",
		"image_preview_url": "https://cdn.example.com/x.png",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fail", decodeEnvelope(t, w)["status"])
}

func TestResource_GetUnknownAndMalformedID(t *testing.T) {
	store := newFakeTemplateStore()
	r := newTemplateRouter(store)

	w := doJSON(t, r, http.MethodGet, "/templates/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/templates/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no document found")
}

func TestResource_ListCountAndQueryParams(t *testing.T) {
	store := newFakeTemplateStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Create(context.Background(), &models.Template{
			Name:            "Template " + uuid.NewString()[:8],
			ImagePreviewURL: "https://cdn.example.com/t.png",
		}))
	}
	r := newTemplateRouter(store)

	w := doJSON(t, r, http.MethodGet, "/templates?page=2&limit=5&sort=-createdAt&name=Modern", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeEnvelope(t, w)
	assert.Equal(t, float64(3), body["results"])

	assert.Equal(t, 2, store.lastQuery.Page)
	assert.Equal(t, 5, store.lastQuery.Limit)
	require.Len(t, store.lastQuery.Sort, 1)
	assert.Equal(t, "createdAt", store.lastQuery.Sort[0].Field)
	assert.True(t, store.lastQuery.Sort[0].Desc)
	assert.Equal(t, "Modern", store.lastQuery.Filter["name"])
}

func TestResource_ListProjection(t *testing.T) {
	store := newFakeTemplateStore()
	require.NoError(t, store.Create(context.Background(), &models.Template{
		Name:            "Modern",
		ImagePreviewURL: "https://cdn.example.com/t.png",
	}))
	r := newTemplateRouter(store)

	w := doJSON(t, r, http.MethodGet, "/templates?fields=name", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeEnvelope(t, w)
	docs := body["data"].(map[string]any)["data"].([]any)
	require.Len(t, docs, 1)
	doc := docs[0].(map[string]any)
	assert.Contains(t, doc, "name")
	assert.Contains(t, doc, "id")
	assert.NotContains(t, doc, "image_preview_url")
}

func TestResource_UpdateAndDelete(t *testing.T) {
	store := newFakeTemplateStore()
	tpl := &models.Template{Name: "Modern", ImagePreviewURL: "https://cdn.example.com/t.png"}
	require.NoError(t, store.Create(context.Background(), tpl))
	r := newTemplateRouter(store)

	w := doJSON(t, r, http.MethodPatch, "/templates/"+tpl.ID.String(), gin.H{"name": "Classic"})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeEnvelope(t, w)["data"].(map[string]any)["data"].(map[string]any)
	assert.Equal(t, "Classic", got["name"])

	w = doJSON(t, r, http.MethodDelete, "/templates/"+tpl.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, store.docs)
}
