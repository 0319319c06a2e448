package service

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
	"github.com/lk2023060901/minidrive-backend/internal/auth"
	"github.com/lk2023060901/minidrive-backend/internal/auth/middleware"
	"github.com/lk2023060901/minidrive-backend/internal/file/biz"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is a minimal in-memory biz.FileRepo for handler tests
type memRepo struct {
	files map[string]*biz.File
}

func newMemRepo() *memRepo {
	return &memRepo{files: map[string]*biz.File{}}
}

func (r *memRepo) Create(_ context.Context, f *biz.File) error {
	r.files[f.ID] = f
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*biz.File, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, biz.ErrFileNotFound
	}
	return f, nil
}

func (r *memRepo) GetByIDAndOwner(_ context.Context, id, ownerID string) (*biz.File, error) {
	f, ok := r.files[id]
	if !ok || f.OwnerID != ownerID {
		return nil, biz.ErrFileNotFound
	}
	return f, nil
}

func (r *memRepo) ListByOwner(_ context.Context, ownerID string) ([]*biz.File, error) {
	var out []*biz.File
	for _, f := range r.files {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memRepo) ListSharedWith(_ context.Context, email string) ([]*biz.File, error) {
	var out []*biz.File
	for _, f := range r.files {
		if f.ShareFor(email) != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memRepo) ListAll(_ context.Context) ([]*biz.File, error) {
	var out []*biz.File
	for _, f := range r.files {
		out = append(out, f)
	}
	return out, nil
}

func (r *memRepo) UpdateContentInfo(_ context.Context, id, storageKey, mediaType string, sizeBytes int64) error {
	f, ok := r.files[id]
	if !ok {
		return biz.ErrFileNotFound
	}
	f.StorageKey = storageKey
	f.MediaType = mediaType
	f.SizeBytes = sizeBytes
	return nil
}

func (r *memRepo) UpsertShare(_ context.Context, fileID, email string, permission biz.Permission) error {
	f, ok := r.files[fileID]
	if !ok {
		return biz.ErrFileNotFound
	}
	for i := range f.Shares {
		if f.Shares[i].Email == email {
			f.Shares[i].Permission = permission
			return nil
		}
	}
	f.Shares = append(f.Shares, biz.ShareEntry{Email: email, Permission: permission})
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.files, id)
	return nil
}

// memBlobs is a minimal in-memory biz.BlobStore
type memBlobs struct {
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: map[string][]byte{}}
}

func (s *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	s.blobs[key] = data
	return nil
}

func (s *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return data, nil
}

func (s *memBlobs) Delete(_ context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}

// testIdentity injects a fixed identity the way JWTAuth would
func testIdentity(id biz.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id.ID)
		c.Set("email", id.Email)
		c.Set("role", id.Role)
		c.Next()
	}
}

type fixture struct {
	uc    *biz.FileUseCase
	repo  *memRepo
	blobs *memBlobs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "console"})
	require.NoError(t, err)

	repo := newMemRepo()
	blobs := newMemBlobs()
	return &fixture{
		uc:    biz.NewFileUseCase(repo, blobs, 0, log),
		repo:  repo,
		blobs: blobs,
	}
}

func (f *fixture) router(t *testing.T, id biz.Identity) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "console"})
	require.NoError(t, err)

	svc := NewFileService(f.uc, log)
	router := gin.New()
	api := router.Group("/api", testIdentity(id))
	svc.RegisterRoutes(api, middleware.RequireAdmin())
	return router
}

func (f *fixture) seedFile(t *testing.T, owner biz.Identity, name string, data []byte) *biz.File {
	t.Helper()
	file, err := f.uc.Upload(context.Background(), owner, name, "text/plain", data)
	require.NoError(t, err)
	return file
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

var (
	alice = biz.Identity{ID: "alice-1", Email: "alice@example.com", Role: auth.RoleMember}
	bob   = biz.Identity{ID: "bob-1", Email: "bob@example.com", Role: auth.RoleMember}
	root  = biz.Identity{ID: "root-1", Email: "root@example.com", Role: auth.RoleAdmin}
)

func TestUploadAndListMine(t *testing.T) {
	f := newFixture(t)
	router := f.router(t, alice)

	body, contentType := multipartBody(t, "file", "hello.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/api/files", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hello.txt")
}

func TestUploadWithoutFile(t *testing.T) {
	f := newFixture(t)
	router := f.router(t, alice)

	body, contentType := multipartBody(t, "wrong_field", "hello.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareByNonOwnerIsNotFound(t *testing.T) {
	f := newFixture(t)
	file := f.seedFile(t, alice, "doc.txt", []byte("content"))

	router := f.router(t, bob)
	payload, _ := json.Marshal(ShareRequest{Email: "carol@example.com", Permission: "view"})
	req := httptest.NewRequest(http.MethodPost, "/api/files/share/"+file.ID, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Not 403: the owner-scoped lookup hides whether the file exists.
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateContentPermissionDenied(t *testing.T) {
	f := newFixture(t)
	file := f.seedFile(t, alice, "doc.txt", []byte("content"))

	_, err := f.uc.Share(context.Background(), alice, file.ID, bob.Email, biz.PermissionView)
	require.NoError(t, err)

	router := f.router(t, bob)
	payload := `{"content":"bob was here"}`
	req := httptest.NewRequest(http.MethodPut, "/api/files/"+file.ID+"/content", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateContentWithoutPayload(t *testing.T) {
	f := newFixture(t)
	file := f.seedFile(t, alice, "doc.txt", []byte("content"))

	router := f.router(t, alice)
	req := httptest.NewRequest(http.MethodPut, "/api/files/"+file.ID+"/content", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload(t *testing.T) {
	f := newFixture(t)
	file := f.seedFile(t, alice, "doc.txt", []byte("file content"))

	router := f.router(t, alice)
	req := httptest.NewRequest(http.MethodGet, "/api/files/"+file.ID+"/download", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "file content", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "doc.txt")

	// Outside the visibility scope the download 404s.
	router = f.router(t, bob)
	req = httptest.NewRequest(http.MethodGet, "/api/files/"+file.ID+"/download", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	f := newFixture(t)
	f.seedFile(t, alice, "doc.txt", []byte("content"))

	router := f.router(t, bob)
	req := httptest.NewRequest(http.MethodGet, "/api/files/admin/all", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	router = f.router(t, root)
	req = httptest.NewRequest(http.MethodGet, "/api/files/admin/all", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "doc.txt")
}

func TestAdminDeleteAnyFile(t *testing.T) {
	f := newFixture(t)
	file := f.seedFile(t, alice, "doc.txt", []byte("content"))

	router := f.router(t, root)
	req := httptest.NewRequest(http.MethodDelete, "/api/files/admin/"+file.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := f.repo.GetByID(context.Background(), file.ID)
	assert.ErrorIs(t, err, biz.ErrFileNotFound)
}
