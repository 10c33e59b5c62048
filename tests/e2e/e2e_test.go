package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"savelog/internal/blobstore"
	"savelog/internal/database"
	"savelog/internal/domain"
	"savelog/internal/middleware"
	"savelog/internal/modules/auth"
	"savelog/internal/modules/logs"
	"savelog/internal/pkg/token"
	"savelog/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const baseURL = "http://localhost:8077"

type testSuite struct {
	router   *gin.Engine
	db       *gorm.DB
	blobsDir string
	logRepo  *repository.LogRepository
	blobs    *blobstore.Store
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorDetail    `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupSuite(t *testing.T) *testSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(filepath.Join(t.TempDir(), "savelog.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	blobsDir := t.TempDir()
	blobs, err := blobstore.New(blobsDir)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	logRepo := repository.NewLogRepository(db)
	tokens := token.New()

	authService := auth.NewService(userRepo, tokens)
	authHandler := auth.NewHandler(authService)

	logService := logs.NewService(logRepo, blobs, baseURL, nil)
	logHandler := logs.NewHandler(logService)

	r := gin.New()
	authHandler.RegisterRoutes(&r.RouterGroup)
	logHandler.RegisterPublicRoutes(&r.RouterGroup)

	optional := r.Group("/")
	optional.Use(middleware.OptionalAuth(authService))
	logHandler.RegisterOptionalAuthRoutes(optional)

	protected := r.Group("/")
	protected.Use(middleware.RequireAuth(authService))
	logHandler.RegisterProtectedRoutes(protected)

	return &testSuite{
		router:   r,
		db:       db,
		blobsDir: blobsDir,
		logRepo:  logRepo,
		blobs:    blobs,
	}
}

func (s *testSuite) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *testSuite) register(t *testing.T, username, password string) {
	t.Helper()
	w := s.request(t, http.MethodPost, "/register", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func (s *testSuite) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.request(t, http.MethodPost, "/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &data))
	require.NotEmpty(t, data.AccessToken)
	return data.AccessToken
}

func (s *testSuite) createLog(t *testing.T, token string, body gin.H) logs.CreateLogResponse {
	t.Helper()
	w := s.request(t, http.MethodPost, "/logs", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created logs.CreateLogResponse
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &created))
	return created
}

func TestPublicLogRoundtrip(t *testing.T) {
	s := setupSuite(t)

	created := s.createLog(t, "", gin.H{"content": "hello world", "filename": "greeting.txt"})
	assert.Equal(t, "greeting.txt", created.Filename)
	assert.Equal(t, baseURL+"/logs/f/greeting.txt", created.FileURL)
	assert.Equal(t, "none", created.ExpireAt)

	// Readable anonymously with identical content.
	w := s.request(t, http.MethodGet, "/logs/f/greeting.txt", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello world", w.Body.String())
}

func TestEmptyContentRoundtrip(t *testing.T) {
	s := setupSuite(t)

	s.createLog(t, "", gin.H{"content": "", "filename": "empty.txt"})

	w := s.request(t, http.MethodGet, "/logs/f/empty.txt", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestGeneratedFilename(t *testing.T) {
	s := setupSuite(t)

	created := s.createLog(t, "", gin.H{"content": "x"})
	assert.Regexp(t, `^log_\d+\.txt$`, created.Filename)

	w := s.request(t, http.MethodGet, "/logs/f/"+created.Filename, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPrivateLogAccessControl(t *testing.T) {
	s := setupSuite(t)

	s.register(t, "alice", "pw1")
	aliceToken := s.login(t, "alice", "pw1")
	s.register(t, "bob", "pw2")
	bobToken := s.login(t, "bob", "pw2")

	s.createLog(t, aliceToken, gin.H{"content": "hello", "filename": "secret.txt", "private": true})

	// Owner reads it.
	w := s.request(t, http.MethodGet, "/logs/f/secret.txt", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())

	// No token: 401, identity missing.
	w = s.request(t, http.MethodGet, "/logs/f/secret.txt", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeResponse(t, w).Error.Code)

	// Bob's token: 403, identity present but not the owner.
	w = s.request(t, http.MethodGet, "/logs/f/secret.txt", bobToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", decodeResponse(t, w).Error.Code)
}

func TestCreateWithTraversalFilename(t *testing.T) {
	s := setupSuite(t)

	for _, name := range []string{`..\evil`, "../evil", "/etc/passwd"} {
		w := s.request(t, http.MethodPost, "/logs", "", gin.H{"content": "x", "filename": name})
		require.Equal(t, http.StatusBadRequest, w.Code, "filename %q", name)
		assert.Equal(t, "INVALID_FILENAME", decodeResponse(t, w).Error.Code)
	}
}

func TestCreatePrivateWithoutToken(t *testing.T) {
	s := setupSuite(t)

	w := s.request(t, http.MethodPost, "/logs", "", gin.H{"content": "x", "private": true})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDuplicateRegistrationKeepsOriginalCredential(t *testing.T) {
	s := setupSuite(t)

	s.register(t, "alice", "pw1")

	w := s.request(t, http.MethodPost, "/register", "", gin.H{"username": "alice", "password": "pw2"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "USERNAME_EXISTS", decodeResponse(t, w).Error.Code)

	// The original password still logs in; the rejected one does not.
	s.login(t, "alice", "pw1")
	w = s.request(t, http.MethodPost, "/login", "", gin.H{"username": "alice", "password": "pw2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListPublicExcludesPrivate(t *testing.T) {
	s := setupSuite(t)

	s.register(t, "alice", "pw1")
	aliceToken := s.login(t, "alice", "pw1")

	s.createLog(t, "", gin.H{"content": "a", "filename": "pub.txt"})
	s.createLog(t, aliceToken, gin.H{"content": "b", "filename": "priv.txt", "private": true})

	w := s.request(t, http.MethodGet, "/logs/public", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var records []domain.Log
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "pub.txt", records[0].Filename)
}

func TestListMineIncludesPrivateAndPublicOwned(t *testing.T) {
	s := setupSuite(t)

	s.register(t, "alice", "pw1")
	aliceToken := s.login(t, "alice", "pw1")

	// Public posts stay anonymous even when authenticated, so only the
	// private record is "mine".
	s.createLog(t, aliceToken, gin.H{"content": "a", "filename": "pub.txt"})
	s.createLog(t, aliceToken, gin.H{"content": "b", "filename": "priv.txt", "private": true})

	w := s.request(t, http.MethodGet, "/logs", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var records []domain.Log
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "priv.txt", records[0].Filename)

	// Without a token the listing is rejected outright, with the same error
	// envelope the handlers use.
	w = s.request(t, http.MethodGet, "/logs", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	rejected := decodeResponse(t, w)
	assert.False(t, rejected.Success)
	assert.Equal(t, "UNAUTHORIZED", rejected.Error.Code)

	// Same for a token that resolves to nobody.
	w = s.request(t, http.MethodGet, "/logs", "bogus-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeResponse(t, w).Error.Code)
}

func TestGetByIDOwnerOnly(t *testing.T) {
	s := setupSuite(t)

	s.register(t, "alice", "pw1")
	aliceToken := s.login(t, "alice", "pw1")
	s.register(t, "bob", "pw2")
	bobToken := s.login(t, "bob", "pw2")

	created := s.createLog(t, aliceToken, gin.H{"content": "mine", "filename": "mine.txt", "private": true})

	w := s.request(t, http.MethodGet, fmt.Sprintf("/logs/%d", created.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rec domain.Log
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &rec))
	assert.Equal(t, "mine", rec.Content)

	// Bob sees NotFound, not Forbidden: id-scoped lookups conflate the two.
	w = s.request(t, http.MethodGet, fmt.Sprintf("/logs/%d", created.ID), bobToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestDeleteByID(t *testing.T) {
	s := setupSuite(t)

	s.register(t, "alice", "pw1")
	aliceToken := s.login(t, "alice", "pw1")

	created := s.createLog(t, aliceToken, gin.H{"content": "x", "filename": "gone.txt", "private": true})

	w := s.request(t, http.MethodDelete, fmt.Sprintf("/logs/%d", created.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Blob went away with the record.
	_, err := os.Stat(filepath.Join(s.blobsDir, "gone.txt"))
	assert.True(t, os.IsNotExist(err))

	// Second delete observes NotFound.
	w = s.request(t, http.MethodDelete, fmt.Sprintf("/logs/%d", created.ID), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAllMineIsIdempotent(t *testing.T) {
	s := setupSuite(t)

	s.register(t, "alice", "pw1")
	aliceToken := s.login(t, "alice", "pw1")

	s.createLog(t, aliceToken, gin.H{"content": "a", "filename": "one.txt", "private": true})
	s.createLog(t, aliceToken, gin.H{"content": "b", "filename": "two.txt", "private": true})

	w := s.request(t, http.MethodDelete, "/logs", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result logs.CountResponse
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &result))
	assert.Equal(t, int64(2), result.Removed)

	// Second run removes nothing and leaves no owned records.
	w = s.request(t, http.MethodDelete, "/logs", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &result))
	assert.Zero(t, result.Removed)

	w = s.request(t, http.MethodGet, "/logs", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []domain.Log
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &records))
	assert.Empty(t, records)
}

func TestSweepExpired(t *testing.T) {
	s := setupSuite(t)

	// Plant a record whose deadline already passed; the HTTP layer only
	// accepts future expiries.
	past := time.Now().UTC().Add(-time.Minute)
	rec := &domain.Log{Filename: "stale.txt", Content: "x", ExpireAt: &past}
	require.NoError(t, s.logRepo.Create(context.Background(), rec))
	require.NoError(t, s.blobs.Write("stale.txt", []byte("x")))

	s.createLog(t, "", gin.H{"content": "y", "filename": "fresh.txt", "expire_minutes": 60})

	w := s.request(t, http.MethodPost, "/maintenance/sweep", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result logs.CountResponse
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &result))
	assert.Equal(t, int64(1), result.Removed)

	// Swept record reads as NotFound, blob removed too.
	w = s.request(t, http.MethodGet, "/logs/f/stale.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, err := os.Stat(filepath.Join(s.blobsDir, "stale.txt"))
	assert.True(t, os.IsNotExist(err))

	// The unexpired record is untouched.
	w = s.request(t, http.MethodGet, "/logs/f/fresh.txt", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReconcileMissingBlobs(t *testing.T) {
	s := setupSuite(t)

	s.createLog(t, "", gin.H{"content": "kept", "filename": "kept.txt"})
	s.createLog(t, "", gin.H{"content": "lost", "filename": "lost.txt"})

	// Simulate out-of-band blob loss.
	require.NoError(t, os.Remove(filepath.Join(s.blobsDir, "lost.txt")))

	w := s.request(t, http.MethodPost, "/maintenance/reconcile", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result logs.CountResponse
	require.NoError(t, json.Unmarshal(decodeResponse(t, w).Data, &result))
	assert.Equal(t, int64(1), result.Removed)

	// Orphaned metadata is gone; intact record untouched.
	w = s.request(t, http.MethodGet, "/logs/f/lost.txt", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.request(t, http.MethodGet, "/logs/f/kept.txt", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kept", w.Body.String())
}

func TestInvalidTokenOnOptionalRouteStaysAnonymous(t *testing.T) {
	s := setupSuite(t)

	s.createLog(t, "", gin.H{"content": "open", "filename": "open.txt"})

	// Garbage token on a public read is ignored rather than rejected.
	w := s.request(t, http.MethodGet, "/logs/f/open.txt", "not-a-real-token", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "open", w.Body.String())
}
