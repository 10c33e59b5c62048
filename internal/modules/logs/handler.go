package logs

import (
	"errors"
	"net/http"
	"strconv"

	"savelog/internal/blobstore"
	"savelog/internal/middleware"
	"savelog/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages the HTTP surface of the log store. Routes split in three:
// optionally-authenticated (create, read by filename), owner-only (reads and
// deletes by id), and unauthenticated maintenance.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes wires the routes that work without any identity.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/logs/public", h.ListPublic)
	r.POST("/maintenance/sweep", h.SweepExpired)
	r.POST("/maintenance/reconcile", h.ReconcileMissingBlobs)
}

// RegisterOptionalAuthRoutes wires the routes where a token changes the
// outcome but is not required up front.
func (h *Handler) RegisterOptionalAuthRoutes(r *gin.RouterGroup) {
	r.POST("/logs", h.Create)
	r.GET("/logs/f/:filename", h.GetByFilename)
}

// RegisterProtectedRoutes wires the owner-only routes.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/logs", h.ListMine)
	r.GET("/logs/:id", h.GetByID)
	r.DELETE("/logs/:id", h.Delete)
	r.DELETE("/logs", h.DeleteAllMine)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	identity := middleware.UserFromContext(c)
	result, err := h.service.Create(c.Request.Context(), CreateInput{
		Content:       *req.Content,
		Filename:      req.Filename,
		Private:       req.Private,
		ExpireMinutes: req.ExpireMinutes,
	}, identity)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required for private logs")
		case errors.Is(err, blobstore.ErrInvalidKey):
			response.Error(c, http.StatusBadRequest, "INVALID_FILENAME", "Filename contains invalid characters")
		case errors.Is(err, ErrStorageWrite):
			response.Error(c, http.StatusInternalServerError, "STORAGE_WRITE_FAILED", "Failed to store log file")
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create log")
		}
		return
	}

	expireAt := "none"
	if result.ExpireAt != nil {
		expireAt = result.ExpireAt.Format("2006-01-02T15:04:05Z07:00")
	}
	response.Success(c, http.StatusCreated, CreateLogResponse{
		ID:       result.Log.ID,
		Filename: result.Log.Filename,
		FileURL:  result.FileURL,
		ExpireAt: expireAt,
	})
}

// GetByFilename serves the raw blob bytes, not the JSON envelope.
func (h *Handler) GetByFilename(c *gin.Context) {
	identity := middleware.UserFromContext(c)
	content, err := h.service.GetByFilename(c.Request.Context(), c.Param("filename"), identity)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
		default:
			response.Error(c, http.StatusInternalServerError, "READ_FAILED", "Failed to read log")
		}
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", content)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid log ID")
		return
	}

	identity := middleware.UserFromContext(c)
	rec, err := h.service.GetByID(c.Request.Context(), id, identity)
	if err != nil {
		h.writeOwnerError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rec)
}

func (h *Handler) ListPublic(c *gin.Context) {
	recs, err := h.service.ListPublic(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list public logs")
		return
	}
	response.Success(c, http.StatusOK, recs)
}

func (h *Handler) ListMine(c *gin.Context) {
	identity := middleware.UserFromContext(c)
	recs, err := h.service.ListOwned(c.Request.Context(), identity)
	if err != nil {
		h.writeOwnerError(c, err)
		return
	}
	response.Success(c, http.StatusOK, recs)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid log ID")
		return
	}

	identity := middleware.UserFromContext(c)
	if err := h.service.Delete(c.Request.Context(), id, identity); err != nil {
		h.writeOwnerError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) DeleteAllMine(c *gin.Context) {
	identity := middleware.UserFromContext(c)
	count, err := h.service.DeleteAllOwned(c.Request.Context(), identity)
	if err != nil {
		h.writeOwnerError(c, err)
		return
	}
	response.Success(c, http.StatusOK, CountResponse{Removed: count})
}

func (h *Handler) SweepExpired(c *gin.Context) {
	count, err := h.service.SweepExpired(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "SWEEP_FAILED", "Failed to sweep expired logs")
		return
	}
	response.Success(c, http.StatusOK, CountResponse{Removed: count})
}

func (h *Handler) ReconcileMissingBlobs(c *gin.Context) {
	count, err := h.service.ReconcileMissingBlobs(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "RECONCILE_FAILED", "Failed to reconcile missing files")
		return
	}
	response.Success(c, http.StatusOK, CountResponse{Removed: count})
}

// writeOwnerError maps the service errors of the owner-scoped operations.
// Ownership mismatch surfaces as NOT_FOUND, same as true absence.
func (h *Handler) writeOwnerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Log not found")
	case errors.Is(err, ErrStorageWrite):
		response.Error(c, http.StatusInternalServerError, "STORAGE_WRITE_FAILED", "Failed to remove log file")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
