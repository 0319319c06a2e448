package service

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/minidrive-backend/internal/auth/middleware"
	"github.com/lk2023060901/minidrive-backend/internal/file/biz"
	apperrors "github.com/lk2023060901/minidrive-backend/internal/pkg/errors"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/logger"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// FileService exposes the file endpoints
type FileService struct {
	uc     *biz.FileUseCase
	logger *logger.Logger
}

func NewFileService(uc *biz.FileUseCase, log *logger.Logger) *FileService {
	return &FileService{
		uc:     uc,
		logger: log,
	}
}

type ShareEntryResponse struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

type FileResponse struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"display_name"`
	MediaType   string               `json:"media_type"`
	SizeBytes   int64                `json:"size_bytes"`
	OwnerID     string               `json:"owner_id"`
	OwnerEmail  string               `json:"owner_email,omitempty"`
	SharedWith  []ShareEntryResponse `json:"shared_with"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

type ShareRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

type UpdateContentRequest struct {
	Content *string `json:"content"`
}

// identity builds the requester identity from the auth middleware context
func identity(c *gin.Context) biz.Identity {
	userID, _ := middleware.GetUserID(c)
	email, _ := middleware.GetEmail(c)
	role, _ := middleware.GetRole(c)
	return biz.Identity{ID: userID, Email: email, Role: role}
}

// Upload handles POST /files/upload
func (s *FileService) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrFileNoContent)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrFileNoContent)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		s.logger.Error("failed to read upload", zap.Error(err))
		response.InternalError(c, "failed to read upload")
		return
	}

	mediaType := fileHeader.Header.Get("Content-Type")

	file, err := s.uc.Upload(c.Request.Context(), identity(c), fileHeader.Filename, mediaType, data)
	if err != nil {
		s.handleError(c, err, "upload failed")
		return
	}

	response.Created(c, s.toResponse(file))
}

// ListMine handles GET /files
func (s *FileService) ListMine(c *gin.Context) {
	files, err := s.uc.ListMine(c.Request.Context(), identity(c))
	if err != nil {
		s.handleError(c, err, "failed to list files")
		return
	}

	response.Success(c, gin.H{"files": s.toResponses(files)})
}

// ListShared handles GET /files/shared
func (s *FileService) ListShared(c *gin.Context) {
	files, err := s.uc.ListSharedWithMe(c.Request.Context(), identity(c))
	if err != nil {
		s.handleError(c, err, "failed to list shared files")
		return
	}

	response.Success(c, gin.H{"files": s.toResponses(files)})
}

// Download handles GET /files/:id/download
func (s *FileService) Download(c *gin.Context) {
	file, data, err := s.uc.Download(c.Request.Context(), identity(c), c.Param("id"))
	if err != nil {
		s.handleError(c, err, "download failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.DisplayName))
	c.Data(200, file.MediaType, data)
}

// Share handles POST /files/share/:id
func (s *FileService) Share(c *gin.Context) {
	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	file, err := s.uc.Share(c.Request.Context(), identity(c), c.Param("id"), req.Email, biz.Permission(req.Permission))
	if err != nil {
		s.handleError(c, err, "sharing failed")
		return
	}

	response.SuccessWithMessage(c, "file shared successfully", s.toResponse(file))
}

// UpdateContent handles PUT /files/:id/content. A multipart request
// replaces the stored blob; a JSON body with a content field rewrites the
// existing blob as text. Exactly one of the two must be present.
func (s *FileService) UpdateContent(c *gin.Context) {
	id := c.Param("id")
	requester := identity(c)

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrFileNoContent)
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			response.ErrorWithCode(c, apperrors.ErrFileNoContent)
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			s.logger.Error("failed to read upload", zap.Error(err))
			response.InternalError(c, "failed to read upload")
			return
		}

		file, err := s.uc.ReplaceBinary(c.Request.Context(), requester, id,
			fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
		if err != nil {
			s.handleError(c, err, "update failed")
			return
		}

		response.SuccessWithMessage(c, "file replaced successfully", s.toResponse(file))
		return
	}

	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Content == nil {
		response.ErrorWithCode(c, apperrors.ErrFileNoContent)
		return
	}

	file, err := s.uc.ReplaceText(c.Request.Context(), requester, id, *req.Content)
	if err != nil {
		s.handleError(c, err, "update failed")
		return
	}

	response.SuccessWithMessage(c, "file content updated successfully", s.toResponse(file))
}

// Delete handles DELETE /files/:id
func (s *FileService) Delete(c *gin.Context) {
	if err := s.uc.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
		s.handleError(c, err, "delete failed")
		return
	}

	response.SuccessWithMessage(c, "file deleted", nil)
}

// AdminListAll handles GET /files/admin/all
func (s *FileService) AdminListAll(c *gin.Context) {
	files, err := s.uc.AdminListAll(c.Request.Context())
	if err != nil {
		s.handleError(c, err, "failed to list files")
		return
	}

	response.Success(c, gin.H{"files": s.toResponses(files)})
}

// AdminListByUser handles GET /files/admin/users/:userId
func (s *FileService) AdminListByUser(c *gin.Context) {
	files, err := s.uc.AdminListByOwner(c.Request.Context(), c.Param("userId"))
	if err != nil {
		s.handleError(c, err, "failed to list files")
		return
	}

	response.Success(c, gin.H{"files": s.toResponses(files)})
}

// AdminDelete handles DELETE /files/admin/:id
func (s *FileService) AdminDelete(c *gin.Context) {
	if err := s.uc.AdminDelete(c.Request.Context(), c.Param("id")); err != nil {
		s.handleError(c, err, "delete failed")
		return
	}

	response.SuccessWithMessage(c, "file deleted", nil)
}

// handleError maps use-case errors onto the response envelope
func (s *FileService) handleError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, biz.ErrFileNotFound):
		response.ErrorWithCode(c, apperrors.ErrFileNotFound)
	case errors.Is(err, biz.ErrPermissionDenied):
		response.ErrorWithCode(c, apperrors.ErrFilePermissionDenied)
	case errors.Is(err, biz.ErrNoContent):
		response.ErrorWithCode(c, apperrors.ErrFileNoContent)
	case errors.Is(err, biz.ErrEmailRequired):
		response.ErrorWithCode(c, apperrors.ErrShareEmailRequired)
	case errors.Is(err, biz.ErrInvalidPermission):
		response.ErrorWithCode(c, apperrors.ErrShareBadPermission)
	case errors.Is(err, biz.ErrFileTooLarge):
		response.ErrorWithCode(c, apperrors.ErrFileTooLarge)
	default:
		s.logger.Error(logMsg, zap.Error(err), zap.String("path", c.Request.URL.Path))
		response.InternalError(c, logMsg)
	}
}

func (s *FileService) toResponses(files []*biz.File) []*FileResponse {
	responses := make([]*FileResponse, len(files))
	for i, file := range files {
		responses[i] = s.toResponse(file)
	}
	return responses
}

func (s *FileService) toResponse(file *biz.File) *FileResponse {
	shares := make([]ShareEntryResponse, len(file.Shares))
	for i, share := range file.Shares {
		shares[i] = ShareEntryResponse{
			Email:      share.Email,
			Permission: string(share.Permission),
		}
	}

	return &FileResponse{
		ID:          file.ID,
		DisplayName: file.DisplayName,
		MediaType:   file.MediaType,
		SizeBytes:   file.SizeBytes,
		OwnerID:     file.OwnerID,
		OwnerEmail:  file.OwnerEmail,
		SharedWith:  shares,
		CreatedAt:   file.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   file.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// RegisterRoutes mounts the file endpoints. adminOnly enforces the admin
// role on the admin subtree.
func (s *FileService) RegisterRoutes(r *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	files := r.Group("/files")
	{
		admin := files.Group("/admin", adminOnly)
		{
			admin.GET("/all", s.AdminListAll)
			admin.GET("/users/:userId", s.AdminListByUser)
			admin.DELETE("/:id", s.AdminDelete)
		}

		files.POST("/upload", s.Upload)
		files.GET("", s.ListMine)
		files.GET("/shared", s.ListShared)
		files.GET("/:id/download", s.Download)
		files.POST("/share/:id", s.Share)
		files.PUT("/:id/content", s.UpdateContent)
		files.DELETE("/:id", s.Delete)
	}
}
