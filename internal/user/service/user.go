package service

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/logger"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/response"
	"github.com/lk2023060901/minidrive-backend/internal/user/biz"
	"go.uber.org/zap"
)

// UserService exposes the admin account-management endpoints
type UserService struct {
	uc     *biz.UserUseCase
	logger *logger.Logger
}

func NewUserService(uc *biz.UserUseCase, log *logger.Logger) *UserService {
	return &UserService{
		uc:     uc,
		logger: log,
	}
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// ListUsers handles GET /users/admin/all
func (s *UserService) ListUsers(c *gin.Context) {
	users, err := s.uc.ListUsers(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		response.InternalError(c, "failed to list users")
		return
	}

	responses := make([]*UserResponse, len(users))
	for i, user := range users {
		responses[i] = s.toResponse(user)
	}

	response.Success(c, gin.H{"users": responses})
}

// DeleteUser handles DELETE /users/admin/:id
func (s *UserService) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := s.uc.DeleteUser(c.Request.Context(), id); err != nil {
		if err == biz.ErrUserNotFound {
			response.NotFound(c, "user not found")
			return
		}
		s.logger.Error("failed to delete user", zap.Error(err), zap.String("user_id", id))
		response.InternalError(c, "failed to delete user")
		return
	}

	response.SuccessWithMessage(c, "user deleted", nil)
}

func (s *UserService) toResponse(user *biz.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// RegisterRoutes mounts the user endpoints. adminOnly must enforce the
// admin role; it runs after the group's auth middleware.
func (s *UserService) RegisterRoutes(r *gin.RouterGroup, adminOnly gin.HandlerFunc) {
	users := r.Group("/users")
	{
		admin := users.Group("/admin", adminOnly)
		{
			admin.GET("/all", s.ListUsers)
			admin.DELETE("/:id", s.DeleteUser)
		}
	}
}
