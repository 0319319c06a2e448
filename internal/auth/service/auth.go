package service

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/minidrive-backend/internal/auth/biz"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/logger"
	"github.com/lk2023060901/minidrive-backend/internal/pkg/response"
	"go.uber.org/zap"
)

// AuthService exposes signup and login over HTTP
type AuthService struct {
	authUC *biz.AuthUseCase
	logger *logger.Logger
}

func NewAuthService(authUC *biz.AuthUseCase, log *logger.Logger) *AuthService {
	return &AuthService{
		authUC: authUC,
		logger: log,
	}
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

// Signup handles POST /auth/signup
func (s *AuthService) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := s.authUC.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if err == biz.ErrEmailAlreadyExists {
			response.Error(c, 409, "email already exists")
			return
		}
		s.logger.Error("failed to sign up user", zap.Error(err), zap.String("email", req.Email))
		response.InternalError(c, "signup failed")
		return
	}

	response.Created(c, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// Login handles POST /auth/login
func (s *AuthService) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := s.authUC.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if err == biz.ErrInvalidCredentials {
			s.logger.Warn("login failed",
				zap.String("email", req.Email),
				zap.String("ip", c.ClientIP()))
			response.Unauthorized(c, "invalid email or password")
			return
		}
		s.logger.Error("login error", zap.Error(err))
		response.InternalError(c, "login failed")
		return
	}

	resp := LoginResponse{Token: result.AccessToken}
	resp.User.ID = result.UserID
	resp.User.Name = result.Name
	resp.User.Email = result.Email
	resp.User.Role = result.Role

	response.Success(c, resp)
}

// RegisterRoutes mounts the auth endpoints
func (s *AuthService) RegisterRoutes(r *gin.RouterGroup, loginLimiter, signupLimiter gin.HandlerFunc) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", signupLimiter, s.Signup)
		authGroup.POST("/login", loginLimiter, s.Login)
	}
}
