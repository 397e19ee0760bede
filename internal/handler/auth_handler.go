package handler

import (
	"errors"
	"net/http"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/gateway"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"
	"github.com/itaybe6/Events-Mannagement-sub003/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	auth  gateway.AuthGateway
	files gateway.FileGateway
}

// NewAuthHandler wires the auth endpoints. files may be nil when no file
// storage is configured; avatar upload then returns 503.
func NewAuthHandler(auth gateway.AuthGateway, files gateway.FileGateway) *AuthHandler {
	return &AuthHandler{auth: auth, files: files}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine) {
	public := r.Group("/api/v1/auth")
	{
		public.POST("signup", h.SignUp)
		public.POST("signin", h.SignIn)
	}

	private := r.Group("/api/v1/auth", AuthRequired(h.auth))
	{
		private.POST("logout", h.Logout)
		private.GET("me", h.Me)
		private.PUT("me", h.UpdateMe)
		private.POST("me/avatar", h.UploadAvatar)
	}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateMeRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	session, err := h.auth.SignUp(c, gateway.SignUpParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		h.handleError(c, err, "SignUp")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": session.Token, "user": session.Profile})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	session, err := h.auth.SignIn(c, req.Email, req.Password)
	if err != nil {
		h.handleError(c, err, "SignIn")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": session.Token, "user": session.Profile})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.SignOut(c, currentToken(c)); err != nil {
		// The client drops its token either way; a failed remote
		// revocation is not its problem.
		logger.WithComponent("handler").Warn("remote sign out failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req UpdateMeRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.FullName == nil && req.Phone == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one of full_name or phone is required"})
		return
	}

	profile, err := h.auth.UpdateProfile(c, currentUser(c).ID, model.UpdateProfileParams{
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		h.handleError(c, err, "UpdateMe")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	if h.files == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing avatar file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
		return
	}
	defer file.Close()

	url, err := h.files.Upload(c, file, "avatars")
	if err != nil {
		h.handleError(c, err, "UploadAvatar")
		return
	}

	profile, err := h.auth.UpdateProfile(c, currentUser(c).ID, model.UpdateProfileParams{
		AvatarURL: &url,
	})
	if err != nil {
		h.handleError(c, err, "UploadAvatar")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *AuthHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrUserExists):
		log.Warn("User exists")
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		log.Warn("Invalid credentials")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
