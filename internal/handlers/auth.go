package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warbler-app/warbler/internal/middleware"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/internal/session"
	"github.com/warbler-app/warbler/pkg/logger"
)

type AuthHandler struct {
	authService *services.AuthService
	sessions    *session.Manager
	logger      *logger.Logger
}

func NewAuthHandler(authService *services.AuthService, sessions *session.Manager, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/signup", h.Signup)
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
}

// Signup creates the account and starts a session for it.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	token, err := h.startSession(c, user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User signed up successfully",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.authService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
			"code":  models.CodeUnauthorized,
		})
		return
	}

	token, err := h.startSession(c, user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Hello, " + user.Username + "!",
		"token":   token,
		"user":    user,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), middleware.GetToken(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "You have successfully logged out."})
}

func (h *AuthHandler) startSession(c *gin.Context, user *models.User) (string, error) {
	token, err := h.sessions.Login(c.Request.Context(), user.ID)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	c.SetCookie(middleware.SessionCookie, token, 0, "/", "", false, true)
	return token, nil
}
