package handlers

import (
	"time"

	"care4-server/internal/config"
	"care4-server/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandler handles admin sign-in.
type AdminHandler struct {
	Cfg *config.Config
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg *config.Config) *AdminHandler {
	return &AdminHandler{Cfg: cfg}
}

// AdminSessionRequest represents the request body for admin sign-in.
type AdminSessionRequest struct {
	Passkey string `json:"passkey" binding:"required,len=6,numeric"`
}

// AdminSessionResponse represents the response body for successful sign-in.
type AdminSessionResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// CreateSession exchanges the admin passkey for an access token.
func (h *AdminHandler) CreateSession(c *gin.Context) {
	var req AdminSessionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if h.Cfg.AdminPasskeyHash == "" {
		utils.Forbidden(c, "Admin access is not configured")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.Cfg.AdminPasskeyHash), []byte(req.Passkey)); err != nil {
		utils.Unauthorized(c, "Invalid passkey. Please try again.")
		return
	}

	token, expiresAt, err := utils.GenerateAdminToken(h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate token: "+err.Error())
		return
	}

	utils.Success(c, "Admin session created", AdminSessionResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}
