package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/services"
)

// VerifyHandler serves email verification and password reset.
type VerifyHandler struct {
	verification services.VerificationService
	resets       services.PasswordResetService
}

func NewVerifyHandler(verification services.VerificationService, resets services.PasswordResetService) *VerifyHandler {
	return &VerifyHandler{verification: verification, resets: resets}
}

func tokenError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, services.ErrTokenUsed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "token already used"})
	case errors.Is(err, services.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired token"})
	case errors.Is(err, services.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[verify][%s] failed: err=%v", op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}

// @Summary  Confirm email
// @Tags     Auth
// @Accept   json
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  400  {object}  map[string]string
// @Router   /auth/verify-email [post]
func (h *VerifyHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.verification.Verify(c.Request.Context(), req.Token); err != nil {
		tokenError(c, "verification", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// @Summary   Resend verification email
// @Tags      Auth
// @Security  BearerAuth
// @Success   200  {object}  map[string]string
// @Failure   409  {object}  map[string]string
// @Router    /auth/resend-verification [post]
func (h *VerifyHandler) ResendVerification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	err := h.verification.Resend(c.Request.Context(), userID)
	switch {
	case errors.Is(err, services.ErrAlreadyVerified):
		c.JSON(http.StatusConflict, gin.H{"error": "email already verified"})
		return
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	case err != nil:
		log.Printf("[verify][resend] userID=%s: err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

// @Summary  Request a password reset
// @Tags     Auth
// @Accept   json
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /auth/forgot-password [post]
func (h *VerifyHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.resets.RequestReset(c.Request.Context(), req.Email); err != nil {
		log.Printf("[verify][forgot-password] err=%v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset link has been sent"})
}

// @Summary  Reset password with a token
// @Tags     Auth
// @Accept   json
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  400  {object}  map[string]string
// @Router   /auth/reset-password [post]
func (h *VerifyHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.resets.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		tokenError(c, "password reset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
