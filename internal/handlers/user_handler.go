package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// @Summary   Current account
// @Tags      User
// @Security  BearerAuth
// @Produce   json
// @Success   200  {object}  models.User
// @Router    /user/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		log.Printf("[user][me] userID=%s: err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary   Generation quota
// @Tags      User
// @Security  BearerAuth
// @Produce   json
// @Success   200  {object}  map[string]interface{}
// @Router    /user/usage [get]
func (h *UserHandler) Usage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	u, err := h.service.GetUsage(c.Request.Context(), userID)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		log.Printf("[user][usage] userID=%s: err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"usage":     u.Count,
		"limit":     u.Limit,
		"remaining": u.Remaining(),
		"tier":      u.Tier,
	})
}

// @Summary   Current subscription
// @Tags      User
// @Security  BearerAuth
// @Produce   json
// @Success   200  {object}  models.Subscription
// @Router    /user/subscription [get]
func (h *UserHandler) Subscription(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	sub, err := h.service.GetSubscription(c.Request.Context(), userID)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no subscription"})
		return
	}
	if err != nil {
		log.Printf("[user][subscription] userID=%s: err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load subscription"})
		return
	}
	c.JSON(http.StatusOK, sub)
}
