package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/services"
)

type GenerationHandler struct {
	service services.GenerationService
}

func NewGenerationHandler(service services.GenerationService) *GenerationHandler {
	return &GenerationHandler{service: service}
}

// @Summary      Generate code from a prompt
// @Description  Checks quota, calls the code providers, stores every file and records the outcome
// @Tags         Generation
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      models.GenerateRequest  true  "Prompt"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /generation/generate [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := h.service.Generate(c.Request.Context(), services.GenerateInput{
		UserID:    userID,
		ProjectID: req.ProjectID,
		Prompt:    req.Prompt,
		Type:      req.Type,
		Framework: req.Framework,
	})
	switch {
	case errors.Is(err, services.ErrPromptTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, services.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Generation limit reached. Upgrade your plan to continue."})
		return
	case errors.Is(err, services.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	case err != nil:
		log.WithError(err).WithField("user_id", userID).Error("[generation][handler] generate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"generationId": out.Request.ID,
		"code":         out.Code(),
		"files":        out.Request.Files,
		"message":      "Code generated successfully",
	})
}

// @Summary   Generation history
// @Tags      Generation
// @Security  BearerAuth
// @Produce   json
// @Param     page   query  int  false  "Page, from 1"
// @Param     limit  query  int  false  "Page size, max 50"
// @Success   200  {object}  map[string]interface{}
// @Router    /generation/history [get]
func (h *GenerationHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	page, err := h.service.History(c.Request.Context(), userID,
		queryInt(c, "page", 1), queryInt(c, "limit", services.DefaultHistoryLimit))
	if err != nil {
		log.WithError(err).Error("[generation][handler] history failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"generations": page.Generations,
		"pagination": gin.H{
			"page":       page.Page,
			"limit":      page.Limit,
			"total":      page.Total,
			"totalPages": page.TotalPages(),
		},
	})
}

// @Summary   Generation detail
// @Tags      Generation
// @Security  BearerAuth
// @Produce   json
// @Param     id   path      string  true  "Generation id"
// @Success   200  {object}  models.GenerationRequest
// @Failure   404  {object}  map[string]string
// @Router    /generation/{id} [get]
func (h *GenerationHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	g, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Generation not found"})
		return
	}
	if err != nil {
		log.WithError(err).Error("[generation][handler] get failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load generation"})
		return
	}
	c.JSON(http.StatusOK, g)
}
