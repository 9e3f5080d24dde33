package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/services"
)

type ProjectHandler struct {
	service services.ProjectService
}

func NewProjectHandler(service services.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (h *ProjectHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, services.ErrProjectNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	log.Printf("[project][%s] err=%v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "project " + op + " failed"})
}

// @Summary   Create project
// @Tags      Projects
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body  body      models.ProjectInput  true  "Project"
// @Success   201   {object}  models.Project
// @Router    /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, _ := currentUserID(c)
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.service.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary   List projects
// @Tags      Projects
// @Security  BearerAuth
// @Produce   json
// @Success   200  {array}  models.Project
// @Router    /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	userID, _ := currentUserID(c)
	limit := queryInt(c, "limit", 50)
	offset := (queryInt(c, "page", 1) - 1) * limit
	ps, err := h.service.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

// @Summary   Get project
// @Tags      Projects
// @Security  BearerAuth
// @Produce   json
// @Param     id   path      string  true  "Project id"
// @Success   200  {object}  models.Project
// @Failure   404  {object}  map[string]string
// @Router    /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	userID, _ := currentUserID(c)
	p, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary   Update project
// @Tags      Projects
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id    path      string               true  "Project id"
// @Param     body  body      models.ProjectInput  true  "Project"
// @Success   200   {object}  models.Project
// @Router    /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	userID, _ := currentUserID(c)
	var in models.ProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), in)
	if err != nil {
		h.fail(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary   Delete project
// @Tags      Projects
// @Security  BearerAuth
// @Param     id  path  string  true  "Project id"
// @Success   204
// @Router    /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, _ := currentUserID(c)
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.fail(c, "delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary   Project deployments
// @Tags      Projects
// @Security  BearerAuth
// @Produce   json
// @Param     id   path     string  true  "Project id"
// @Success   200  {array}  models.Deployment
// @Router    /projects/{id}/deployments [get]
func (h *ProjectHandler) Deployments(c *gin.Context) {
	userID, _ := currentUserID(c)
	ds, err := h.service.Deployments(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.fail(c, "deployments", err)
		return
	}
	c.JSON(http.StatusOK, ds)
}
