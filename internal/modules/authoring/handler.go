package authoring

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fablepress/core/internal/pkg/response"
)

// Handler exposes the submit endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates the authoring handler.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the authoring routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/stories", h.submitStory)
	rg.POST("/code-projects", h.submitCode)
	rg.POST("/collections", h.submitCollection)
	rg.POST("/settings", h.submitSettings)
}

func (h *Handler) submitStory(c *gin.Context) {
	var in StoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	story, err := h.svc.SubmitStory(c.Request.Context(), in)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{
		"story":    story,
		"location": "/story/?id=" + strconv.Itoa(story.ID),
	})
}

func (h *Handler) submitCode(c *gin.Context) {
	var in CodeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.svc.SubmitCode(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, ErrNoFiles) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{
		"codeProject": project,
		"location":    "/code/?id=" + strconv.Itoa(project.ID),
	})
}

func (h *Handler) submitCollection(c *gin.Context) {
	var in CollectionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	col, err := h.svc.SubmitCollection(c.Request.Context(), in)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{
		"collection": col,
		"location":   "/collection/?id=" + strconv.Itoa(col.ID),
	})
}

func (h *Handler) submitSettings(c *gin.Context) {
	var in SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.SubmitSettings(c.Request.Context(), in); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"saved": true})
}
