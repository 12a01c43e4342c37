package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fablepress/core/internal/pkg/response"
)

// Handler exposes the admin HTTP surface.
type Handler struct {
	svc *Service
}

// NewHandler creates the admin handler.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the admin routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin", h.overview)
	rg.POST("/admin/moderation/:seq/approve", h.approve)
	rg.POST("/admin/moderation/:seq/remove", h.remove)
	rg.POST("/admin/users/:username/ban", h.ban)
}

func (h *Handler) overview(c *gin.Context) {
	response.OK(c, gin.H{
		"queue": h.svc.Queue(),
		"users": h.svc.Users(),
	})
}

func (h *Handler) approve(c *gin.Context) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		response.BadRequest(c, "invalid seq")
		return
	}
	if !h.svc.Approve(c.Request.Context(), seq) {
		response.NotFoundMsg(c, "no such moderation entry")
		return
	}
	response.OK(c, gin.H{"approved": true})
}

func (h *Handler) remove(c *gin.Context) {
	seq, err := strconv.Atoi(c.Param("seq"))
	if err != nil {
		response.BadRequest(c, "invalid seq")
		return
	}
	if !h.svc.Remove(c.Request.Context(), seq) {
		response.NotFoundMsg(c, "no such moderation entry")
		return
	}
	response.OK(c, gin.H{"removed": true})
}

func (h *Handler) ban(c *gin.Context) {
	username := c.Param("username")
	if !h.svc.Ban(c.Request.Context(), username) {
		response.NotFoundMsg(c, "no such user")
		return
	}
	response.OK(c, gin.H{"banned": true})
}
