package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fablepress/core/internal/pkg/response"
)

// Handler exposes the identity HTTP surface.
type Handler struct {
	binding *Binding
	log     *zap.Logger
}

// NewHandler creates the identity handler.
func NewHandler(binding *Binding, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{binding: binding, log: log}
}

// RegisterCallback mounts the OAuth callback on the root engine. The
// callback is terminal: no other routing occurs on its path.
func (h *Handler) RegisterCallback(e *gin.Engine) {
	e.GET("/auth/github/callback", h.callback)
}

// RegisterRoutes mounts the identity API routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/identity", h.current)
	rg.POST("/identity/signout", h.signOut)
}

func (h *Handler) callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.failurePage(c, "missing code parameter")
		return
	}

	if _, err := h.binding.Exchange(c.Request.Context(), code); err != nil {
		h.log.Warn("oauth exchange failed", zap.Error(err))
		h.failurePage(c, "sign-in failed, please try again")
		return
	}

	c.Redirect(http.StatusFound, "/account/")
}

// failurePage replaces the response with a plain error page. There is no
// retry and no redirect.
func (h *Handler) failurePage(c *gin.Context, message string) {
	c.Data(http.StatusBadGateway, "text/html; charset=utf-8",
		[]byte("<!DOCTYPE html><html><body><h1>Sign-in error</h1><p>"+message+"</p></body></html>"))
	c.Abort()
}

func (h *Handler) current(c *gin.Context) {
	ctx := c.Request.Context()
	response.OK(c, gin.H{
		"username": h.binding.Current(ctx),
		"signedIn": h.binding.SignedIn(ctx),
	})
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.binding.SignOut(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
