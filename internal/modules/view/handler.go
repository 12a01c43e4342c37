package view

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fablepress/core/internal/pkg/response"
)

// Handler serves page payloads through the dispatch table.
type Handler struct {
	svc      *Service
	dispatch map[PageKind]gin.HandlerFunc
}

// NewHandler creates the view handler and its dispatch table.
func NewHandler(svc *Service) *Handler {
	h := &Handler{svc: svc}
	h.dispatch = map[PageKind]gin.HandlerFunc{
		PageHome:       h.home,
		PageStory:      h.story,
		PageCode:       h.code,
		PageCollection: h.collection,
		PageTag:        h.tag,
		PageSearch:     h.search,
		PageSettings:   h.settings,
		PageProfile:    h.profile,
	}
	return h
}

// RegisterPages mounts the page routes on the root engine. Every page
// route funnels through the same resolver so exactly one renderer runs.
func (h *Handler) RegisterPages(e *gin.Engine) {
	e.GET("/", h.page)
	for _, p := range pagePrefixes {
		e.GET(p.prefix, h.page)
	}
}

// RegisterRoutes mounts the preview endpoint on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/code-projects/:id/preview", h.preview)
}

func (h *Handler) page(c *gin.Context) {
	kind := ResolveKind(c.Request.URL.Path)
	h.dispatch[kind](c)
}

func (h *Handler) home(c *gin.Context) {
	response.OK(c, h.svc.Home())
}

func (h *Handler) story(c *gin.Context) {
	page, ok := h.svc.Story(queryID(c))
	if !ok {
		response.OK(c, gin.H{})
		return
	}
	response.OK(c, page)
}

func (h *Handler) code(c *gin.Context) {
	page, ok := h.svc.Code(queryID(c))
	if !ok {
		response.OK(c, gin.H{})
		return
	}
	response.OK(c, page)
}

func (h *Handler) collection(c *gin.Context) {
	page, ok := h.svc.Collection(queryID(c))
	if !ok {
		response.OK(c, gin.H{})
		return
	}
	response.OK(c, page)
}

func (h *Handler) tag(c *gin.Context) {
	response.OK(c, h.svc.Tag(c.Query("tag")))
}

func (h *Handler) search(c *gin.Context) {
	response.OK(c, h.svc.Search(c.Query("query")))
}

func (h *Handler) settings(c *gin.Context) {
	page, ok := h.svc.Settings(c.Request.Context())
	if !ok {
		response.OK(c, gin.H{})
		return
	}
	response.OK(c, page)
}

func (h *Handler) profile(c *gin.Context) {
	page, ok := h.svc.Profile(c.Request.Context(), c.Query("user"))
	if !ok {
		response.OK(c, gin.H{})
		return
	}
	response.OK(c, page)
}

func (h *Handler) preview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid id")
		return
	}
	doc, ok := h.svc.Preview(id)
	if !ok {
		response.NotFound(c)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}

func queryID(c *gin.Context) int {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		return 0
	}
	return id
}
