package export

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fablepress/core/internal/pkg/response"
)

// Handler serves the snapshot download.
type Handler struct {
	exporter *Exporter
	name     string
}

// NewHandler creates the export handler. An empty name falls back to
// Filename.
func NewHandler(exporter *Exporter, name string) *Handler {
	if name == "" {
		name = Filename
	}
	return &Handler{exporter: exporter, name: name}
}

// RegisterRoutes mounts the export routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.download)
}

func (h *Handler) download(c *gin.Context) {
	data, err := Marshal(h.exporter.store.Dump())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename=`+h.name)
	c.Data(http.StatusOK, "application/json", data)
}
