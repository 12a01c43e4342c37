// Package draft persists unsubmitted form state in the durable key-value
// store so an interrupted session can resume. Each kind owns one slot; a
// save replaces the slot wholesale.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fablepress/core/internal/modules/assets"
	"github.com/fablepress/core/internal/pkg/kv"
	"github.com/fablepress/core/internal/pkg/response"
)

// Service reads and writes draft slots.
type Service struct {
	kv  *kv.Store
	log *zap.Logger
}

// NewService creates the draft service.
func NewService(store *kv.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{kv: store, log: log}
}

// Save serializes the draft and replaces the slot.
func (s *Service) Save(ctx context.Context, kind Kind, fields interface{}) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("draft encode: %w", err)
	}
	return s.kv.Set(ctx, kind.Key(), string(raw))
}

// Load fills into with the stored draft. Returns false when the slot is
// empty.
func (s *Service) Load(ctx context.Context, kind Kind, into interface{}) (bool, error) {
	raw, err := s.kv.Get(ctx, kind.Key())
	if err != nil {
		return false, err
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		return false, fmt.Errorf("draft decode: %w", err)
	}
	return true, nil
}

// Clear empties the slot.
func (s *Service) Clear(ctx context.Context, kind Kind) error {
	return s.kv.Del(ctx, kind.Key())
}

// LoadStory returns the story draft, normalized, empty if unset.
func (s *Service) LoadStory(ctx context.Context) (StoryDraft, error) {
	var d StoryDraft
	if _, err := s.Load(ctx, KindStory, &d); err != nil {
		return d, err
	}
	d.Normalize()
	return d, nil
}

// LoadCode returns the code draft, normalized, empty if unset.
func (s *Service) LoadCode(ctx context.Context) (CodeDraft, error) {
	var d CodeDraft
	if _, err := s.Load(ctx, KindCode, &d); err != nil {
		return d, err
	}
	d.Normalize()
	return d, nil
}

// LoadCollection returns the collection draft, normalized, empty if unset.
func (s *Service) LoadCollection(ctx context.Context) (CollectionDraft, error) {
	var d CollectionDraft
	if _, err := s.Load(ctx, KindCollection, &d); err != nil {
		return d, err
	}
	d.Normalize()
	return d, nil
}

// LoadSettings returns the settings draft, empty if unset.
func (s *Service) LoadSettings(ctx context.Context) (SettingsDraft, error) {
	var d SettingsDraft
	if _, err := s.Load(ctx, KindSettings, &d); err != nil {
		return d, err
	}
	d.Normalize()
	return d, nil
}

// Handler exposes the draft HTTP surface.
type Handler struct {
	svc *Service
}

// NewHandler creates the draft handler.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts the draft routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/drafts/:kind", h.get)
	rg.PUT("/drafts/:kind", h.save)
	rg.DELETE("/drafts/:kind", h.clear)
	rg.POST("/drafts/:kind/assets", h.attachAssets)
}

func (h *Handler) get(c *gin.Context) {
	kind := Kind(c.Param("kind"))
	switch kind {
	case KindStory:
		d, err := h.svc.LoadStory(c.Request.Context())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, d)
	case KindCode:
		d, err := h.svc.LoadCode(c.Request.Context())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, d)
	case KindCollection:
		d, err := h.svc.LoadCollection(c.Request.Context())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, d)
	case KindSettings:
		d, err := h.svc.LoadSettings(c.Request.Context())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, d)
	default:
		response.BadRequest(c, "unknown draft kind")
	}
}

func (h *Handler) save(c *gin.Context) {
	kind := Kind(c.Param("kind"))
	ctx := c.Request.Context()

	switch kind {
	case KindStory:
		var d StoryDraft
		if err := c.ShouldBindJSON(&d); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		d.Normalize()
		if err := h.svc.Save(ctx, kind, d); err != nil {
			response.InternalError(c, err)
			return
		}
	case KindCode:
		var d CodeDraft
		if err := c.ShouldBindJSON(&d); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		d.Normalize()
		if err := h.svc.Save(ctx, kind, d); err != nil {
			response.InternalError(c, err)
			return
		}
	case KindCollection:
		var d CollectionDraft
		if err := c.ShouldBindJSON(&d); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		d.Normalize()
		if err := h.svc.Save(ctx, kind, d); err != nil {
			response.InternalError(c, err)
			return
		}
	case KindSettings:
		var d SettingsDraft
		if err := c.ShouldBindJSON(&d); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		d.Normalize()
		if err := h.svc.Save(ctx, kind, d); err != nil {
			response.InternalError(c, err)
			return
		}
	default:
		response.BadRequest(c, "unknown draft kind")
		return
	}

	response.OK(c, gin.H{"saved": true})
}

func (h *Handler) clear(c *gin.Context) {
	kind := Kind(c.Param("kind"))
	if !kind.Valid() {
		response.BadRequest(c, "unknown draft kind")
		return
	}
	if err := h.svc.Clear(c.Request.Context(), kind); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) attachAssets(c *gin.Context) {
	kind := Kind(c.Param("kind"))
	ctx := c.Request.Context()

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		response.BadRequest(c, "no files uploaded")
		return
	}

	switch kind {
	case KindStory:
		inputs, closers, err := openAll(files)
		if err != nil {
			closeAll(closers)
			response.InternalError(c, err)
			return
		}
		images, encErr := assets.EncodeAll(ctx, inputs)
		closeAll(closers)
		if encErr != nil {
			h.svc.log.Warn("asset encode incomplete", zap.Error(encErr))
		}

		d, err := h.svc.LoadStory(ctx)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		d.Images = append(d.Images, images...)
		if err := h.svc.Save(ctx, KindStory, d); err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, d)
	case KindSettings:
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		avatar, err := assets.EncodeAvatar(fh.Header.Get("Content-Type"), f)
		f.Close()
		if err != nil {
			response.InternalError(c, err)
			return
		}

		d, err := h.svc.LoadSettings(ctx)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		d.Avatar = avatar
		if err := h.svc.Save(ctx, KindSettings, d); err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, d)
	default:
		response.BadRequest(c, "draft kind does not accept assets")
	}
}

func openAll(files []*multipart.FileHeader) ([]assets.Input, []multipart.File, error) {
	inputs := make([]assets.Input, 0, len(files))
	closers := make([]multipart.File, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, closers, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		closers = append(closers, f)
		inputs = append(inputs, assets.Input{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Reader:   f,
		})
	}
	return inputs, closers, nil
}

func closeAll(closers []multipart.File) {
	for _, f := range closers {
		f.Close()
	}
}
