package app

import (
	"github.com/gin-gonic/gin"

	"github.com/fablepress/core/internal/modules/admin"
	"github.com/fablepress/core/internal/modules/authoring"
	"github.com/fablepress/core/internal/modules/draft"
	"github.com/fablepress/core/internal/modules/export"
	"github.com/fablepress/core/internal/modules/identity"
	"github.com/fablepress/core/internal/modules/view"
	"github.com/fablepress/core/internal/pkg/response"
)

func (a *App) registerRoutes(committer export.Committer) {
	exporter := export.NewExporter(a.store, committer, a.logger)
	binding := identity.NewBinding(a.kv, a.cfg.OAuthExchange, a.logger)
	drafts := draft.NewService(a.kv, a.logger)

	viewHandler := view.NewHandler(view.NewService(a.store, binding, a.logger))
	identityHandler := identity.NewHandler(binding, a.logger)
	draftHandler := draft.NewHandler(drafts)
	authoringHandler := authoring.NewHandler(
		authoring.NewService(a.store, drafts, binding, exporter, a.logger))
	adminHandler := admin.NewHandler(admin.NewService(a.store, exporter, a.logger))
	exportHandler := export.NewHandler(exporter, export.ArtifactName(a.cfg.SnapshotPath))

	viewHandler.RegisterPages(a.router)
	identityHandler.RegisterCallback(a.router)

	api := a.router.Group("/api/v2")
	viewHandler.RegisterRoutes(api)
	identityHandler.RegisterRoutes(api)
	draftHandler.RegisterRoutes(api)
	authoringHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)
	exportHandler.RegisterRoutes(api)

	a.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	a.router.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})
}
