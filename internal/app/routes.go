package app

import (
	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/middleware"
	"github.com/perkstack/core/internal/modules/auth"
	"github.com/perkstack/core/internal/modules/cms/field"
	"github.com/perkstack/core/internal/modules/cms/page"
	"github.com/perkstack/core/internal/modules/cms/section"
	"github.com/perkstack/core/internal/modules/lead"
	"github.com/perkstack/core/internal/modules/media"
	"github.com/perkstack/core/internal/modules/perk"
	"github.com/perkstack/core/internal/modules/settings"
	"github.com/perkstack/core/internal/modules/taxonomy/category"
	"github.com/perkstack/core/internal/modules/taxonomy/subcategory"
	"github.com/perkstack/core/internal/pkg/response"
)

// registerRoutes mounts every module under /api. OptionalAuth runs first so
// the rate limiter and the response cache can exempt authenticated traffic;
// mutating routes are gated behind the editor middleware chain.
func (a *App) registerRoutes() {
	api := a.router.Group("/api",
		middleware.OptionalAuth(a.db),
		middleware.RateLimit(a.rc.Raw()),
		middleware.HTTPCache(a.rc.Raw(), "/api/leads/export"),
		middleware.Idempotence(a.rc.Raw()),
	)

	editorMW := []gin.HandlerFunc{
		middleware.Auth(a.db),
		middleware.RequireEditor(),
	}

	auth.NewHandler(auth.NewService(a.db), a.db).RegisterRoutes(api)

	category.NewHandler(category.NewService(a.db)).RegisterRoutes(api, editorMW)
	subcategory.NewHandler(subcategory.NewService(a.db)).RegisterRoutes(api, editorMW)
	perk.NewHandler(perk.NewService(a.db)).RegisterRoutes(api, editorMW)
	lead.NewHandler(lead.NewService(a.db)).RegisterRoutes(api, editorMW)
	page.NewHandler(page.NewService(a.db)).RegisterRoutes(api, editorMW)
	section.NewHandler(section.NewService(a.db)).RegisterRoutes(api, editorMW)
	field.NewHandler(field.NewService(a.db)).RegisterRoutes(api, editorMW)
	media.NewHandler(media.NewService(a.db)).RegisterRoutes(api, editorMW)

	settingsHandler := settings.NewHandler(settings.NewService(a.db))
	settingsHandler.RegisterRoutes(api, editorMW)
	a.router.GET("/robots.txt", settingsHandler.ServeRobots)

	a.router.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "resource not found")
	})
	a.router.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})
}
