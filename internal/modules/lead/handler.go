package lead

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/pkg/pagination"
	"github.com/perkstack/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, editorMW []gin.HandlerFunc) {
	leads := rg.Group("/leads")
	// Capture is the public storefront endpoint; everything else is admin.
	leads.POST("", h.capture)

	authed := leads.Group("", editorMW...)
	authed.GET("", h.list)
	authed.GET("/export", h.export)
	authed.GET("/:id", h.get)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) capture(c *gin.Context) {
	var dto CreateLeadDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	l, err := h.svc.Capture(&dto, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, ErrPerkNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, ErrPerkNotLeadForm):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, l)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	leads, meta, err := h.svc.List(q, c.Query("perkId"), c.Query("search"), c.Query("sort"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, leads, meta)
}

func (h *Handler) get(c *gin.Context) {
	l, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if l == nil {
		response.NotFound(c, "lead not found")
		return
	}
	response.OK(c, l)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "lead not found")
		return
	}
	response.Message(c, "Lead deleted successfully")
}

// export streams leads as CSV. Submission data is serialized as one JSON
// column; this is a thin projection of the list query.
func (h *Handler) export(c *gin.Context) {
	leads, err := h.svc.Export(c.Query("perkId"))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	filename := fmt.Sprintf("leads-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(200)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"id", "perkId", "perkTitle", "data", "ip", "createdAt"})
	for _, l := range leads {
		title := ""
		if l.Perk != nil {
			title = l.Perk.Title
		}
		data, _ := json.Marshal(map[string]interface{}(l.Data))
		_ = w.Write([]string{
			l.ID, l.PerkID, title, string(data),
			l.IP, l.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		// Headers are already out, so the status cannot change.
		// Surface the truncated export in the request log.
		_ = c.Error(fmt.Errorf("lead export aborted: %w", err))
	}
}
