package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ISimplifyComplexity/lazyunit/internal/domain/loader"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/nav"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/preload"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/registry"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/session"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/fetch"
	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// Handlers exposes the loading core over HTTP.
type Handlers struct {
	registry   *registry.Registry
	loader     *loader.Loader
	dispatcher *nav.Dispatcher
	scheduler  *preload.Scheduler
	sessions   *session.Manager
	fetcher    *fetch.Fetcher
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(reg *registry.Registry, l *loader.Loader, d *nav.Dispatcher, s *preload.Scheduler, sessions *session.Manager, fetcher *fetch.Fetcher) *Handlers {
	return &Handlers{
		registry:   reg,
		loader:     l,
		dispatcher: d,
		scheduler:  s,
		sessions:   sessions,
		fetcher:    fetcher,
	}
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"units":       h.registry.Len(),
		"preload_run": h.scheduler.Done(),
	})
}

// Navigate activates the unit behind the trigger key in the path.
//
// A gate denial answers 303 with the redirect target; a successful
// activation answers 200 with the handle once the unit is materialized.
func (h *Handlers) Navigate(c *gin.Context) {
	triggerKey := c.Param("key")

	result, err := h.dispatcher.Navigate(c.Request.Context(), triggerKey)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrUnitNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if result.Status == nav.StatusRedirect {
		c.JSON(http.StatusSeeOther, gin.H{
			"success":  false,
			"status":   result.Status,
			"redirect": result.Redirect,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  result.Status,
		"handle":  result.Handle,
	})
}

// ListUnits lists every registered unit with its load state.
func (h *Handlers) ListUnits(c *gin.Context) {
	units := h.registry.All()
	out := make([]gin.H, 0, len(units))
	for _, u := range units {
		out = append(out, gin.H{
			"id":       u.ID,
			"trigger":  u.TriggerKey,
			"metadata": u.Metadata,
			"gated":    len(u.Gates) > 0,
			"state":    h.loader.State(u.ID),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"units":   out,
	})
}

// UnitState reports one unit's load state.
func (h *Handlers) UnitState(c *gin.Context) {
	triggerKey := c.Param("key")

	u, err := h.registry.Lookup(triggerKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"unit":    u.ID,
		"state":   h.loader.State(u.ID),
	})
}

// Stats aggregates registry and loader statistics.
func (h *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"registry": h.registry.Stats(),
		"loader":   h.loader.Stats(),
		"sessions": h.sessions.Count(),
		"fetch": gin.H{
			"breaker": h.fetcher.Breaker().State().String(),
		},
	})
}

// Login issues a session token for the posted principal. Credential
// verification lives outside this service; the endpoint trusts its
// caller the way a dev login stub does.
func (h *Handlers) Login(c *gin.Context) {
	var body struct {
		Subject string            `json:"subject" binding:"required"`
		Attrs   map[string]string `json:"attrs"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	token := h.sessions.Issue(types.Principal{
		Subject:       body.Subject,
		Authenticated: true,
		Attrs:         body.Attrs,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
	})
}

// Logout revokes the request's session token.
func (h *Handlers) Logout(c *gin.Context) {
	var body struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	h.sessions.Revoke(body.Token)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
