package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jobassist/backend/api/http/presenter"
	"github.com/jobassist/backend/pkg/catalog"
	"github.com/jobassist/backend/pkg/session"
)

// JobsHandler serves the per-user job catalog: the filtered, sorted list
// and the aggregate dashboard counters. Both read from the session cache;
// the cache is filled from the job store on first access or on ?refresh=true.
type JobsHandler struct {
	catalog  catalog.UseCase
	sessions *session.Registry
}

func NewJobsHandler(svc catalog.UseCase, sessions *session.Registry) *JobsHandler {
	return &JobsHandler{catalog: svc, sessions: sessions}
}

func scopeFromCtx(c *fiber.Ctx) string {
	scope, _ := c.Locals("scope").(string)
	return scope
}

// loadCatalog fills the session cache from the job store when it is empty
// or when force is set. A failed fetch leaves the previous cache intact.
func loadCatalog(ctx context.Context, svc catalog.UseCase, sess *session.Session, force bool) error {
	if sess.Loaded() && !force {
		return nil
	}
	jobs, err := svc.Snapshot(ctx, sess.Scope)
	if err != nil {
		return err
	}
	sess.SetJobs(jobs)
	return nil
}

// List returns the catalog after filtering, sorting and pagination.
// @Summary List jobs
// @Tags    jobs
// @Produce json
// @Param   search    query string false "substring match on title, company, location"
// @Param   status    query string false "status filter" Enums(pending, applied, interview, offer, rejected)
// @Param   highlight query string false "highlight filter" Enums(red, yellow, white, green)
// @Param   sort_by   query string false "sort key" Enums(score, title, company, date)
// @Param   order     query string false "sort order" Enums(asc, desc)
// @Param   limit     query int    false "page size"
// @Param   offset    query int    false "page offset"
// @Param   refresh   query bool   false "force a re-fetch from the job store"
// @Success 200 {object} map[string]any
// @Failure 502 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /jobs [get]
func (h *JobsHandler) List(c *fiber.Ctx) error {
	sess := h.sessions.Get(scopeFromCtx(c))
	force := strings.EqualFold(c.Query("refresh"), "true")
	if err := loadCatalog(c.Context(), h.catalog, sess, force); err != nil {
		if errors.Is(err, catalog.ErrScopeRequired) {
			return presenter.ErrorFrom(c, http.StatusBadRequest, err)
		}
		return presenter.ErrorFrom(c, http.StatusBadGateway, err)
	}

	key, order := parseSort(c)
	jobs := catalog.FilterSort(sess.Jobs(), parseFilters(c), key, order)

	limit, offset := parseLimitOffset(c, 50)
	total := len(jobs)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"jobs":   jobs[offset:end],
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Stats returns the dashboard counters for the whole catalog, unfiltered.
// @Summary Catalog statistics
// @Tags    jobs
// @Produce json
// @Success 200 {object} catalog.Stats
// @Failure 502 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /jobs/stats [get]
func (h *JobsHandler) Stats(c *fiber.Ctx) error {
	sess := h.sessions.Get(scopeFromCtx(c))
	if err := loadCatalog(c.Context(), h.catalog, sess, false); err != nil {
		if errors.Is(err, catalog.ErrScopeRequired) {
			return presenter.ErrorFrom(c, http.StatusBadRequest, err)
		}
		return presenter.ErrorFrom(c, http.StatusBadGateway, err)
	}
	return presenter.JSON(c, http.StatusOK, catalog.CountStats(sess.Jobs()))
}
