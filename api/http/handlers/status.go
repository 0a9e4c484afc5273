package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jobassist/backend/api/http/presenter"
	"github.com/jobassist/backend/pkg/catalog"
	"github.com/jobassist/backend/pkg/session"
	"github.com/jobassist/backend/pkg/status"
)

// StatusHandler serves status transitions and the per-job status history.
type StatusHandler struct {
	engine   status.TransitionUseCase
	ledger   status.LedgerUseCase
	catalog  catalog.UseCase
	sessions *session.Registry
}

func NewStatusHandler(engine status.TransitionUseCase, ledger status.LedgerUseCase, svc catalog.UseCase, sessions *session.Registry) *StatusHandler {
	return &StatusHandler{engine: engine, ledger: ledger, catalog: svc, sessions: sessions}
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// Update sets a job's status. The write goes to the job store first; the
// session cache is updated only after the store confirms.
// @Summary Update job status
// @Tags    status
// @Accept  json
// @Produce json
// @Param   id    path string              true "job id"
// @Param   input body updateStatusRequest true "new status and optional notes"
// @Success 200 {object} status.HistoryEntry
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /jobs/{id}/status [put]
func (h *StatusHandler) Update(c *fiber.Ctx) error {
	jobID := strings.TrimSpace(c.Params("id"))
	if jobID == "" {
		return presenter.Error(c, http.StatusBadRequest, "job id is required")
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}

	scope := scopeFromCtx(c)
	sess := h.sessions.Get(scope)
	if err := loadCatalog(c.Context(), h.catalog, sess, false); err != nil {
		return presenter.ErrorFrom(c, http.StatusBadGateway, err)
	}

	entry, err := h.engine.Apply(c.Context(), sess, jobID, req.Status, req.Notes, scope)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrInvalidStatus):
			return presenter.ErrorFrom(c, http.StatusBadRequest, err)
		case errors.Is(err, status.ErrJobNotFound):
			return presenter.Error(c, http.StatusNotFound, "job not found")
		case errors.Is(err, status.ErrTransitionInFlight):
			return presenter.Error(c, http.StatusConflict, "a status update for this job is already in progress")
		default:
			// The store's own message passes through verbatim.
			return presenter.ErrorFrom(c, http.StatusBadGateway, err)
		}
	}

	return presenter.JSON(c, http.StatusOK, entry)
}

// History returns the job's status history, oldest first. When the store
// cannot serve it, the session's observed entries are returned with
// degraded set; 502 only when nothing is cached.
// @Summary Job status history
// @Tags    status
// @Produce json
// @Param   id path string true "job id"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /jobs/{id}/status/history [get]
func (h *StatusHandler) History(c *fiber.Ctx) error {
	jobID := strings.TrimSpace(c.Params("id"))
	if jobID == "" {
		return presenter.Error(c, http.StatusBadRequest, "job id is required")
	}

	entries, err := h.ledger.History(c.Context(), jobID)
	if err != nil {
		// Degrade to the entries this session has observed; updates stay
		// possible while the store's history read is down.
		if cached := h.sessions.Get(scopeFromCtx(c)).CachedHistory(jobID); len(cached) > 0 {
			return presenter.JSON(c, http.StatusOK, fiber.Map{
				"job_id":   jobID,
				"history":  cached,
				"degraded": true,
			})
		}
		return presenter.ErrorFrom(c, http.StatusBadGateway, err)
	}
	if entries == nil {
		entries = []status.HistoryEntry{}
	}

	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"job_id":  jobID,
		"history": entries,
	})
}
