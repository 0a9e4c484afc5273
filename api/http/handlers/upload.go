package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jobassist/backend/api/http/presenter"
	"github.com/jobassist/backend/pkg/catalog"
	"github.com/jobassist/backend/pkg/reconcile"
	"github.com/jobassist/backend/pkg/session"
	"github.com/jobassist/backend/pkg/status"
)

// UploadHandler drives the spreadsheet reconciliation pipeline. Each phase
// endpoint re-sends the held file, so phases are independent HTTP calls
// against the same session pipeline.
type UploadHandler struct {
	catalog  catalog.UseCase
	sessions *session.Registry
}

func NewUploadHandler(svc catalog.UseCase, sessions *session.Registry) *UploadHandler {
	return &UploadHandler{catalog: svc, sessions: sessions}
}

// selectFromRequest reads the multipart file (when present) into the
// pipeline. Phase endpoints accept requests without a file and reuse the
// previously selected one.
func selectFromRequest(c *fiber.Ctx, p *reconcile.Pipeline) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil // no file in this request, keep the held one
	}
	if fh.Size > reconcile.MaxFileSize {
		return reconcile.ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return reconcile.ErrUnreadableFile
	}
	defer f.Close()
	contents, err := io.ReadAll(io.LimitReader(f, reconcile.MaxFileSize+1))
	if err != nil {
		return reconcile.ErrUnreadableFile
	}
	return p.SelectFile(fh.Filename, contents)
}

func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrNoFile),
		errors.Is(err, reconcile.ErrEmptyFile),
		errors.Is(err, reconcile.ErrFileTooLarge),
		errors.Is(err, reconcile.ErrBadExtension),
		errors.Is(err, reconcile.ErrUnreadableFile):
		return http.StatusBadRequest
	case errors.Is(err, reconcile.ErrPhaseInFlight),
		errors.Is(err, reconcile.ErrNothingParsed),
		errors.Is(err, status.ErrTransitionInFlight):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// Validate runs the pre-flight structure check on the selected spreadsheet.
// @Summary Validate spreadsheet
// @Tags    upload
// @Accept  mpfd
// @Produce json
// @Param   file formData file false "spreadsheet (.xlsx or .xls); omit to reuse the held file"
// @Success 200 {object} reconcile.ValidationReport
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /upload/validate [post]
func (h *UploadHandler) Validate(c *fiber.Ctx) error {
	sess := h.sessions.Get(scopeFromCtx(c))
	if err := selectFromRequest(c, sess.Pipeline); err != nil {
		return presenter.ErrorFrom(c, uploadErrorStatus(err), err)
	}

	report, err := sess.Pipeline.Validate(c.Context())
	if err != nil {
		return presenter.ErrorFrom(c, uploadErrorStatus(err), err)
	}
	return presenter.JSON(c, http.StatusOK, report)
}

// Parse extracts status updates from the selected spreadsheet.
// @Summary Parse spreadsheet
// @Tags    upload
// @Accept  mpfd
// @Produce json
// @Param   file formData file false "spreadsheet (.xlsx or .xls); omit to reuse the held file"
// @Success 200 {object} reconcile.ParseResult
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /upload/parse [post]
func (h *UploadHandler) Parse(c *fiber.Ctx) error {
	sess := h.sessions.Get(scopeFromCtx(c))
	if err := selectFromRequest(c, sess.Pipeline); err != nil {
		return presenter.ErrorFrom(c, uploadErrorStatus(err), err)
	}

	result, err := sess.Pipeline.Parse(c.Context())
	if err != nil {
		return presenter.ErrorFrom(c, uploadErrorStatus(err), err)
	}
	return presenter.JSON(c, http.StatusOK, result)
}

// Apply pushes the parsed updates to the job store and re-fetches the
// catalog so the session reflects the store's authoritative state.
// @Summary Apply parsed updates
// @Tags    upload
// @Produce json
// @Success 200 {object} reconcile.Result
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 409 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Security BearerAuth
// @Router  /upload/apply [post]
func (h *UploadHandler) Apply(c *fiber.Ctx) error {
	sess := h.sessions.Get(scopeFromCtx(c))
	if err := loadCatalog(c.Context(), h.catalog, sess, false); err != nil {
		return presenter.ErrorFrom(c, http.StatusBadGateway, err)
	}

	result, err := sess.Pipeline.Apply(c.Context(), sess)
	if err != nil {
		return presenter.ErrorFrom(c, uploadErrorStatus(err), err)
	}

	// Best effort: a failed refresh does not undo an apply that succeeded.
	_ = loadCatalog(c.Context(), h.catalog, sess, true)

	return presenter.JSON(c, http.StatusOK, result)
}

// State reports the pipeline's current phase and the held file, if any.
// @Summary Pipeline state
// @Tags    upload
// @Produce json
// @Success 200 {object} reconcile.Snapshot
// @Security BearerAuth
// @Router  /upload [get]
func (h *UploadHandler) State(c *fiber.Ctx) error {
	sess := h.sessions.Get(scopeFromCtx(c))
	return presenter.JSON(c, http.StatusOK, sess.Pipeline.Snapshot())
}

// Remove discards the held file and resets the pipeline to idle.
// @Summary Remove held file
// @Tags    upload
// @Produce json
// @Success 200 {object} reconcile.Snapshot
// @Security BearerAuth
// @Router  /upload [delete]
func (h *UploadHandler) Remove(c *fiber.Ctx) error {
	sess := h.sessions.Get(scopeFromCtx(c))
	sess.Pipeline.RemoveFile()
	return presenter.JSON(c, http.StatusOK, sess.Pipeline.Snapshot())
}
