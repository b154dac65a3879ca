package handlers

import (
	"context"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"confhub/internal/core/apperror"
	"confhub/internal/core/id"
	"confhub/internal/domain"
	"confhub/internal/domain/audit"
	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/abstract"
	"confhub/internal/domain/submission/exhibitor"
	"confhub/internal/domain/submission/preconference"
	"confhub/internal/domain/submission/registration"
	"confhub/internal/domain/submission/sponsorship"
	"confhub/internal/infrastructure/http/v1/dto"
	"confhub/internal/infrastructure/uploads"
	"confhub/pkg/logger"
)

// Files is the upload store used by the intake endpoints.
type Files interface {
	Check(field string, fh *multipart.FileHeader) error
	Save(category, field string, fh *multipart.FileHeader) (string, error)
	Remove(path string) error
}

// Upload form field names.
const (
	FieldPaymentProof  = "payment_proof"
	FieldPassportPhoto = "passport_photo"
	FieldAbstractFile  = "abstract_file"
)

// IntakeServices are the public submission services.
type IntakeServices struct {
	Registrations *registration.Service
	Abstracts     *abstract.Service
	Sponsorships  *sponsorship.Service
	Exhibitors    *exhibitor.Service
	Meetings      *preconference.Service
}

// IntakeHandler accepts the public submission forms.
type IntakeHandler struct {
	*BaseHandler
	services IntakeServices
	files    Files
}

// NewIntakeHandler creates a new intake handler.
func NewIntakeHandler(base *BaseHandler, services IntakeServices, files Files) *IntakeHandler {
	return &IntakeHandler{BaseHandler: base, services: services, files: files}
}

// upload describes one expected file part.
type upload struct {
	field    string
	category string
	required bool
	target   *string
}

// saveUploads checks every part before writing any, then writes them.
// It returns the stored paths so a failed create can remove them.
func (h *IntakeHandler) saveUploads(c *gin.Context, parts ...upload) ([]string, error) {
	headers := make([]*multipart.FileHeader, len(parts))
	for i, p := range parts {
		fh, err := c.FormFile(p.field)
		if err != nil {
			if p.required {
				return nil, apperror.NewRequiredField(p.field)
			}
			continue
		}
		if err := h.files.Check(p.field, fh); err != nil {
			return nil, err
		}
		headers[i] = fh
	}

	var saved []string
	for i, p := range parts {
		if headers[i] == nil {
			continue
		}
		stored, err := h.files.Save(p.category, p.field, headers[i])
		if err != nil {
			h.discard(c.Request.Context(), saved)
			return nil, err
		}
		*p.target = stored
		saved = append(saved, stored)
	}
	return saved, nil
}

func (h *IntakeHandler) discard(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := h.files.Remove(p); err != nil {
			logger.Warn(ctx, "failed to remove upload", "path", p, "error", err)
		}
	}
}

// create runs fn and removes the uploads when it fails.
func (h *IntakeHandler) create(c *gin.Context, saved []string, fn func(ctx context.Context) error, rec submission.Record, status string) {
	if err := fn(c.Request.Context()); err != nil {
		h.discard(c.Request.Context(), saved)
		h.Error(c, err)
		return
	}
	h.Created(c, dto.SubmissionCreated{
		ID:        rec.GetID().String(),
		Reference: rec.GetReference(),
		Status:    status,
	})
}

// CreateRegistration handles POST /api/registrations
func (h *IntakeHandler) CreateRegistration(c *gin.Context) {
	var req dto.RegistrationRequest
	if !h.Bind(c, &req) {
		return
	}
	reg := req.ToModel()

	saved, err := h.saveUploads(c,
		upload{FieldPaymentProof, uploads.CategoryPaymentProofs, true, &reg.PaymentProofPath},
		upload{FieldPassportPhoto, uploads.CategoryPassportPhotos, true, &reg.PassportPhotoPath},
	)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.create(c, saved, func(ctx context.Context) error {
		return h.services.Registrations.Create(ctx, reg)
	}, reg, string(reg.Status))
}

// CreateAbstract handles POST /api/abstracts
func (h *IntakeHandler) CreateAbstract(c *gin.Context) {
	var req dto.AbstractRequest
	if !h.Bind(c, &req) {
		return
	}
	a := req.ToModel()

	saved, err := h.saveUploads(c,
		upload{FieldAbstractFile, uploads.CategoryAbstracts, true, &a.FilePath},
	)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.create(c, saved, func(ctx context.Context) error {
		return h.services.Abstracts.Create(ctx, a)
	}, a, string(a.Status))
}

// CreateSponsorship handles POST /api/sponsorships
func (h *IntakeHandler) CreateSponsorship(c *gin.Context) {
	var req dto.SponsorshipRequest
	if !h.Bind(c, &req) {
		return
	}
	sp := req.ToModel()

	saved, err := h.saveUploads(c,
		upload{FieldPaymentProof, uploads.CategoryPaymentProofs, false, &sp.PaymentProofPath},
	)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.create(c, saved, func(ctx context.Context) error {
		return h.services.Sponsorships.Create(ctx, sp)
	}, sp, string(sp.Status))
}

// CreateExhibitor handles POST /api/exhibitors
func (h *IntakeHandler) CreateExhibitor(c *gin.Context) {
	var req dto.ExhibitorRequest
	if !h.Bind(c, &req) {
		return
	}
	e := req.ToModel()

	saved, err := h.saveUploads(c,
		upload{FieldPaymentProof, uploads.CategoryPaymentProofs, false, &e.PaymentProofPath},
	)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.create(c, saved, func(ctx context.Context) error {
		return h.services.Exhibitors.Create(ctx, e)
	}, e, string(e.Status))
}

// CreatePreconference handles POST /api/pre-conference
func (h *IntakeHandler) CreatePreconference(c *gin.Context) {
	var req dto.PreconferenceRequest
	if !h.Bind(c, &req) {
		return
	}
	m, err := req.ToModel()
	if err != nil {
		h.Error(c, err)
		return
	}

	h.create(c, nil, func(ctx context.Context) error {
		return h.services.Meetings.Create(ctx, m)
	}, m, string(m.ApprovalStatus))
}

// Reviewer is the admin surface every submission service shares.
type Reviewer[T submission.Record] interface {
	GetByID(ctx context.Context, entityID id.ID) (T, error)
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error)
	Delete(ctx context.Context, entityID id.ID) error
	History(ctx context.Context, entityID id.ID) ([]audit.Entry, error)
}

// StatusSetter is implemented by single-axis services.
type StatusSetter[T submission.Record] interface {
	SetStatus(ctx context.Context, entityID id.ID, target submission.Status) (T, error)
}

// ReviewHandler serves the admin list, view, status, delete and history routes of one entity.
type ReviewHandler[T submission.Record] struct {
	*BaseHandler
	service Reviewer[T]
	filters []string
}

// NewReviewHandler creates a review handler. filters are the query parameters
// matched by equality, e.g. "status".
func NewReviewHandler[T submission.Record](base *BaseHandler, service Reviewer[T], filters ...string) *ReviewHandler[T] {
	return &ReviewHandler[T]{BaseHandler: base, service: service, filters: filters}
}

// List handles GET /api/admin/<entity>
func (h *ReviewHandler[T]) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	f := q.ToListFilter()
	for _, name := range h.filters {
		f.Where(name, c.Query(name))
	}

	result, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /api/admin/<entity>/:id
func (h *ReviewHandler[T]) Get(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	rec, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// SetStatus handles PATCH /api/admin/<entity>/:id/status
func (h *ReviewHandler[T]) SetStatus(c *gin.Context) {
	setter, ok := h.service.(StatusSetter[T])
	if !ok {
		h.Error(c, apperror.NewNotFound("route", c.FullPath()))
		return
	}
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := setter.SetStatus(c.Request.Context(), entityID, submission.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Delete handles DELETE /api/admin/<entity>/:id
func (h *ReviewHandler[T]) Delete(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), entityID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// History handles GET /api/admin/<entity>/:id/history
func (h *ReviewHandler[T]) History(c *gin.Context) {
	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.service.History(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	h.OK(c, gin.H{"items": entries})
}

// PreconferenceStatusHandler serves the dual-axis status route.
type PreconferenceStatusHandler struct {
	*BaseHandler
	service *preconference.Service
}

// NewPreconferenceStatusHandler creates the handler.
func NewPreconferenceStatusHandler(base *BaseHandler, service *preconference.Service) *PreconferenceStatusHandler {
	return &PreconferenceStatusHandler{BaseHandler: base, service: service}
}

// SetStatus handles PATCH /api/admin/pre-conference/:id/status
func (h *PreconferenceStatusHandler) SetStatus(c *gin.Context) {
	meetingID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.PreconferenceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.SetStatus(c.Request.Context(), meetingID, req.ToChange())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}
