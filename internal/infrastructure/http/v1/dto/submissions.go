package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"confhub/internal/core/apperror"
	"confhub/internal/domain/submission"
	"confhub/internal/domain/submission/abstract"
	"confhub/internal/domain/submission/exhibitor"
	"confhub/internal/domain/submission/preconference"
	"confhub/internal/domain/submission/registration"
	"confhub/internal/domain/submission/sponsorship"
)

// SubmissionCreated is returned by every public intake endpoint.
type SubmissionCreated struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// RegistrationRequest is the registration form. Files arrive as payment_proof and passport_photo.
type RegistrationRequest struct {
	FullName         string `form:"full_name" json:"full_name" binding:"required"`
	Email            string `form:"email" json:"email" binding:"required"`
	Phone            string `form:"phone" json:"phone" binding:"required,phone"`
	Institution      string `form:"institution" json:"institution" binding:"required"`
	Position         string `form:"position" json:"position"`
	Country          string `form:"country" json:"country" binding:"required"`
	City             string `form:"city" json:"city"`
	RegistrationType string `form:"registration_type" json:"registration_type" binding:"required"`
}

// ToModel builds a pending registration. File paths are set by the handler.
func (r RegistrationRequest) ToModel() *registration.Registration {
	reg := registration.New()
	reg.FullName = strings.TrimSpace(r.FullName)
	reg.Email = strings.TrimSpace(r.Email)
	reg.Phone = strings.TrimSpace(r.Phone)
	reg.Institution = r.Institution
	reg.Position = r.Position
	reg.Country = r.Country
	reg.City = r.City
	reg.RegistrationType = r.RegistrationType
	return reg
}

// AbstractRequest is the abstract form. The manuscript arrives as abstract_file.
type AbstractRequest struct {
	Title            string `form:"title" json:"title" binding:"required"`
	PresentingAuthor string `form:"presenting_author" json:"presenting_author" binding:"required"`
	CoAuthors        string `form:"co_authors" json:"co_authors"`
	Email            string `form:"email" json:"email" binding:"required"`
	Phone            string `form:"phone" json:"phone"`
	Institution      string `form:"institution" json:"institution" binding:"required"`
	Country          string `form:"country" json:"country" binding:"required"`
	Category         string `form:"category" json:"category" binding:"required"`
	Keywords         string `form:"keywords" json:"keywords"`
	Summary          string `form:"summary" json:"summary" binding:"required"`
}

// ToModel builds a submitted abstract.
func (r AbstractRequest) ToModel() *abstract.Abstract {
	a := abstract.New()
	a.Title = strings.TrimSpace(r.Title)
	a.PresentingAuthor = strings.TrimSpace(r.PresentingAuthor)
	a.CoAuthors = r.CoAuthors
	a.Email = strings.TrimSpace(r.Email)
	a.Phone = r.Phone
	a.Institution = r.Institution
	a.Country = r.Country
	a.Category = r.Category
	a.Keywords = r.Keywords
	a.Summary = r.Summary
	return a
}

// OrgContactRequest is the contact block of sponsorship and exhibitor forms.
type OrgContactRequest struct {
	OrganizationName string `form:"organization_name" json:"organization_name" binding:"required"`
	ContactPerson    string `form:"contact_person" json:"contact_person" binding:"required"`
	Email            string `form:"email" json:"email" binding:"required"`
	Phone            string `form:"phone" json:"phone" binding:"required,phone"`
	Website          string `form:"website" json:"website"`
	Address          string `form:"address" json:"address"`
}

func (r OrgContactRequest) toModel() submission.OrgContact {
	return submission.OrgContact{
		OrganizationName: strings.TrimSpace(r.OrganizationName),
		ContactPerson:    strings.TrimSpace(r.ContactPerson),
		Email:            strings.TrimSpace(r.Email),
		Phone:            strings.TrimSpace(r.Phone),
		Website:          r.Website,
		Address:          r.Address,
	}
}

// SponsorshipRequest is the sponsorship form. A payment_proof file is optional.
type SponsorshipRequest struct {
	OrgContactRequest
	SelectedPackage string `form:"selected_package" json:"selected_package" binding:"required"`
}

// ToModel builds a pending application.
func (r SponsorshipRequest) ToModel() *sponsorship.Sponsorship {
	s := sponsorship.New()
	s.OrgContact = r.OrgContactRequest.toModel()
	s.SelectedPackage = r.SelectedPackage
	return s
}

// ExhibitorRequest is the exhibitor form. A payment_proof file is optional.
type ExhibitorRequest struct {
	OrgContactRequest
	SelectedPackage     string `form:"selected_package" json:"selected_package" binding:"required"`
	ProductsDescription string `form:"products_description" json:"products_description"`
}

// ToModel builds a pending application.
func (r ExhibitorRequest) ToModel() *exhibitor.Exhibitor {
	e := exhibitor.New()
	e.OrgContact = r.OrgContactRequest.toModel()
	e.SelectedPackage = r.SelectedPackage
	e.ProductsDescription = r.ProductsDescription
	return e
}

// PreconferenceRequest is the meeting booking form.
type PreconferenceRequest struct {
	SessionTitle        string `form:"session_title" json:"session_title" binding:"required"`
	Description         string `form:"description" json:"description"`
	SessionType         string `form:"session_type" json:"session_type" binding:"required"`
	OrganizerName       string `form:"organizer_name" json:"organizer_name" binding:"required"`
	OrganizerEmail      string `form:"organizer_email" json:"organizer_email" binding:"required"`
	OrganizerPhone      string `form:"organizer_phone" json:"organizer_phone" binding:"required,phone"`
	Organization        string `form:"organization" json:"organization"`
	ExpectedAttendees   int    `form:"expected_attendees" json:"expected_attendees" binding:"required,min=1,max=200"`
	MeetingDate         string `form:"meeting_date" json:"meeting_date" binding:"required,datetime=2006-01-02"`
	StartTime           string `form:"start_time" json:"start_time" binding:"required,hhmm"`
	EndTime             string `form:"end_time" json:"end_time" binding:"required,hhmm"`
	DurationHours       string `form:"duration_hours" json:"duration_hours"`
	SpecialRequirements string `form:"special_requirements" json:"special_requirements"`
}

// ToModel builds a booking. An empty duration is derived from the times by the service.
func (r PreconferenceRequest) ToModel() (*preconference.Meeting, error) {
	m := preconference.New()
	m.SessionTitle = strings.TrimSpace(r.SessionTitle)
	m.Description = r.Description
	m.SessionType = r.SessionType
	m.OrganizerName = strings.TrimSpace(r.OrganizerName)
	m.OrganizerEmail = strings.TrimSpace(r.OrganizerEmail)
	m.OrganizerPhone = strings.TrimSpace(r.OrganizerPhone)
	m.Organization = r.Organization
	m.ExpectedAttendees = r.ExpectedAttendees
	m.StartTime = r.StartTime
	m.EndTime = r.EndTime
	m.SpecialRequirements = r.SpecialRequirements

	date, err := time.Parse(preconference.DateLayout, r.MeetingDate)
	if err != nil {
		return nil, fieldError("meeting_date", "must be a date in 2006-01-02 format")
	}
	m.MeetingDate = date

	if s := strings.TrimSpace(r.DurationHours); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fieldError("duration_hours", "must be a number")
		}
		m.DurationHours = d
	}
	return m, nil
}

// StatusRequest sets a single-axis review status.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PreconferenceStatusRequest updates either review axis of a meeting.
type PreconferenceStatusRequest struct {
	ApprovalStatus *string `json:"approval_status"`
	PaymentStatus  *string `json:"payment_status"`
}

// ToChange converts the request to a domain change.
func (r PreconferenceStatusRequest) ToChange() preconference.StatusChange {
	var change preconference.StatusChange
	if r.ApprovalStatus != nil {
		s := submission.Status(*r.ApprovalStatus)
		change.Approval = &s
	}
	if r.PaymentStatus != nil {
		p := submission.PaymentStatus(*r.PaymentStatus)
		change.Payment = &p
	}
	return change
}

func fieldError(field, msg string) error {
	return apperror.NewFieldError(field+" "+msg, field, msg)
}
