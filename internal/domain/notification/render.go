package notification

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
)

// Links are the base URLs placed in e-mails.
type Links struct {
	SiteURL string // public site, for submitter e-mails
	APIURL  string // admin download links
}

var kindTitles = map[Kind]string{
	KindRegistration:  "conference registration",
	KindAbstract:      "abstract submission",
	KindSponsorship:   "sponsorship application",
	KindExhibitor:     "exhibitor application",
	KindPreconference: "pre-conference meeting booking",
}

var eventSubjects = map[Event]string{
	EventReceived:      "We received your %s",
	EventApproved:      "Your %s has been approved",
	EventRejected:      "Update on your %s",
	EventPaid:          "Payment confirmed for your %s",
	EventCancelled:     "Your %s has been cancelled",
	EventNewSubmission: "New %s",
}

var eventLines = map[Event]string{
	EventReceived:      "Thank you. We have received your {{.Title}}. Our team will review it and get back to you shortly.",
	EventApproved:      "We are pleased to let you know that your {{.Title}} has been approved.",
	EventRejected:      "After careful review we are unable to approve your {{.Title}} at this time.",
	EventPaid:          "We have confirmed the payment for your {{.Title}}.",
	EventCancelled:     "Your {{.Title}} has been cancelled. Contact the secretariat if this is unexpected.",
	EventNewSubmission: "A new {{.Title}} was submitted by {{.Name}} ({{index .Data \"submitter_email\"}}).",
}

// overrides replace the default line for a specific kind and event.
var overrides = map[key]string{
	{KindAbstract, EventApproved}:      "We are pleased to let you know that your abstract has been accepted for presentation. Session details will follow.",
	{KindRegistration, EventApproved}:  "Your registration and payment have been verified. We look forward to welcoming you.",
	{KindPreconference, EventApproved}: "Your pre-conference meeting booking has been approved. Please complete the payment to confirm the slot.",
	{KindPreconference, EventPaid}:     "Payment for your pre-conference meeting has been confirmed. Your session on {{index .Data \"meeting_date\"}} is booked.",
}

const layout = `<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#222">
<p>Dear {{.Greeting}},</p>
<p>{{.Line}}</p>
<p>Reference: <strong>{{.Reference}}</strong></p>
{{- if .Links}}
<ul>{{range .Links}}<li><a href="{{.URL}}">{{.Label}}</a></li>{{end}}</ul>
{{- end}}
<p><a href="{{.SiteURL}}">{{.SiteURL}}</a></p>
<p>Kind regards,<br>Conference Secretariat</p>
</body></html>`

type key struct {
	kind  Kind
	event Event
}

type link struct {
	Label string
	URL   string
}

type view struct {
	Title     string
	Greeting  string
	Name      string
	Reference string
	Data      map[string]string
	Line      template.HTML
	Links     []link
	SiteURL   string
}

// Renderer renders messages with html/template.
type Renderer struct {
	links  Links
	page   *template.Template
	bodies map[key]*template.Template
}

// NewRenderer parses a template for every kind and event pair.
func NewRenderer(links Links) (*Renderer, error) {
	page, err := template.New("layout").Parse(layout)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{
		links:  links,
		page:   page,
		bodies: make(map[key]*template.Template),
	}
	for kind := range kindTitles {
		for event, line := range eventLines {
			k := key{kind, event}
			if o, ok := overrides[k]; ok {
				line = o
			}
			t, err := template.New(string(kind) + "/" + string(event)).Parse(line)
			if err != nil {
				return nil, fmt.Errorf("parse %s/%s: %w", kind, event, err)
			}
			r.bodies[k] = t
		}
	}
	return r, nil
}

// Render builds the e-mail for msg.
func (r *Renderer) Render(msg Message) (Email, error) {
	if err := msg.Validate(); err != nil {
		return Email{}, err
	}
	body, ok := r.bodies[key{msg.Kind, msg.Event}]
	if !ok {
		return Email{}, fmt.Errorf("no template for %s/%s", msg.Kind, msg.Event)
	}

	v := view{
		Title:     kindTitles[msg.Kind],
		Name:      msg.Name,
		Reference: msg.Reference,
		Data:      msg.Data,
		SiteURL:   r.links.SiteURL,
	}
	v.Greeting = v.Name
	if v.Greeting == "" {
		v.Greeting = "Participant"
	}
	if msg.Event == EventNewSubmission {
		v.Greeting = "Secretariat"
		v.Links = r.documentLinks(msg)
	}

	var line bytes.Buffer
	if err := body.Execute(&line, v); err != nil {
		return Email{}, fmt.Errorf("render %s/%s: %w", msg.Kind, msg.Event, err)
	}
	// body templates are html/template too, so the output is already escaped
	v.Line = template.HTML(line.String())

	var out bytes.Buffer
	if err := r.page.Execute(&out, v); err != nil {
		return Email{}, fmt.Errorf("render layout: %w", err)
	}

	return Email{
		To:       msg.To,
		Subject:  fmt.Sprintf(eventSubjects[msg.Event], v.Title) + " (" + msg.Reference + ")",
		HTMLBody: out.String(),
		TextBody: textBody(v, line.String()),
	}, nil
}

func (r *Renderer) documentLinks(msg Message) []link {
	if msg.EntityID == "" || r.links.APIURL == "" {
		return nil
	}
	base := strings.TrimRight(r.links.APIURL, "/")
	links := make([]link, 0, len(msg.Documents))
	for _, doc := range msg.Documents {
		links = append(links, link{
			Label: doc,
			URL:   fmt.Sprintf("%s/api/admin/files/%s/%s/%s", base, msg.Kind.RoutePath(), msg.EntityID, doc),
		})
	}
	return links
}

func textBody(v view, line string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n%s\n\nReference: %s\n", v.Greeting, html.UnescapeString(line), v.Reference)
	for _, l := range v.Links {
		fmt.Fprintf(&b, "%s: %s\n", l.Label, l.URL)
	}
	fmt.Fprintf(&b, "\n%s\n\nKind regards,\nConference Secretariat\n", v.SiteURL)
	return b.String()
}
