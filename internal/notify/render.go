package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Message is a rendered email ready for a Mailer.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Renderer turns outbox payloads into messages with links back to the frontend.
type Renderer struct {
	templates   *template.Template
	frontendURL string
}

func NewRenderer(frontendURL string) (*Renderer, error) {
	t, err := template.New("notify").ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t, frontendURL: strings.TrimRight(frontendURL, "/")}, nil
}

type view struct {
	Payload
	Link string
}

func (r *Renderer) Render(p Payload) (Message, error) {
	var subject, link string
	switch p.Event {
	case EventInviteSent:
		subject = fmt.Sprintf("You're invited to join %s", p.ProjectTitle)
		link = r.frontendURL + "/invites"
	case EventInviteResponded:
		subject = fmt.Sprintf("%s %s your invite to %s", p.ActorName, p.Status, p.ProjectTitle)
		link = fmt.Sprintf("%s/projects/%s", r.frontendURL, p.ProjectID)
	case EventInterestShown:
		subject = fmt.Sprintf("%s is interested in %s", p.ActorName, p.ProjectTitle)
		link = fmt.Sprintf("%s/users/%s", r.frontendURL, p.ActorID)
	default:
		return Message{}, fmt.Errorf("unknown email event %q", p.Event)
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, p.Event, view{Payload: p, Link: link}); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", p.Event, err)
	}
	return Message{To: p.To, Subject: subject, HTML: buf.String()}, nil
}
