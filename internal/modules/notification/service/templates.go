package service

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"anoa.com/campusrecruit/internal/entity"
)

var ErrUnknownKind = errors.New("unknown notification kind")

const sentOnLayout = "02 Jan 2006 15:04 MST"

// TemplateArgs is shared by the HTML and plain-text rendering of a kind.
type TemplateArgs struct {
	StudentName string
	CompanyName string
	JobTitle    string
	Note        string
	SentAt      time.Time
}

type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type mailTemplate struct {
	subject func(TemplateArgs) string
	html    *htmltemplate.Template
	text    *texttemplate.Template
}

// view is what the templates see; Note is already stripped of markup for the
// plain-text body and escaped by html/template for the HTML body.
type view struct {
	StudentName string
	CompanyName string
	JobTitle    string
	Note        string
	SentOn      string
}

const offerHTML = `<div style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>Congratulations, {{.StudentName}}!</h2>
  <p>Your application for the <strong>{{.JobTitle}}</strong> position at <strong>{{.CompanyName}}</strong> has been <strong>ACCEPTED</strong>.</p>
  <p>We are excited to move forward. Our team will reach out with next steps shortly.</p>
  <h3 style="margin-top:16px;">Next Steps</h3>
  <ol>
    <li>Please reply to confirm your acceptance.</li>
    <li>Share your availability for onboarding discussions.</li>
    <li>Prepare required documents (ID, transcripts, etc.).</li>
  </ol>
  <p style="color:#6b7280; font-size:12px; margin-top:16px;">Sent on: {{.SentOn}}</p>
  <p>Best regards,<br/>{{.CompanyName}} Team</p>
</div>
`

const offerText = `Congratulations, {{.StudentName}}! Your application for {{.JobTitle}} at {{.CompanyName}} has been ACCEPTED.

Next steps:
1) Reply to confirm acceptance
2) Share availability for onboarding discussion
3) Prepare required documents

Sent on: {{.SentOn}}`

const interviewHTML = `<div style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>Interview Invitation</h2>
  <p>Hi {{.StudentName}},</p>
  <p>{{.CompanyName}} would like to invite you to interview for the <strong>{{.JobTitle}}</strong> role.</p>
  {{- if .Note}}
  <p><strong>Details / Note from company:</strong><br/>{{.Note}}</p>
  {{- end}}
  <div style="margin-top:12px;">
    <h3 style="margin:0 0 6px 0;">Interview Logistics</h3>
    <ul>
      <li><strong>Format:</strong> Online/Onsite (reply with your preference)</li>
      <li><strong>Proposed date/time:</strong> Please reply with 2-3 suitable slots</li>
      <li><strong>Location/Link:</strong> Will be shared upon confirmation</li>
    </ul>
  </div>
  <p>Please reply to this email to coordinate timing.</p>
  <p style="color:#6b7280; font-size:12px;">Sent on: {{.SentOn}}</p>
  <p>Best regards,<br/>{{.CompanyName}} Talent Team</p>
</div>
`

const interviewText = `Hi {{.StudentName}},
{{.CompanyName}} invites you to interview for {{.JobTitle}}.
{{- if .Note}}
Details: {{.Note}}
{{- end}}

Interview logistics:
- Format: Online/Onsite (confirm preference)
- Proposed date/time: Please reply with 2-3 slots
- Location/Link: Will be shared upon confirmation

Please reply to coordinate timing.
Sent on: {{.SentOn}}`

var templates = map[entity.NotificationKind]mailTemplate{
	entity.NotificationOffer: {
		subject: func(a TemplateArgs) string {
			return fmt.Sprintf("Congratulations! %s accepted your application", a.CompanyName)
		},
		html: htmltemplate.Must(htmltemplate.New("offer.html").Parse(offerHTML)),
		text: texttemplate.Must(texttemplate.New("offer.txt").Parse(offerText)),
	},
	entity.NotificationInterviewInvite: {
		subject: func(a TemplateArgs) string {
			return fmt.Sprintf("Interview Invitation: %s at %s", a.JobTitle, a.CompanyName)
		},
		html: htmltemplate.Must(htmltemplate.New("interview.html").Parse(interviewHTML)),
		text: texttemplate.Must(texttemplate.New("interview.txt").Parse(interviewText)),
	},
}

// Render produces the subject and both bodies of kind from one argument set.
func Render(kind entity.NotificationKind, args TemplateArgs) (Rendered, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	sentAt := args.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}
	v := view{
		StudentName: args.StudentName,
		CompanyName: args.CompanyName,
		JobTitle:    args.JobTitle,
		Note:        strings.TrimSpace(args.Note),
		SentOn:      sentAt.Format(sentOnLayout),
	}

	var htmlBody bytes.Buffer
	if err := tmpl.html.Execute(&htmlBody, v); err != nil {
		return Rendered{}, fmt.Errorf("render %s html: %w", kind, err)
	}

	v.Note = plainText(v.Note)
	var textBody bytes.Buffer
	if err := tmpl.text.Execute(&textBody, v); err != nil {
		return Rendered{}, fmt.Errorf("render %s text: %w", kind, err)
	}

	return Rendered{
		Subject: tmpl.subject(args),
		HTML:    htmlBody.String(),
		Text:    textBody.String(),
	}, nil
}
