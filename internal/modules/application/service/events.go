package service

import (
	"context"
	"fmt"

	"anoa.com/campusrecruit/internal/entity"
	notification "anoa.com/campusrecruit/internal/modules/notification/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// transitions maps a requested status to the notification it triggers.
// Statuses without an entry notify nobody.
var transitions = map[entity.ApplicationStatus]entity.NotificationKind{
	entity.StatusAccepted:  entity.NotificationOffer,
	entity.StatusInterview: entity.NotificationInterviewInvite,
}

// Event is the outbound record of a committed transition.
type Event struct {
	ApplicationID uuid.UUID
	RecipientID   uuid.UUID
	Kind          entity.NotificationKind
	To            string
	StudentName   string
	CompanyName   string
	JobTitle      string
	Message       string
}

func transitionEvent(app *entity.Application, company *entity.CompanyProfile, status entity.ApplicationStatus, message *string) (Event, bool) {
	kind, ok := transitions[status]
	if !ok {
		return Event{}, false
	}

	ev := Event{ApplicationID: app.ID, Kind: kind}
	if app.Student != nil {
		ev.RecipientID = app.Student.UserID
		if u := app.Student.User; u != nil {
			ev.To = u.Email
			ev.StudentName = u.Name
		}
	}
	if company != nil {
		ev.CompanyName = company.DisplayName()
	}
	if app.Job != nil {
		ev.JobTitle = app.Job.Title
	}
	if message != nil && kind == entity.NotificationInterviewInvite {
		ev.Message = *message
	}
	return ev, true
}

// notify runs after the transition is committed. It is bounded by the mail
// timeout, survives request cancellation and never reports failure upward.
func (s *service) notify(ctx context.Context, ev Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.MailTimeout)
	defer cancel()

	args := notification.TemplateArgs{
		StudentName: ev.StudentName,
		CompanyName: ev.CompanyName,
		JobTitle:    ev.JobTitle,
		Note:        ev.Message,
	}

	logger := log.With().
		Str("application_id", ev.ApplicationID.String()).
		Str("kind", string(ev.Kind)).
		Logger()

	if s.dispatcher != nil {
		res, err := s.dispatcher.Dispatch(ctx, ev.Kind, ev.To, args)
		if err != nil {
			logger.Warn().Err(err).Str("outcome", res.Outcome).Msg("notification email not delivered")
		} else {
			logger.Info().Str("to", ev.To).Msg("notification email sent")
		}
	}

	if s.inbox == nil || ev.RecipientID == uuid.Nil {
		return
	}
	entry := &entity.Notification{
		UserID:        ev.RecipientID,
		ApplicationID: ev.ApplicationID,
		Kind:          ev.Kind,
		Title:         inboxTitle(ev),
		Body:          inboxBody(ev),
	}
	if err := s.inbox.CreateNotification(ctx, entry); err != nil {
		logger.Warn().Err(err).Msg("inbox entry not created")
	}
}

func inboxTitle(ev Event) string {
	rendered, err := notification.Render(ev.Kind, notification.TemplateArgs{
		CompanyName: ev.CompanyName,
		JobTitle:    ev.JobTitle,
	})
	if err != nil {
		return string(ev.Kind)
	}
	return rendered.Subject
}

func inboxBody(ev Event) string {
	switch ev.Kind {
	case entity.NotificationOffer:
		return fmt.Sprintf("Your application for %s at %s has been accepted.", ev.JobTitle, ev.CompanyName)
	case entity.NotificationInterviewInvite:
		body := fmt.Sprintf("%s invited you to interview for %s.", ev.CompanyName, ev.JobTitle)
		if ev.Message != "" {
			body += " " + ev.Message
		}
		return body
	}
	return ""
}
