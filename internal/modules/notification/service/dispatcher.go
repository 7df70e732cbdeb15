package service

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/pkg/mailer"
	"anoa.com/campusrecruit/pkg/metrics"
	"github.com/microcosm-cc/bluemonday"
)

var ErrNoRecipient = errors.New("notification has no recipient")

const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

var notePolicy = bluemonday.StrictPolicy()

// plainText strips any markup from a caller-supplied note for the text body.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(notePolicy.Sanitize(s)))
}

type DeliveryResult struct {
	Kind     entity.NotificationKind
	To       string
	Subject  string
	Outcome  string
	Duration time.Duration
}

// Dispatcher delivers one templated email. There is no retry: a failed
// dispatch is reported once and then dropped.
type Dispatcher interface {
	Dispatch(ctx context.Context, kind entity.NotificationKind, to string, args TemplateArgs) (DeliveryResult, error)
}

type dispatcher struct {
	sender mailer.Sender
	now    func() time.Time
}

func NewDispatcher(sender mailer.Sender) Dispatcher {
	return &dispatcher{sender: sender, now: time.Now}
}

func (d *dispatcher) Dispatch(ctx context.Context, kind entity.NotificationKind, to string, args TemplateArgs) (DeliveryResult, error) {
	result := DeliveryResult{Kind: kind, To: to, Outcome: OutcomeSkipped}
	if strings.TrimSpace(to) == "" {
		metrics.RecordDispatch(string(kind), result.Outcome, 0)
		return result, ErrNoRecipient
	}

	if args.SentAt.IsZero() {
		args.SentAt = d.now()
	}
	rendered, err := Render(kind, args)
	if err != nil {
		result.Outcome = OutcomeFailed
		metrics.RecordDispatch(string(kind), result.Outcome, 0)
		return result, err
	}
	result.Subject = rendered.Subject

	if d.sender == nil {
		metrics.RecordDispatch(string(kind), result.Outcome, 0)
		return result, mailer.ErrNotConfigured
	}

	start := time.Now()
	err = d.sender.Send(ctx, mailer.Message{
		To:      to,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	result.Duration = time.Since(start)

	switch {
	case err == nil:
		result.Outcome = OutcomeSent
	case errors.Is(err, mailer.ErrNotConfigured):
		result.Outcome = OutcomeSkipped
	default:
		result.Outcome = OutcomeFailed
	}
	metrics.RecordDispatch(string(kind), result.Outcome, result.Duration)
	return result, err
}
