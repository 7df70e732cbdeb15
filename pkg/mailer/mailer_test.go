package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromAddress(t *testing.T) {
	assert.Equal(t, "hr@campus.io", Config{From: "hr@campus.io", Username: "bot@gmail.com"}.FromAddress())
	assert.Equal(t, "bot@gmail.com", Config{Username: "bot@gmail.com"}.FromAddress())
	assert.Equal(t, "no-reply@campus.local", Config{}.FromAddress())
}

func TestSendWithoutCredentials(t *testing.T) {
	s := NewSMTPSender(Config{Host: "smtp.gmail.com", Port: 587})

	err := s.Send(context.Background(), Message{To: "a@b.c", Subject: "x", Text: "y"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	// the transport is resolved once
	err = s.Send(context.Background(), Message{To: "a@b.c", Subject: "x", Text: "y"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
