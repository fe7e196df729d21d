// Package mailer delivers verification bearers and reset codes. LogMailer
// writes them to the server log; S3OutboxMailer drops one JSON document per
// message into an S3 bucket for an external sender to pick up.
package mailer

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

type MessageKind string

const (
	KindVerifyEmail   MessageKind = "verify_email"
	KindResetPassword MessageKind = "reset_password"
)

// Message is the outbox document format.
type Message struct {
	Kind      MessageKind `json:"kind"`
	To        string      `json:"to"`
	Name      string      `json:"name,omitempty"`
	Subject   string      `json:"subject"`
	Text      string      `json:"text"`
	Secret    string      `json:"secret"`
	CreatedAt time.Time   `json:"created_at"`
}

var timeNow = time.Now

func verificationMessage(user *models.User, token string) Message {
	return Message{
		Kind:      KindVerifyEmail,
		To:        user.Email,
		Name:      user.Name,
		Subject:   "Confirm your email address",
		Text:      fmt.Sprintf("Use this token to confirm your email address:\n\n%s\n", token),
		Secret:    token,
		CreatedAt: timeNow().UTC(),
	}
}

func resetMessage(email, code string) Message {
	return Message{
		Kind:      KindResetPassword,
		To:        email,
		Subject:   "Password reset code",
		Text:      fmt.Sprintf("Your password reset code is %s\n", code),
		Secret:    code,
		CreatedAt: timeNow().UTC(),
	}
}
