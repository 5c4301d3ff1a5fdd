// Package notify delivers the account emails: address verification and
// password reset. Messages are rendered once by a Composer and handed to a
// Sender, which is either an SMTP relay, an S3 mail drop or the log.
package notify

import (
	"context"
	"fmt"
)

// Message is the payload the account managers hand over for delivery.
type Message struct {
	To    string
	Name  string
	Token string
}

// Email is a fully rendered message ready for a Sender.
type Email struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Text     string `json:"text"`
	HTML     string `json:"html"`
	Link     string `json:"link"`
	Category string `json:"category"`
}

// Sender transports a rendered email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Mailer renders account messages and passes them to a Sender.
type Mailer struct {
	composer *Composer
	sender   Sender
}

func NewMailer(composer *Composer, sender Sender) *Mailer {
	return &Mailer{composer: composer, sender: sender}
}

// SendVerificationEmail sends the confirm-your-address link.
func (m *Mailer) SendVerificationEmail(ctx context.Context, msg Message) error {
	email, err := m.composer.Verification(msg)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// SendPasswordResetEmail sends the set-a-new-password link.
func (m *Mailer) SendPasswordResetEmail(ctx context.Context, msg Message) error {
	email, err := m.composer.PasswordReset(msg)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	return nil
}
