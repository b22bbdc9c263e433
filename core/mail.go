package core

import "net/mail"

type (
	// EmailMessage is a plain-text mail. All mail this app sends is short
	// transactional text (welcome, password reset); no templates, no attachments.
	EmailMessage struct {
		To          []mail.Address
		Subject     string
		TextContent string
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently.
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.TextContent != "" }
