package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Mailer is what the service and worker send through; content stays
// minimal, delivery is best-effort.
type Mailer interface {
	SendRegistrationEmail(eventTitle, state, recipient string, timeoutMinutes int) error
	SendMembershipEmail(state, recipient string) error
}

type SMTP struct {
	host string
	addr string
	from string
	pass string
	log  *zerolog.Logger
}

func NewSMTP(host string, port int, from, pass string, log *zerolog.Logger) *SMTP {
	return &SMTP{
		host: host,
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		pass: pass,
		log:  log,
	}
}

func (m *SMTP) SendRegistrationEmail(eventTitle, state, recipient string, timeoutMinutes int) error {
	var subject, body string
	switch state {
	case "pending":
		subject = "Registration received: " + eventTitle
		body = fmt.Sprintf("Hi!\n\nYour spot for \"%s\" is held. Submit your payment reference within %d minutes or the seat is released.", eventTitle, timeoutMinutes)
	case "confirmed":
		subject = "Registration confirmed: " + eventTitle
		body = fmt.Sprintf("Hi!\n\nYour registration for \"%s\" is confirmed. See you there!", eventTitle)
	case "expired":
		subject = "Registration expired: " + eventTitle
		body = fmt.Sprintf("Hi!\n\nYour registration for \"%s\" was released because the payment window closed.", eventTitle)
	default:
		subject = "Registration update: " + eventTitle
		body = fmt.Sprintf("Hi!\n\nYour registration for \"%s\" was updated.", eventTitle)
	}
	return m.send(recipient, subject, body, state)
}

func (m *SMTP) SendMembershipEmail(state, recipient string) error {
	var subject, body string
	switch state {
	case "pending":
		subject = "Membership application received"
		body = "Hi!\n\nYour membership application is in. We'll confirm once your payment is verified."
	case "approved":
		subject = "Welcome aboard!"
		body = "Hi!\n\nYour membership is approved. Your member card is available on your dashboard."
	case "rejected":
		subject = "Membership application update"
		body = "Hi!\n\nWe couldn't approve your membership application. Reply to this mail if you think this is a mistake."
	default:
		subject = "Membership update"
		body = "Hi!\n\nYour membership record was updated."
	}
	return m.send(recipient, subject, body, state)
}

func (m *SMTP) send(recipient, subject, body, state string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.from, recipient, subject, body,
	)

	auth := smtp.PlainAuth("", m.from, m.pass, m.host)
	if err := smtp.SendMail(m.addr, auth, m.from, []string{recipient}, []byte(msg)); err != nil {
		m.log.Warn().Msgf("failed to send email to %s: %v", recipient, err)
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Msgf("email sent to %s (state: %s)", recipient, state)
	return nil
}
