// Package mailer sends booking mails over SMTP. Delivery is best effort;
// callers log failures and move on.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"termin/pkg/config"
	"termin/pkg/logger"
)

type Mailer struct {
	host       string
	port       int
	user       string
	pass       string
	adminEmail string
	baseURL    string
	log        *logger.Logger
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		user:       cfg.SMTPUser,
		pass:       cfg.SMTPPass,
		adminEmail: cfg.AdminEmail,
		baseURL:    cfg.BaseURL,
		log:        cfg.Log,
	}
}

// SendConfirmation mails the requester that their appointment is booked.
func (m *Mailer) SendConfirmation(to string, start, end time.Time) error {
	when := fmt.Sprintf("%s (until %s)",
		start.Local().Format("Monday, 2 January 2006 15:04"),
		end.Local().Format("15:04"),
	)
	body := fmt.Sprintf(
		"<p>Your appointment is confirmed:</p><p><b>%s</b></p><p><a href=%q>Website</a></p>",
		when, m.baseURL,
	)
	return m.send([]string{to}, "Appointment confirmation", body)
}

// SendAdminAlert mails the configured admin address about a new booking.
func (m *Mailer) SendAdminAlert(requesterEmail string, start, end time.Time) error {
	body := fmt.Sprintf(
		"<p>Email: %s</p><p>Start: %s</p><p>End: %s</p>",
		requesterEmail,
		start.Format(time.RFC3339),
		end.Format(time.RFC3339),
	)
	return m.send([]string{m.adminEmail}, "New appointment booked", body)
}

func (m *Mailer) send(to []string, subject string, htmlBody string) error {
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Termin <%s>\r\n", m.user)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.user, m.pass, m.host)

	if err := smtp.SendMail(addr, auth, m.user, to, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.log.Info("Mail sent", "to", to, "subject", subject)
	return nil
}
