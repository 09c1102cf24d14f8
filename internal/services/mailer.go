package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/taskward-dev/taskward/internal/config"
)

// Mailer sends account-confirmation and password-reset emails. With no SMTP
// host configured it becomes a no-op, so local setups and tests work without
// a mail server. Delivery is best-effort; callers run it in a goroutine and
// only log failures.
type Mailer struct {
	cfg         config.SMTPConfig
	frontendURL string
}

func NewMailer(cfg config.SMTPConfig, frontendURL string) *Mailer {
	return &Mailer{cfg: cfg, frontendURL: frontendURL}
}

func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

func (m *Mailer) SendConfirmation(name, email, token string) error {
	subject := "Taskward - Confirm your account"
	body := fmt.Sprintf(
		`<p>Hi %s! Welcome to Taskward. Please confirm your account by clicking the link below:</p>
<a href="%s/confirm/%s">Confirm Your Account</a>
<p>If you did not create this account, please ignore this message.</p>`,
		name, m.frontendURL, token,
	)

	return m.send(email, subject, body)
}

func (m *Mailer) SendPasswordReset(name, email, token string) error {
	subject := "Taskward - Reset your password"
	body := fmt.Sprintf(
		`<p>Hi %s! You have requested to reset your password. Please click the link below and follow the instructions to generate a new password:</p>
<a href="%s/forgot-password/%s">Reset Password</a>
<p>If you have not requested to reset your password, please ignore this message.</p>`,
		name, m.frontendURL, token,
	)

	return m.send(email, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.Enabled() {
		return nil
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", m.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	return smtp.SendMail(addr, auth, m.fromAddress(), []string{to}, []byte(msg.String()))
}

// fromAddress strips an RFC 5322 display name down to the bare address the
// SMTP envelope requires.
func (m *Mailer) fromAddress() string {
	from := m.cfg.From
	if start := strings.LastIndex(from, "<"); start >= 0 {
		if end := strings.LastIndex(from, ">"); end > start {
			return from[start+1 : end]
		}
	}
	return from
}
