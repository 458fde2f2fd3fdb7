// Package delivery sends the production report out: SMTP e-mail with the
// rendered HTML body plus an optional dashboard screenshot, and a Teams
// channel webhook with the plain-text summary card.
package delivery

import (
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Attachment is one file attached to the report e-mail.
type Attachment struct {
	Filename string
	MimeType string
	Content  []byte
}

// Message is one outgoing report e-mail.
type Message struct {
	Subject     string
	HTML        string
	To          []string
	Cc          []string
	Bcc         []string
	Attachments []Attachment
}

// Mailer sends report e-mails over SMTP.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
	ssl  bool
}

// NewMailerFromEnv builds a Mailer from SMTP_* env vars. Port defaults to
// 587 (STARTTLS); set SMTP_SECURE=true for implicit TLS on 465.
func NewMailerFromEnv() *Mailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: from,
		ssl:  os.Getenv("SMTP_SECURE") == "true",
	}
}

// Configured reports whether SMTP settings are present.
func (m *Mailer) Configured() bool {
	return m.host != "" && m.from != ""
}

// Send delivers one message and returns the generated message id.
func (m *Mailer) Send(msg Message) (string, error) {
	if !m.Configured() {
		return "", errors.New("SMTP is not configured")
	}
	if len(msg.To) == 0 {
		return "", errors.New("message has no recipients")
	}

	messageId := uuid.NewString()

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		gm.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		gm.SetHeader("Bcc", msg.Bcc...)
	}
	gm.SetHeader("Subject", msg.Subject)
	gm.SetHeader("Message-ID", "<"+messageId+"@apiplano>")
	gm.SetBody("text/html", msg.HTML)

	for _, att := range msg.Attachments {
		content := att.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
		}
		if att.MimeType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{
				"Content-Type": {att.MimeType},
			}))
		}
		gm.Attach(att.Filename, settings...)
	}

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	d.SSL = m.ssl
	if err := d.DialAndSend(gm); err != nil {
		return "", err
	}
	return messageId, nil
}
