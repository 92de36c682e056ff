package libs

import (
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

type Attachment struct {
	Name string
	Data []byte
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, pass, from string) (*Mailer, error) {
	if host == "" || user == "" || pass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}
	if port == 0 {
		port = 587
	}
	if from == "" {
		from = user
	}
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}, nil
}

func (m *Mailer) Send(to, subject, body string, attachments ...Attachment) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	for _, a := range attachments {
		data := a.Data
		msg.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
