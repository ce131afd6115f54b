// file: internals/features/attendance/notifications/transport/smtp_email.go
package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"strings"
)

/* =========================
   Email via SMTP relay
========================= */

type SmtpEmailSender struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewSmtpEmailSender: host kosong → channel email tidak tersedia (return nil).
func NewSmtpEmailSender(host, port, user, pass, from string) *SmtpEmailSender {
	if host == "" {
		return nil
	}
	if from == "" {
		from = user
	}
	return &SmtpEmailSender{host: host, port: port, user: user, pass: pass, from: from}
}

// SendEmail menjalankan sesi SMTP manual di atas koneksi ber-deadline:
// dial lewat DialContext dan deadline ctx diturunkan ke conn, jadi relay
// yang hang tidak meninggalkan goroutine lewat dari timeout channel.
func (s *SmtpEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(s.host, s.port))
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if s.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.user, s.pass, s.host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(s.from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
