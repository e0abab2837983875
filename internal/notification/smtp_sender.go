package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender delivers a single message through a plain SMTP gateway. It is
// the terminal hop used by the notifier worker; the API process never talks
// SMTP directly.
type SMTPSender struct {
	Addr string // host:port
	From string
	Auth smtp.Auth
}

func NewSMTPSender(addr, from string, auth smtp.Auth) *SMTPSender {
	return &SMTPSender{Addr: addr, From: from, Auth: auth}
}

func (s *SMTPSender) Send(ctx context.Context, recipient, subject, bodyHTML string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(bodyHTML)

	return smtp.SendMail(s.Addr, s.Auth, s.From, []string{recipient}, []byte(msg.String()))
}
