package notices

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/haythemsaa/boxibox-backend/pkg/config"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	pkgerrors "github.com/haythemsaa/boxibox-backend/pkg/errors"
)

// SMTPSender delivers email notices over SMTP. Non-email channels are
// rejected; registered mail never reaches a sender.
type SMTPSender struct {
	addr string
	host string
	from string
	auth smtp.Auth
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender builds a sender from the notices configuration.
func NewSMTPSender(cfg config.NoticesConfig) (*SMTPSender, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("from address is required")
	}
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		host: cfg.SMTPHost,
		from: cfg.FromAddress,
		auth: auth,
		send: smtp.SendMail,
	}, nil
}

// Send delivers one notice email.
func (s *SMTPSender) Send(ctx context.Context, channel enums.NoticeChannel, recipient, subject, content string) error {
	if channel != enums.NoticeChannelEmail {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("channel %s has no automated transport", channel))
	}
	if recipient == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient address is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.from, recipient, subject, content)
	if err := s.send(s.addr, s.auth, s.from, []string{recipient}, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending email")
	}
	return nil
}

func buildMessage(from, to, subject, content string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(content)
	return []byte(b.String())
}
