package slipsink

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"
)

// EmailConfig holds SMTP configuration for mailing slip copies
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
	To           []string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// emailTimeout bounds the whole SMTP exchange, greeting included
const emailTimeout = 30 * time.Second

// --- Email Sink (mails a copy to the accounts mailbox) ---

type emailSink struct {
	config  EmailConfig
	send    sendMailFunc
	now     func() time.Time
	timeout time.Duration
}

// NewEmailSink creates a sink that mails every slip as a PDF attachment.
func NewEmailSink(config EmailConfig) Sink {
	s := &emailSink{config: config, now: time.Now, timeout: emailTimeout}
	s.send = s.sendMail
	return s
}

func (s *emailSink) Deliver(slip *Staged) error {
	f, err := slip.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("slipsink: failed to read %s: %w", slip.Name(), err)
	}

	message, err := s.buildMessage(slip, body)
	if err != nil {
		return fmt.Errorf("slipsink: failed to build email: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)
	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, s.config.To, message); err != nil {
		return fmt.Errorf("slipsink: failed to send email: %w", err)
	}
	return nil
}

// sendMail works like smtp.SendMail but gives up once the timeout has passed,
// so a silent server cannot hold a delivery forever.
func (s *emailSink) sendMail(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		return err
	}

	c, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.config.SMTPHost}); err != nil {
			return err
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return err
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage builds a multipart message with the slip attached
func (s *emailSink) buildMessage(slip *Staged, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	sent := s.now()
	subject := "Invoice slip " + sent.Format("2006-01-02 15:04")
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", s.config.FromName), s.config.FromEmail)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(s.config.To, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", sent.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=\"UTF-8\""},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(text, "A new invoice slip was downloaded from the admin console.\r\n\r\n%s (%d bytes) is attached.\r\n", slip.Name(), len(body))

	attachment, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {fmt.Sprintf("%s; name=%q", slip.ContentType(), slip.Name())},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", slip.Name())},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	encoded := base64.StdEncoding.EncodeToString(body)
	for len(encoded) > 76 {
		io.WriteString(attachment, encoded[:76]+"\r\n")
		encoded = encoded[76:]
	}
	io.WriteString(attachment, encoded+"\r\n")

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *emailSink) Close() error {
	return nil
}

func (s *emailSink) IsReady() bool {
	return s.config.SMTPHost != "" && len(s.config.To) > 0
}
