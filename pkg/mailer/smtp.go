package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"audit-auth/pkg/utils"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends codes as plain-text mail. With TLS set it dials an
// implicit-TLS connection, otherwise it relies on smtp.SendMail's STARTTLS.
type SMTPNotifier struct {
	cfg     utils.EmailConfig
	appName string
	send    sendFunc
}

func NewSMTPNotifier(cfg utils.EmailConfig, appName string) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:     cfg,
		appName: appName,
		send:    smtp.SendMail,
	}
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, msg OTPMessage) error {
	if !n.cfg.Enabled() {
		return fmt.Errorf("email is not configured")
	}

	subject, body := Render(n.appName, msg)
	raw := buildMessage(n.cfg.From, msg.To, subject, body)
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	if n.cfg.TLS {
		return n.sendTLS(ctx, addr, msg.To, raw)
	}

	if err := n.send(addr, n.auth(), n.cfg.From, []string{msg.To}, raw); err != nil {
		return fmt.Errorf("send %s code: %w", msg.Purpose, err)
	}
	return nil
}

func (n *SMTPNotifier) auth() smtp.Auth {
	if n.cfg.User == "" {
		return nil
	}
	return smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
}

func (n *SMTPNotifier) sendTLS(ctx context.Context, addr, to string, raw []byte) error {
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: n.cfg.Host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Quit()

	if auth := n.auth(); auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(n.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}

func buildMessage(from, to, subject, body string) []byte {
	headers := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="UTF-8"`,
		"",
		body,
	}
	return []byte(strings.Join(headers, "\r\n"))
}
