// Package notify relays accepted fibre signups to the support mailbox over
// SMTP. Delivery is best-effort: callers log failures and carry on, so a
// mail outage never fails an otherwise valid signup.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/fibre-signup/internal/config"
)

// Notification carries everything support needs to provision a signup.
// It doubles as the "data" object echoed back in the signup response.
type Notification struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Site        string `json:"site"`
	Unit        string `json:"unit"`
	Package     string `json:"package"`
	Activation  string `json:"activation"`
	Notes       string `json:"notes"`
	SignupType  string `json:"signup_type"`
	CompanyName string `json:"company_name"`
	VATRegNo    string `json:"vat_reg_no"`
}

// Sender delivers signup notifications via an SMTP relay.
type Sender struct {
	host         string
	port         int
	username     string
	password     string
	from         string
	supportEmail string
	useTLS       bool
	suppress     bool
	timeout      time.Duration
}

// NewSender creates a Sender from mail configuration.
func NewSender(cfg config.MailConfig) *Sender {
	return &Sender{
		host:         cfg.Server,
		port:         cfg.Port,
		username:     cfg.Username,
		password:     cfg.Password,
		from:         cfg.DefaultSender,
		supportEmail: cfg.SupportEmail,
		useTLS:       cfg.UseTLS,
		suppress:     cfg.SuppressSend,
		timeout:      cfg.Timeout(),
	}
}

// Send formats and delivers a new-signup notification to the support
// mailbox. The recipient is fixed by configuration, never derived from
// the submission.
func (s *Sender) Send(ctx context.Context, n Notification) error {
	msg := s.buildMessage(n)

	if s.suppress {
		log.Printf("[Notify] Send suppressed (MAIL_SUPPRESS_SEND): signup for %s at %s", n.Name, n.Site)
		return nil
	}
	if s.host == "" {
		return fmt.Errorf("mail server not configured")
	}
	if s.supportEmail == "" {
		return fmt.Errorf("support email not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	if err := s.sendSMTP(ctx, addr, s.from, s.supportEmail, []byte(msg)); err != nil {
		return fmt.Errorf("send support email: %w", err)
	}
	log.Printf("[Notify] Support email sent for %s - %s - %s", n.Name, n.Unit, n.Site)
	return nil
}

// Subject returns the notification subject line for the payload.
func Subject(n Notification) string {
	return fmt.Sprintf("New Fibre Sign-Up: %s - %s - %s", n.Name, n.Unit, n.Site)
}

// HTMLBody returns the notification body for the payload.
func HTMLBody(n Notification) string {
	var b strings.Builder
	b.WriteString("<h2><strong>New sign-up received:</strong></h2>\r\n")
	b.WriteString("<p>\r\n")
	fmt.Fprintf(&b, "    Name: %s <br>\r\n", n.Name)
	fmt.Fprintf(&b, "    Email: %s <br>\r\n", n.Email)
	fmt.Fprintf(&b, "    Phone: %s <br>\r\n", n.Phone)
	fmt.Fprintf(&b, "    <strong> Site: %s </strong> <br>\r\n", n.Site)
	fmt.Fprintf(&b, "    Unit: %s <br>\r\n", n.Unit)
	fmt.Fprintf(&b, "    Package: %s <br>\r\n", n.Package)
	fmt.Fprintf(&b, "    Activation: %s <br>\r\n", n.Activation)
	fmt.Fprintf(&b, "    Notes: %s\r\n", n.Notes)
	b.WriteString("</p>\r\n")
	return b.String()
}

func (s *Sender) buildMessage(n Notification) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "From: %s\r\n", s.from)
	fmt.Fprintf(&buf, "To: %s\r\n", s.supportEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", Subject(n))
	fmt.Fprintf(&buf, "Message-ID: <%s@fibre-signup>\r\n", uuid.New().String())
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(HTMLBody(n))
	return buf.String()
}

// sendSMTP performs the SMTP transaction with the relay, using STARTTLS
// when configured and PLAIN auth when credentials are present.
func (s *Sender) sendSMTP(ctx context.Context, addr, from, to string, msg []byte) error {
	dialer := &net.Dialer{Timeout: s.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("SMTP connect to %s: %w", addr, err)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP client: %w", err)
	}
	defer c.Close()

	if s.useTLS {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return fmt.Errorf("STARTTLS: %w", err)
			}
		}
	}

	if s.username != "" && s.password != "" {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth: %w", err)
		}
	}

	if err := c.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}
	return c.Quit()
}
