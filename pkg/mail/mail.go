// Package mail provides a fluent mailer with a swappable transport.
//
//	mail.To(user.Email).
//	    Subject("Order confirmation #42").
//	    Template("order_confirmation.html", data).
//	    Send(ctx)
//
// Templates are registered once at boot from any fs.FS (usually an embed.FS)
// and addressed by file name. SMTP is the default transport; tests install a
// recorder through SetTransport.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/smtp"
	"strings"
	"sync"

	"github.com/shashiranjanraj/storefront/config"
)

// Envelope is a fully rendered message handed to a Transport.
type Envelope struct {
	From    string
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Body    string
	HTML    bool
}

// Recipients returns To, CC and BCC combined.
func (e Envelope) Recipients() []string {
	out := make([]string, 0, len(e.To)+len(e.CC)+len(e.BCC))
	out = append(out, e.To...)
	out = append(out, e.CC...)
	return append(out, e.BCC...)
}

// Transport delivers a rendered envelope.
type Transport interface {
	Deliver(ctx context.Context, env Envelope) error
}

// ErrNotConfigured is returned by the SMTP transport when MAIL_HOST is empty.
var ErrNotConfigured = errors.New("mail: smtp not configured")

var (
	mu        sync.RWMutex
	transport Transport = NewSMTPTransport(SMTPFromEnv())
	templates           = template.New("mail")
)

// SetTransport replaces the process-wide transport and returns the old one.
func SetTransport(t Transport) Transport {
	mu.Lock()
	defer mu.Unlock()
	prev := transport
	transport = t
	return prev
}

func currentTransport() Transport {
	mu.RLock()
	defer mu.RUnlock()
	return transport
}

// RegisterTemplates parses every file in fsys matching patterns. Templates are
// addressed by base file name.
func RegisterTemplates(fsys fs.FS, patterns ...string) error {
	mu.Lock()
	defer mu.Unlock()
	t, err := templates.ParseFS(fsys, patterns...)
	if err != nil {
		return fmt.Errorf("mail: parse templates: %w", err)
	}
	templates = t
	return nil
}

// Render executes a registered template.
func Render(name string, data any) (string, error) {
	mu.RLock()
	t := templates.Lookup(name)
	mu.RUnlock()
	if t == nil {
		return "", fmt.Errorf("mail: template %q not registered", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("mail: render %q: %w", name, err)
	}
	return buf.String(), nil
}

// ─── Message builder ──────────────────────────────────────────────────────────

type Message struct {
	env Envelope
	err error
}

// To starts a message to the given recipients.
func To(addresses ...string) *Message {
	return &Message{env: Envelope{To: addresses, HTML: true}}
}

func (m *Message) CC(addresses ...string) *Message {
	m.env.CC = append(m.env.CC, addresses...)
	return m
}

func (m *Message) BCC(addresses ...string) *Message {
	m.env.BCC = append(m.env.BCC, addresses...)
	return m
}

func (m *Message) Subject(s string) *Message {
	m.env.Subject = s
	return m
}

// Body sets an HTML body.
func (m *Message) Body(html string) *Message {
	m.env.Body = html
	m.env.HTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.env.Body = text
	m.env.HTML = false
	return m
}

// Template renders a registered template as the HTML body. A render error is
// kept and returned by Send.
func (m *Message) Template(name string, data any) *Message {
	body, err := Render(name, data)
	if err != nil {
		m.err = err
		return m
	}
	return m.Body(body)
}

// Envelope returns the message as it would be delivered.
func (m *Message) Envelope() Envelope { return m.env }

// Send delivers the message through the current transport.
func (m *Message) Send(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	if len(m.env.To) == 0 {
		return errors.New("mail: no recipients")
	}
	return currentTransport().Deliver(ctx, m.env)
}

// ─── SMTP transport ───────────────────────────────────────────────────────────

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func SMTPFromEnv() SMTPConfig {
	return SMTPConfig{
		Host:     config.Get("MAIL_HOST", ""),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "orders@storefront.local"),
		FromName: config.Get("MAIL_FROM_NAME", "Storefront"),
	}
}

type SMTPTransport struct {
	cfg SMTPConfig
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport { return &SMTPTransport{cfg: cfg} }

func (s *SMTPTransport) Deliver(ctx context.Context, env Envelope) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if env.From == "" {
		env.From = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	addr := net.JoinHostPort(s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	raw := buildRaw(env)

	// 465 is implicit TLS; everything else negotiates STARTTLS in SendMail.
	if s.cfg.Port == "465" {
		return s.sendTLS(ctx, addr, auth, env.Recipients(), raw)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, env.Recipients(), raw)
}

func (s *SMTPTransport) sendTLS(ctx context.Context, addr string, auth smtp.Auth, to []string, raw []byte) error {
	dialer := &tls.Dialer{Config: &tls.Config{ServerName: s.cfg.Host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mail: tls dial: %w", err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Quit() //nolint:errcheck

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
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

func buildRaw(env Envelope) []byte {
	contentType := "text/plain"
	if env.HTML {
		contentType = "text/html"
	}
	var b strings.Builder
	b.WriteString("From: " + env.From + "\r\n")
	b.WriteString("To: " + strings.Join(env.To, ", ") + "\r\n")
	if len(env.CC) > 0 {
		b.WriteString("Cc: " + strings.Join(env.CC, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + env.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(env.Body)
	return []byte(b.String())
}
