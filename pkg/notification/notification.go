// Package notification delivers a Notification through each channel it
// declares.
//
//	type OrderPlaced struct{ Order models.Order }
//	func (n OrderPlaced) Via() []string { return []string{notification.Mail} }
//	func (n OrderPlaced) ToMail() notification.MailData { ... }
//
//	notification.SendAsync(ctx, user.Email, OrderPlaced{Order: o})
//
// Delivery is best effort: failures are logged and counted, never retried.
package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/http"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/mail"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
)

const (
	Mail  = "mail"
	Slack = "slack"
)

// asyncTimeout bounds one background delivery across all channels.
const asyncTimeout = 30 * time.Second

type Notification interface {
	Via() []string
}

// MailData describes the mail channel. Template wins over Body when set.
type MailData struct {
	To       string
	Subject  string
	Template string
	Data     any
	Body     string
}

type Mailable interface {
	ToMail() MailData
}

type SlackData struct {
	WebhookURL string
	Text       string
}

type Slackable interface {
	ToSlack() SlackData
}

var (
	poolMu sync.RWMutex
	pool   *workerpool.Pool
)

// SetPool installs the pool used by SendAsync. Without one, SendAsync
// delivers on a fresh goroutine.
func SetPool(p *workerpool.Pool) {
	poolMu.Lock()
	pool = p
	poolMu.Unlock()
}

// Send delivers n through every channel in n.Via() and returns the channel
// errors.
func Send(ctx context.Context, address string, n Notification) []error {
	var errs []error
	for _, channel := range n.Via() {
		err := dispatch(ctx, address, channel, n)
		outcome := "sent"
		if err != nil {
			outcome = "failed"
			errs = append(errs, err)
			logger.WithCtx(ctx).Error("notification: channel failed",
				"channel", channel, "notification", fmt.Sprintf("%T", n), "error", err)
		}
		metrics.Notifications.WithLabelValues(channel, outcome).Inc()
	}
	return errs
}

// SendAsync schedules Send on the worker pool. A full or closed pool drops
// the notification with a log line.
func SendAsync(ctx context.Context, address string, n Notification) {
	detached := context.WithoutCancel(ctx)
	task := func() {
		c, cancel := context.WithTimeout(detached, asyncTimeout)
		defer cancel()
		Send(c, address, n)
	}

	poolMu.RLock()
	p := pool
	poolMu.RUnlock()

	if p == nil {
		go task()
		return
	}
	if err := p.Submit(task); err != nil {
		metrics.Notifications.WithLabelValues("pool", "dropped").Inc()
		logger.WithCtx(ctx).Warn("notification: dropped", "notification", fmt.Sprintf("%T", n), "error", err)
	}
}

func dispatch(ctx context.Context, address, channel string, n Notification) error {
	switch channel {
	case Mail:
		m, ok := n.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", n)
		}
		return sendMail(ctx, address, m.ToMail())
	case Slack:
		s, ok := n.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", n)
		}
		return sendSlack(ctx, s.ToSlack())
	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

func sendMail(ctx context.Context, address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}
	msg := mail.To(to).Subject(d.Subject)
	if d.Template != "" {
		msg = msg.Template(d.Template, d.Data)
	} else {
		msg = msg.Body(d.Body)
	}
	return msg.Send(ctx)
}

func sendSlack(ctx context.Context, d SlackData) error {
	url := d.WebhookURL
	if url == "" {
		url = config.Get("SLACK_WEBHOOK_URL", "")
	}
	if url == "" {
		return fmt.Errorf("notification: slack webhook URL not configured")
	}
	resp, err := http.Post(url).
		Body(map[string]string{"text": d.Text}).
		Timeout(5 * time.Second).
		Send(ctx)
	if err != nil {
		return fmt.Errorf("notification: slack: %w", err)
	}
	return resp.Throw()
}
