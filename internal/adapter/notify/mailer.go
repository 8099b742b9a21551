package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rl1809/micro-shop/internal/core/domain"
	"github.com/rl1809/micro-shop/internal/port"
)

var _ port.Notifier = (*Mailer)(nil)

const confirmationSubject = "Your Order Tracking Number"

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer emails the customer their tracking number when an order is created.
type Mailer struct {
	addr string
	auth smtp.Auth
	from string
	send sendFunc
}

func NewMailer(host string, port int, user, password, from string) *Mailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &Mailer{
		addr: net.JoinHostPort(host, strconv.Itoa(port)),
		auth: auth,
		from: from,
		send: smtp.SendMail,
	}
}

func (m *Mailer) Notify(ctx context.Context, event domain.OrderEvent) error {
	if event.Kind != domain.OrderEventCreated {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := event.Transaction
	body := fmt.Sprintf("Thank you for your order. Your tracking number is: %s", tx.TrackingNumber)
	if err := m.send(m.addr, m.auth, m.from, []string{tx.Email}, m.message(tx.Email, body)); err != nil {
		return fmt.Errorf("send confirmation to %s: %w", tx.Email, err)
	}
	return nil
}

func (m *Mailer) message(to, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + m.from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + confirmationSubject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body + "\r\n")
	return []byte(b.String())
}
