// Package mailer sends notification emails over SMTP. Sending is
// synchronous: a failing transport surfaces as an error on the
// triggering request.
package mailer

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/gomail.v2"

	"aginventory/pkg/config"
)

var mailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inventory_mails_sent_total",
	Help: "Notification emails sent, by outcome.",
}, []string{"outcome"})

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(cfg *config.Config) *Mailer {
	port, _ := strconv.Atoi(cfg.SMTPPort)
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.MailPassword),
		from:   cfg.SMTPUser,
	}
}

// Send delivers a single HTML mail from the hardcoded sender identity.
func (m *Mailer) Send(to, subject, html string) error {
	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", html)
	if err := m.dialer.DialAndSend(message); err != nil {
		mailsSent.WithLabelValues("error").Inc()
		return err
	}
	mailsSent.WithLabelValues("ok").Inc()
	return nil
}
