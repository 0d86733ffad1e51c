package notify

import (
	"fmt"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/nexchakra/showcase/internal/domain"
)

// Settings provides SMTP configuration from sys_config
type Settings interface {
	GetString(category, name string) string
	GetInt(category, name string) int
}

// Sender delivers a composed message; gomail in production, a fake in tests
type Sender interface {
	Send(m *gomail.Message) error
}

type smtpSender struct {
	settings Settings
}

func (s *smtpSender) Send(m *gomail.Message) error {
	host := s.settings.GetString("smtp", "host")
	if host == "" {
		return fmt.Errorf("smtp not configured")
	}
	port := s.settings.GetInt("smtp", "port")
	if port == 0 {
		port = 587
	}
	dialer := gomail.NewDialer(host, port,
		s.settings.GetString("smtp", "username"),
		s.settings.GetString("smtp", "password"))
	return dialer.DialAndSend(m)
}

// Mailer sends order confirmation mails off the order.paid topic, using a
// bounded worker pool so slow SMTP never blocks checkout paths.
type Mailer struct {
	db       *gorm.DB
	settings Settings
	sender   Sender
	pool     *ants.Pool
}

func NewMailer(bus *Bus, db *gorm.DB, settings Settings) (*Mailer, error) {
	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}
	m := &Mailer{
		db:       db,
		settings: settings,
		sender:   &smtpSender{settings: settings},
		pool:     pool,
	}
	if err := bus.SubscribeOrder("order.paid", m.OnOrderPaid); err != nil {
		return nil, err
	}
	return m, nil
}

// OnOrderPaid queues a confirmation mail for the paying customer
func (m *Mailer) OnOrderPaid(evt OrderEvent) {
	err := m.pool.Submit(func() {
		if err := m.sendConfirmation(evt); err != nil {
			zap.L().Warn("order confirmation mail failed",
				zap.String("order_no", evt.OrderNo), zap.Error(err))
		}
	})
	if err != nil {
		zap.L().Warn("mail worker pool rejected task", zap.Error(err))
	}
}

func (m *Mailer) sendConfirmation(evt OrderEvent) error {
	var cust domain.Customer
	if err := m.db.First(&cust, evt.CustomerId).Error; err != nil {
		return err
	}

	from := m.settings.GetString("smtp", "from")
	if from == "" {
		from = "noreply@nexchakra.com"
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", cust.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Your NexChakra order %s is confirmed", evt.OrderNo))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nWe received your payment of %s for order %s.\nWe'll let you know when it ships.\n\nNexChakra",
		cust.Name, evt.Total.StringFixed(2), evt.OrderNo))

	return m.sender.Send(msg)
}

// Release stops the worker pool
func (m *Mailer) Release() {
	m.pool.Release()
}
