package service

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

// Sender delivers a single message to a recipient address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender delivers mail over plain SMTP.
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(host, port, username, password string) *SMTPSender {
	return &SMTPSender{host: host, port: port, username: username, password: password}
}

// Send delivers the message via smtp.SendMail.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	addr := s.host + ":" + s.port
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := []byte(
		"From: " + s.username + "\r\n" +
			"To: " + to + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n" +
			"\r\n" +
			body,
	)

	if err := smtp.SendMail(addr, auth, s.username, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// LogSender only logs the message. Used when SMTP is not configured.
type LogSender struct {
	log *zap.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the message instead of delivering it.
func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	s.log.Info("notification (log sender)",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

// NotificationService sends order-related notifications. Delivery is
// best-effort throughout: a failed confirmation must never block a
// successful payment from being shown as such.
type NotificationService struct {
	sender Sender
	log    *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(sender Sender, log *zap.Logger) *NotificationService {
	return &NotificationService{sender: sender, log: log}
}

// SendOrderConfirmation mails an order summary to the customer.
func (s *NotificationService) SendOrderConfirmation(ctx context.Context, shipping domain.ShippingInfo, items []domain.CartItem, totals cart.Totals) error {
	subject := "Your order confirmation"
	body := formatOrderConfirmation(shipping, items, totals)

	if err := s.sender.Send(ctx, shipping.Email, subject, body); err != nil {
		s.log.Warn("order confirmation delivery failed",
			zap.String("email", shipping.Email),
			zap.Error(err),
		)
		return err
	}

	s.log.Info("order confirmation sent", zap.String("email", shipping.Email))
	return nil
}

// SendPaymentReceipt mails a short receipt once the processor confirms a
// payment. Amount is in minor units as reported by the processor.
func (s *NotificationService) SendPaymentReceipt(ctx context.Context, email string, amountTotal int64, currency string) error {
	subject := "Payment received"
	body := fmt.Sprintf(
		"We received your payment of %.2f %s.\n\nYour order is being prepared.\n",
		float64(amountTotal)/100, strings.ToUpper(currency),
	)

	if err := s.sender.Send(ctx, email, subject, body); err != nil {
		s.log.Warn("payment receipt delivery failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// formatOrderConfirmation renders a plain-text order summary.
func formatOrderConfirmation(shipping domain.ShippingInfo, items []domain.CartItem, totals cart.Totals) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hi %s,\n\nThanks for your order!\n\n", shipping.FirstName)
	b.WriteString("ORDER SUMMARY\n-------------\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s x%d  $%.2f\n", item.Name, item.Quantity, item.Price*float64(item.Quantity))
	}
	fmt.Fprintf(&b, "\nSubtotal: $%.2f\n", totals.Subtotal)
	fmt.Fprintf(&b, "Shipping: $%.2f\n", totals.Shipping)
	fmt.Fprintf(&b, "Tax:      $%.2f\n", totals.Tax)
	fmt.Fprintf(&b, "Total:    $%.2f\n\n", totals.Total)
	b.WriteString("SHIPPING TO\n-----------\n")
	fmt.Fprintf(&b, "%s %s\n%s\n%s %s\n%s\n",
		shipping.FirstName, shipping.LastName,
		shipping.Address, shipping.City, shipping.ZipCode, shipping.Country,
	)

	return b.String()
}
