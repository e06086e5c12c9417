// Package mail envoie les e-mails transactionnels de la boutique.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"sync"
	"time"

	"furniro_back_end/internal/models"

	gomail "github.com/wneessen/go-mail"
)

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order models.OrderView, invoicePDF []byte)
	SendOrderStatus(ctx context.Context, order models.Order)
	Close()
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer envoie en tâche de fond; les erreurs SMTP sont seulement loguées.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(msg *gomail.Msg) error
	wg   sync.WaitGroup
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	m := &SMTPMailer{cfg: cfg}
	m.send = m.dialAndSend
	log.Printf("✅ SMTP configuré (%s:%d)", cfg.Host, cfg.Port)
	return m
}

func (m *SMTPMailer) dialAndSend(msg *gomail.Msg) error {
	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthLogin),
			gomail.WithUsername(m.cfg.Username),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSend(msg)
}

func (m *SMTPMailer) SendOrderConfirmation(_ context.Context, order models.OrderView, invoicePDF []byte) {
	to := order.BillingDetails.Email
	msg, err := buildOrderConfirmation(m.cfg.From, order, invoicePDF)
	if err != nil {
		log.Printf("❌ Préparation e-mail de confirmation pour %s: %v", to, err)
		return
	}
	m.dispatch(to, msg)
}

func (m *SMTPMailer) SendOrderStatus(_ context.Context, order models.Order) {
	to := order.BillingDetails.Email
	msg, err := buildOrderStatus(m.cfg.From, order)
	if err != nil {
		log.Printf("❌ Préparation e-mail de statut pour %s: %v", to, err)
		return
	}
	m.dispatch(to, msg)
}

func (m *SMTPMailer) dispatch(to string, msg *gomail.Msg) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		log.Println("📤 Envoi de l'e-mail à", to)
		if err := m.send(msg); err != nil {
			log.Printf("❌ Erreur envoi e-mail à %s: %v", to, err)
		}
	}()
}

// Close attend la fin des envois en cours.
func (m *SMTPMailer) Close() {
	m.wg.Wait()
}

// LogMailer remplace l'envoi quand SMTP n'est pas configuré.
type LogMailer struct{}

func (LogMailer) SendOrderConfirmation(_ context.Context, order models.OrderView, _ []byte) {
	log.Printf("📧 (SMTP désactivé) confirmation de commande %s pour %s", order.ID.Hex(), order.BillingDetails.Email)
}

func (LogMailer) SendOrderStatus(_ context.Context, order models.Order) {
	log.Printf("📧 (SMTP désactivé) commande %s: %s", order.ID.Hex(), order.OrderStatus)
}

func (LogMailer) Close() {}

func buildOrderConfirmation(from string, order models.OrderView, invoicePDF []byte) (*gomail.Msg, error) {
	msg, err := newMsg(from, order.BillingDetails.Email)
	if err != nil {
		return nil, err
	}
	msg.Subject(fmt.Sprintf("Your Furniro order #%s", shortID(order.ID.Hex())))
	if err := msg.SetBodyHTMLTemplate(confirmationTmpl, order); err != nil {
		return nil, err
	}
	if len(invoicePDF) > 0 {
		if err := msg.AttachReader("invoice-"+order.ID.Hex()+".pdf", bytes.NewReader(invoicePDF)); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

func buildOrderStatus(from string, order models.Order) (*gomail.Msg, error) {
	msg, err := newMsg(from, order.BillingDetails.Email)
	if err != nil {
		return nil, err
	}
	msg.Subject(statusSubject(order.OrderStatus))
	if err := msg.SetBodyHTMLTemplate(statusTmpl, order); err != nil {
		return nil, err
	}
	return msg, nil
}

func newMsg(from, to string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(to); err != nil {
		return nil, err
	}
	return msg, nil
}

func statusSubject(status string) string {
	switch status {
	case models.StatusShipped:
		return "📦 Your Furniro order has shipped"
	case models.StatusOutForDelivery:
		return "🚚 Your Furniro order is out for delivery"
	case models.StatusDelivered:
		return "🎉 Your Furniro order was delivered"
	case models.StatusCancelled:
		return "❌ Your Furniro order was cancelled"
	default:
		return "📋 Update on your Furniro order"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

var funcs = template.FuncMap{
	"short": shortID,
	"mul":   func(a int64, b int) int64 { return a * int64(b) },
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #B88E2F;">Thank you for your order, {{.BillingDetails.FirstName}}!</h2>
		<p>Order <strong>#{{short .ID.Hex}}</strong> is being processed.</p>
		<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
			<tr style="background-color: #F9F1E7;"><th align="left">Product</th><th>Qty</th><th align="right">Total</th></tr>
			{{range .OrderItems}}<tr>
				<td>{{if .Product}}{{.Product.Name}}{{else}}Unavailable product{{end}}</td>
				<td align="center">{{.Quantity}}</td>
				<td align="right">{{if .Product}}Rs. {{mul .Product.Price .Quantity}}{{end}}</td>
			</tr>{{end}}
		</table>
		<p><strong>Total: Rs. {{.TotalAmount}}</strong> ({{.PaymentMethod}})</p>
		<p>Shipping to {{.ShippingAddress.StreetAddress}}, {{.ShippingAddress.City}}, {{.ShippingAddress.Country}}</p>
	</div>
</body>
</html>`))

var statusTmpl = template.Must(template.New("status").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; background-color: #f5f5f5; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 12px;">
		<h2>Order #{{short .ID.Hex}}: {{.OrderStatus}}</h2>
		<p>Hello {{.BillingDetails.FirstName}}, the status of your order is now <strong>{{.OrderStatus}}</strong>.</p>
	</div>
</body>
</html>`))
