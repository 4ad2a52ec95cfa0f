package libs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"spooky-styles/config"
	"spooky-styles/logger"
	"spooky-styles/models"

	"gopkg.in/gomail.v2"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailService sends transactional mail over SMTP. Without SMTP_HOST it
// only logs what it would have sent.
type EmailService struct {
	sender      mailSender
	from        string
	frontendURL string
	currencies  Currencies
	log         *logger.Logger
}

// Currencies names the currency each payment provider charges in.
type Currencies struct {
	Stripe   string
	Paystack string
}

// For returns the currency code for provider, falling back to Stripe's
// and then USD.
func (c Currencies) For(provider string) string {
	code := c.Stripe
	if provider == models.PaymentProviderPaystack && c.Paystack != "" {
		code = c.Paystack
	}
	if code == "" {
		code = "USD"
	}
	return strings.ToUpper(code)
}

func NewEmailService(cfg config.SMTPConfig, frontendURL string, currencies Currencies, log *logger.Logger) *EmailService {
	s := &EmailService{from: cfg.From, frontendURL: frontendURL, currencies: currencies, log: log}
	if cfg.Host == "" {
		log.Warn().Msg("SMTP not configured, emails will be skipped")
		return s
	}
	s.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	return s
}

func (s *EmailService) send(ctx context.Context, to, subject, body string) error {
	if s.sender == nil {
		logger.FromContext(ctx).Info().Str("to", to).Str("subject", subject).Msg("email skipped, SMTP disabled")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	done := make(chan error, 1)
	go func() { done <- s.sender.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send email: %w", ctx.Err())
	}
}

func (s *EmailService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	body, err := render(orderConfirmationTmpl, s.orderView(order))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Order Confirmation #%s - Spooky Styles", order.OrderNumber)
	return s.send(ctx, order.Shipping.Email, subject, body)
}

func (s *EmailService) SendOrderStatusUpdate(ctx context.Context, order *models.Order) error {
	body, err := render(orderStatusTmpl, s.orderView(order))
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Your order #%s is now %s - Spooky Styles", order.OrderNumber, order.Status)
	return s.send(ctx, order.Shipping.Email, subject, body)
}

type orderLine struct {
	Name      string
	Quantity  int
	LineTotal string
}

type orderView struct {
	Name        string
	OrderNumber string
	Status      string
	Lines       []orderLine
	Subtotal    string
	Shipping    string
	Total       string
	LookupURL   string
}

func (s *EmailService) orderView(o *models.Order) orderView {
	cur := s.currencies.For(o.PaymentProvider)
	v := orderView{
		Name:        o.Shipping.FullName(),
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Subtotal:    FormatMoney(o.Subtotal.StringFixed(2), cur),
		Shipping:    FormatMoney(o.ShippingCost.StringFixed(2), cur),
		Total:       FormatMoney(o.Total.StringFixed(2), cur),
		LookupURL:   fmt.Sprintf("%s/orders/lookup?order_number=%s", s.frontendURL, o.OrderNumber),
	}
	for _, it := range o.Items {
		v.Lines = append(v.Lines, orderLine{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			LineTotal: FormatMoney(it.LineTotal().StringFixed(2), cur),
		})
	}
	return v
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"NGN": "₦",
	"GHS": "GH₵",
	"ZAR": "R",
	"KES": "KSh ",
}

// FormatMoney renders "1234.50" in USD as "$1,234.50". Currencies without a
// known symbol are prefixed with their code, e.g. "CAD 1,234.50".
func FormatMoney(amount, currency string) string {
	currency = strings.ToUpper(currency)
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}

	whole, frac := amount, ""
	for i := range amount {
		if amount[i] == '.' {
			whole, frac = amount[:i], amount[i:]
			break
		}
	}
	neg := len(whole) > 0 && whole[0] == '-'
	if neg {
		whole = whole[1:]
	}

	var b bytes.Buffer
	for i, d := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}

	out := symbol + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render email: %w", err)
	}
	return buf.String(), nil
}

const emailLayout = `<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #111; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: #fff; padding: 30px; border-radius: 10px; }
        .logo { font-size: 24px; font-weight: bold; color: #f97316; text-align: center; margin-bottom: 30px; }
        .order-box { background-color: #fff7ed; padding: 20px; margin: 20px 0; border-radius: 8px; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
        td { padding: 4px 8px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">Spooky Styles</div>
        {{template "content" .}}
        <div class="footer">
            <p>Track your order any time: <a href="{{.LookupURL}}">{{.OrderNumber}}</a></p>
            <p>&copy; Spooky Styles. All rights reserved.</p>
        </div>
    </div>
</body>
</html>`

var orderConfirmationTmpl = template.Must(template.Must(template.New("layout").Parse(emailLayout)).New("content").Parse(`
        <h2>Thank you for your order, {{.Name}}!</h2>
        <div class="order-box">
            <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
            <table>
                {{range .Lines}}<tr><td>{{.Name}}</td><td>x{{.Quantity}}</td><td>{{.LineTotal}}</td></tr>{{end}}
            </table>
            <p>Subtotal: {{.Subtotal}}<br>Shipping: {{.Shipping}}<br><strong>Total: {{.Total}}</strong></p>
        </div>
        <p>We'll let you know as soon as your order ships.</p>`)).Lookup("layout")

var orderStatusTmpl = template.Must(template.Must(template.New("layout").Parse(emailLayout)).New("content").Parse(`
        <h2>Hi {{.Name}},</h2>
        <div class="order-box">
            <p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
            <p>Order total: {{.Total}}</p>
        </div>`)).Lookup("layout")
