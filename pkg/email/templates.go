package email

import (
	"fmt"
	"html"
	"strings"
)

// InvoiceEmailData contains the data needed for the job invoice email.
type InvoiceEmailData struct {
	ClientName   string
	ClientEmail  string
	JobTitle     string
	JobDate      string // YYYY-MM-DD
	Hours        float64
	Hourly       bool
	AmountMinor  int64
	Currency     string
	BusinessName string
	AppName      string
	PrimaryColor string
}

// FormatAmount renders minor units with two decimals, e.g. 12345 USD -> "123.45 USD".
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	s := fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
	if currency = strings.TrimSpace(currency); currency != "" {
		s += " " + currency
	}
	return s
}

// BuildInvoiceEmail creates the invoice message sent to a client for one job.
func BuildInvoiceEmail(data InvoiceEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "ServiceFlow"
	}
	business := data.BusinessName
	if business == "" {
		business = appName
	}
	name := data.ClientName
	if name == "" {
		name = "there"
	}
	color := data.PrimaryColor
	if color == "" {
		color = "#2563eb"
	}

	amount := FormatAmount(data.AmountMinor, data.Currency)
	basis := "Flat rate"
	if data.Hourly {
		basis = fmt.Sprintf("Hourly, %g h", data.Hours)
	}

	subject := fmt.Sprintf("Invoice from %s: %s on %s", business, data.JobTitle, data.JobDate)

	textBody := fmt.Sprintf(`Hi %s,

Here is your invoice for the work we completed.

Service: %s
Date:    %s
Basis:   %s
Amount:  %s

Thank you for your business,
%s`,
		name, data.JobTitle, data.JobDate, basis, amount, business)

	esc := html.EscapeString
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: %s;">Hi %s,</h2>
    <p>Here is your invoice for the work we completed.</p>
    <table style="border-collapse: collapse; width: 100%%; margin: 20px 0;">
        <tr><td style="padding: 6px 0; color: #6b7280;">Service</td><td style="padding: 6px 0;">%s</td></tr>
        <tr><td style="padding: 6px 0; color: #6b7280;">Date</td><td style="padding: 6px 0;">%s</td></tr>
        <tr><td style="padding: 6px 0; color: #6b7280;">Basis</td><td style="padding: 6px 0;">%s</td></tr>
        <tr><td style="padding: 6px 0; color: #6b7280;">Amount</td><td style="padding: 6px 0;"><strong>%s</strong></td></tr>
    </table>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thank you for your business,<br>%s</p>
</body>
</html>`,
		color, esc(name), esc(data.JobTitle), esc(data.JobDate), esc(basis), esc(amount), esc(business))

	return Message{
		To:       []string{data.ClientEmail},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
