package mail

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"os"
	"strconv"

	"github.com/nexkart/marketplace/logger"
	"github.com/nexkart/marketplace/models/payout_models"
	gomail "gopkg.in/gomail.v2"
)

var payoutResolvedTemplate = template.Must(template.New("payout_resolved").Parse(`
<p>Hi {{.Name}},</p>
{{if .Approved}}
<p>Your payout request for ₹{{printf "%.2f" .RequestedRupees}} has been approved.</p>
<p>Net amount transferred: ₹{{printf "%.2f" .NetRupees}}<br>
Bank transfer reference: {{.Reference}}</p>
{{else}}
<p>Your payout request for ₹{{printf "%.2f" .RequestedRupees}} has been rejected.</p>
<p>Reason: {{.Reason}}</p>
<p>The amount remains available in your seller balance.</p>
{{end}}
<p>— Team Nexkart</p>
`))

func sendEmail(toEmail, subject string, body string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP_HOST not set")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("FROM_EMAIL"))
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"))
	d.TLSConfig = &tls.Config{ServerName: host}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	return nil
}

// SendPayoutResolvedEmail notifies a seller that an admin resolved their
// payout request. Fire and forget: callers run it in a goroutine and delivery
// failures are only logged, never surfaced to the admin mutation.
func SendPayoutResolvedEmail(toEmail, sellerName string, payout *payout_models.PayoutRequest) {
	data := struct {
		Name            string
		Approved        bool
		RequestedRupees float64
		NetRupees       float64
		Reference       string
		Reason          string
	}{
		Name:            sellerName,
		Approved:        payout.Status == payout_models.PayoutStatusApproved,
		RequestedRupees: float64(payout.RequestedPaise) / 100,
		NetRupees:       float64(payout.Breakdown.NetPayablePaise) / 100,
	}
	if payout.PaymentReference != nil {
		data.Reference = *payout.PaymentReference
	}
	if payout.RejectionReason != nil {
		data.Reason = *payout.RejectionReason
	}

	subject := "Your payout request was rejected"
	if data.Approved {
		subject = "Your payout has been approved"
	}

	var body bytes.Buffer
	if err := payoutResolvedTemplate.Execute(&body, data); err != nil {
		logger.ErrorLogger.Errorf("Failed to render payout email for %s: %v", toEmail, err)
		return
	}

	if err := sendEmail(toEmail, subject, body.String()); err != nil {
		logger.ErrorLogger.Errorf("Failed to send payout notification to %s: %v", toEmail, err)
		return
	}
	logger.InfoLogger.Infof("Payout notification sent to %s for payout %s", toEmail, payout.ID)
}
