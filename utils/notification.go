package utils

import (
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sunny-kumar-mit/ShopKart-Backend/apperrors"
)

// Notifier delivers OTPs and confirmations. Email is a hard dependency for
// the flows that use it; SMS is best-effort and never surfaces an error.
type Notifier interface {
	SendEmail(to, subject, body string) error
	SendSMS(to, body string) error
}

// EmailSender is the raw email channel behind the dispatcher.
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMSSender is the raw SMS channel behind the dispatcher.
type SMSSender interface {
	Send(to, body string) error
}

const (
	emailRetryAttempts = 3
	emailRetryBackoff  = 500 * time.Millisecond
)

// Dispatcher composes the two channels with their delivery policies: bounded
// fixed-backoff retry for email, log-and-swallow for SMS.
type Dispatcher struct {
	Email EmailSender
	SMS   SMSSender
}

func (d *Dispatcher) SendEmail(to, subject, body string) error {
	if d.Email == nil {
		return apperrors.New(apperrors.KindDeliveryError, "email channel is not configured")
	}
	var lastErr error
	for attempt := 1; attempt <= emailRetryAttempts; attempt++ {
		if lastErr = d.Email.Send(to, subject, body); lastErr == nil {
			return nil
		}
		log.Printf("❌ Email to %s failed (attempt %d/%d): %v", to, attempt, emailRetryAttempts, lastErr)
		if attempt < emailRetryAttempts {
			time.Sleep(emailRetryBackoff)
		}
	}
	return apperrors.Wrap(apperrors.KindDeliveryError, "failed to send email", lastErr)
}

func (d *Dispatcher) SendSMS(to, body string) error {
	if d.SMS == nil || to == "" {
		log.Printf("📱 SMS channel unconfigured, simulation only: %s", body)
		return nil
	}
	if err := d.SMS.Send(to, body); err != nil {
		log.Printf("❌ SMS to %s failed: %v", to, err)
	}
	return nil
}

// SMTPSender sends plain-text mail over SMTP with STARTTLS (port 587).
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := strings.Builder{}
	msg.WriteString("From: " + s.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := s.Host + ":" + s.Port
	if err := smtp.SendMail(addr, auth, s.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// TwilioSender posts messages to the Twilio REST API.
type TwilioSender struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	HTTPClient *http.Client
}

func (t *TwilioSender) Send(to, body string) error {
	endpoint := "https://api.twilio.com/2010-04-01/Accounts/" + t.AccountSID + "/Messages.json"
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.FromNumber)
	form.Set("Body", body)

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := t.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach Twilio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio API error (%d)", resp.StatusCode)
	}
	return nil
}

// NewNotifierFromEnv builds the production dispatcher. Email credentials are
// required; missing Twilio credentials just disable the SMS channel.
func NewNotifierFromEnv() *Dispatcher {
	d := &Dispatcher{}

	emailUser := os.Getenv("EMAIL_USER")
	emailPass := os.Getenv("EMAIL_PASS")
	if emailUser != "" && emailPass != "" {
		host := os.Getenv("SMTP_HOST")
		if host == "" {
			host = "smtp.gmail.com"
		}
		port := os.Getenv("SMTP_PORT")
		if port == "" {
			port = "587"
		}
		d.Email = &SMTPSender{Host: host, Port: port, Username: emailUser, Password: emailPass, From: emailUser}
	} else {
		log.Println("⚠️ EMAIL_USER/EMAIL_PASS not set, email delivery will fail")
	}

	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	if sid != "" && token != "" {
		d.SMS = &TwilioSender{AccountSID: sid, AuthToken: token, FromNumber: os.Getenv("TWILIO_PHONE_NUMBER")}
	}

	return d
}
