package mailingservices

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

type Mailgun struct {
	Client *mailgun.MailgunImpl
}

func (m *Mailgun) Init() {
	domain := os.Getenv("MG_DOMAIN")
	apiKey := os.Getenv("MG_PUBLIC_API_KEY")
	m.Client = mailgun.NewMailgun(domain, apiKey)
	log.Println("Mailgun client initialized")
}

// SendRegistrationEmail mails a pre-registered user the link where they set
// their password and activate the account.
func (m *Mailgun) SendRegistrationEmail(recipient, link string) (string, error) {
	sender := os.Getenv("EMAIL_FROM")
	subject := "Complete your registration"
	body := fmt.Sprintf("Welcome! Set your password and activate your account here: %s\n\nThis link expires in 48 hours.", link)

	message := m.Client.NewMessage(sender, subject, body, recipient)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	_, id, err := m.Client.Send(ctx, message)
	if err != nil {
		return "", err
	}
	return id, nil
}
