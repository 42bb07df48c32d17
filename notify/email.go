package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/phillip/campus-services-go/utils"
)

// email request payload for ZeptoMail API
type emailRequest struct {
	From     emailAddress  `json:"from"`
	To       []toRecipient `json:"to"`
	Subject  string        `json:"subject"`
	HtmlBody string        `json:"htmlbody"`
}

type emailAddress struct {
	Address string `json:"address"`
}

type toRecipient struct {
	Email emailWithName `json:"email_address"`
}

type emailWithName struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// ZeptoMailer sends HTML mail through the ZeptoMail HTTP API.
type ZeptoMailer struct {
	apiURL string // e.g. https://api.zeptomail.com/v1.1/email
	apiKey string // e.g. Zoho-enczapikey xxxxx
	from   string
	client *http.Client
}

func NewZeptoMailer(apiURL, apiKey, from string) (*ZeptoMailer, error) {
	if apiURL == "" || apiKey == "" || from == "" {
		return nil, fmt.Errorf("missing required email config")
	}
	return &ZeptoMailer{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Send sends an HTML email to a single recipient.
func (m *ZeptoMailer) Send(ctx context.Context, to, toName, subject, body string) error {
	payload := emailRequest{
		From: emailAddress{Address: m.from},
		To: []toRecipient{
			{
				Email: emailWithName{
					Address: to,
					Name:    toName,
				},
			},
		},
		Subject:  subject,
		HtmlBody: body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create email request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("zeptomail API error: %s", resp.Status)
	}

	utils.Debug("email sent", map[string]any{"to": to, "subject": subject})
	return nil
}

// EmailPublisher mails the moderation inbox when a claim needs review. Other events are ignored.
type EmailPublisher struct {
	mailer *ZeptoMailer
	inbox  string
}

func NewEmailPublisher(mailer *ZeptoMailer, inbox string) *EmailPublisher {
	return &EmailPublisher{mailer: mailer, inbox: inbox}
}

func (p *EmailPublisher) Publish(ctx context.Context, key string, event any) error {
	if key != KeyClaimSubmitted {
		return nil
	}
	ev, ok := event.(ClaimSubmitted)
	if !ok {
		return fmt.Errorf("email publisher: unexpected payload %T for %s", event, key)
	}
	subject, body := claimSubmittedMail(ev)
	return p.mailer.Send(ctx, p.inbox, "Moderators", subject, body)
}

func (p *EmailPublisher) Close() error { return nil }

func claimSubmittedMail(ev ClaimSubmitted) (string, string) {
	subject := fmt.Sprintf("New claim on %q", ev.ItemTitle)
	body := fmt.Sprintf(
		`<p>A new claim is waiting for review.</p>
<p><strong>Item:</strong> %s (%s)<br><strong>Claim:</strong> %s<br><strong>Submitted:</strong> %s</p>
<blockquote>%s</blockquote>`,
		html.EscapeString(ev.ItemTitle),
		ev.ItemID.Hex(),
		ev.ClaimantID,
		ev.OccurredAt.UTC().Format(time.RFC1123),
		html.EscapeString(ev.Description),
	)
	return subject, body
}
