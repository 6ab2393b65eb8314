package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const gmailBaseURL = "https://gmail.googleapis.com/gmail/v1/users/me"

// Email is one fetched mailbox message. The core never persists it; only
// the ID is retained on goals for deduplication.
type Email struct {
	ID          string
	From        string
	To          string
	DeliveredTo string
	Subject     string
	Body        string
	Date        string
}

// SendResult is the structured outcome of a send attempt. API-level and
// network-level failures both land here instead of being raised.
type SendResult struct {
	OK      bool
	Message string
}

// Client talks to the Gmail REST API with a bearer token from its
// TokenSource.
type Client struct {
	baseURL string
	tokens  *TokenSource
	client  *http.Client
}

// NewClient creates a Gmail client over the given token source.
func NewClient(tokens *TokenSource) *Client {
	return &Client{
		baseURL: gmailBaseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether send/fetch credentials exist at all.
func (c *Client) Configured() bool {
	return c.tokens.Configured()
}

// message mirrors the subset of the Gmail message resource we read.
type message struct {
	ID      string       `json:"id"`
	Payload *messagePart `json:"payload"`
}

type messagePart struct {
	MimeType string `json:"mimeType"`
	Headers  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"headers"`
	Body struct {
		Data string `json:"data"`
	} `json:"body"`
	Parts []messagePart `json:"parts"`
}

// FetchLatestEmails lists messages newer than 24 hours (capped at
// maxResults) and fetches each message's content concurrently. A message
// whose content fetch fails is dropped from the batch rather than failing
// the whole listing.
func (c *Client) FetchLatestEmails(ctx context.Context, maxResults int) ([]Email, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("Gmail authentication required: %w", err)
	}

	listURL := fmt.Sprintf("%s/messages?q=%s&maxResults=%d",
		c.baseURL, url.QueryEscape("newer_than:1d"), maxResults)

	var listing struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := c.getJSON(ctx, token, listURL, &listing); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if len(listing.Messages) == 0 {
		return nil, nil
	}

	// Per-message content fetches are independent reads; fan them out.
	// One failed fetch must not cancel its siblings.
	var (
		mu     sync.Mutex
		emails []Email
		wg     sync.WaitGroup
	)
	for _, m := range listing.Messages {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			email, err := c.fetchMessage(ctx, token, id)
			if err != nil {
				return // silently dropped
			}
			mu.Lock()
			emails = append(emails, email)
			mu.Unlock()
		}(m.ID)
	}
	wg.Wait()

	return emails, nil
}

// fetchMessage retrieves one message in full format and extracts headers
// and a plaintext body.
func (c *Client) fetchMessage(ctx context.Context, token, id string) (Email, error) {
	var msg message
	getURL := fmt.Sprintf("%s/messages/%s?format=full", c.baseURL, url.PathEscape(id))
	if err := c.getJSON(ctx, token, getURL, &msg); err != nil {
		return Email{}, err
	}
	if msg.Payload == nil {
		return Email{}, fmt.Errorf("message %s has no payload", id)
	}

	return Email{
		ID:          msg.ID,
		From:        header(msg.Payload, "From"),
		To:          header(msg.Payload, "To"),
		DeliveredTo: header(msg.Payload, "Delivered-To"),
		Subject:     header(msg.Payload, "Subject"),
		Date:        header(msg.Payload, "Date"),
		Body:        extractPlainText(msg.Payload),
	}, nil
}

// FetchUserEmail returns the authenticated account's address from the
// profile endpoint.
func (c *Client) FetchUserEmail(ctx context.Context) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("Gmail authentication required: %w", err)
	}

	var profile struct {
		EmailAddress string `json:"emailAddress"`
	}
	if err := c.getJSON(ctx, token, c.baseURL+"/profile", &profile); err != nil {
		return "", fmt.Errorf("fetch profile: %w", err)
	}
	if profile.EmailAddress == "" {
		return "", fmt.Errorf("profile response has no email address")
	}
	return profile.EmailAddress, nil
}

// SendEmail builds a minimal RFC-2822 message and posts it to the send
// endpoint. Failures of any kind become a SendResult, never an error the
// caller has to catch.
func (c *Client) SendEmail(ctx context.Context, to, subject, body string) SendResult {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return SendResult{Message: "no Gmail credential available"}
	}

	raw := buildRawMessage(to, subject, body)
	payload, err := json.Marshal(map[string]string{"raw": raw})
	if err != nil {
		return SendResult{Message: fmt.Sprintf("encode message: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/messages/send", strings.NewReader(string(payload)))
	if err != nil {
		return SendResult{Message: fmt.Sprintf("create send request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return SendResult{Message: fmt.Sprintf("send failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return SendResult{Message: fmt.Sprintf("send rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(detail)))}
	}

	return SendResult{OK: true, Message: "notification sent"}
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, token, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gmail API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// header returns a header value by case-insensitive name.
func header(p *messagePart, name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractPlainText walks a possibly nested multipart payload depth-first
// and returns the first text/plain leaf, decoded. Falls back to the
// top-level body when no plain part exists.
func extractPlainText(p *messagePart) string {
	if part := findPlainPart(p); part != nil {
		return decodeBody(part.Body.Data)
	}
	return decodeBody(p.Body.Data)
}

func findPlainPart(p *messagePart) *messagePart {
	if strings.HasPrefix(strings.ToLower(p.MimeType), "text/plain") && p.Body.Data != "" {
		return p
	}
	for i := range p.Parts {
		if found := findPlainPart(&p.Parts[i]); found != nil {
			return found
		}
	}
	return nil
}

// decodeBody decodes Gmail's URL-safe base64 body data to UTF-8, tolerating
// malformed encodings instead of failing the message.
func decodeBody(data string) string {
	if data == "" {
		return ""
	}
	if decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(strings.TrimRight(data, "=")); err == nil {
		return string(decoded)
	}
	if decoded, err := base64.StdEncoding.DecodeString(data); err == nil {
		return string(decoded)
	}
	// Raw fallback: return the undecoded content rather than raising.
	return data
}

// buildRawMessage assembles an RFC-2822 message with a MIME-encoded UTF-8
// subject and returns it base64url-encoded as the API requires.
func buildRawMessage(to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
