package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Gateway delivers data pushes to device tokens or topics over the FCM
// legacy HTTP endpoint. Delivery to the device is fire-and-forget; only
// the send call itself can fail.
type Gateway struct {
	Endpoint  string
	ServerKey string
	Client    *http.Client
}

func NewGateway() *Gateway {
	endpoint := os.Getenv("FCM_SEND_URL")
	if endpoint == "" {
		endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	return &Gateway{
		Endpoint:  endpoint,
		ServerKey: os.Getenv("FCM_SERVER_KEY"),
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type pushMessage struct {
	To   string            `json:"to"`
	Data map[string]string `json:"data"`
}

// Send pushes a message to a single device token.
func (g *Gateway) Send(ctx context.Context, token, title, body string) error {
	if token == "" {
		return fmt.Errorf("push: empty device token")
	}
	return g.post(ctx, pushMessage{
		To: token,
		Data: map[string]string{
			"title": title,
			"body":  body,
			"sound": "default",
		},
	})
}

// SendTopic pushes a message to every device subscribed to a topic.
func (g *Gateway) SendTopic(ctx context.Context, topic, title, body string) error {
	return g.post(ctx, pushMessage{
		To: "/topics/" + topic,
		Data: map[string]string{
			"title": title,
			"body":  body,
			"sound": "default",
		},
	})
}

func (g *Gateway) post(ctx context.Context, msg pushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("push: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("push: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+g.ServerKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("push: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push: send returned %s", resp.Status)
	}
	return nil
}
