package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"beacon_chat_server/internal/config"
	"beacon_chat_server/pkg/errorx"
)

// Expo caps the number of messages per request.
const expoChunkSize = 100

// ExpoDeliverer sends push notifications through the Expo push API.
type ExpoDeliverer struct {
	client      *http.Client
	apiURL      string
	accessToken string
}

// NewExpoDeliverer builds the deliverer from the push config section.
func NewExpoDeliverer(conf config.PushConfig) *ExpoDeliverer {
	return &ExpoDeliverer{
		client:      &http.Client{Timeout: 10 * time.Second},
		apiURL:      conf.ExpoAPIURL,
		accessToken: conf.AccessToken,
	}
}

// One message object per token keeps the response tickets aligned with
// the token slice.
type expoPushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound"`
}

type expoPushTicket struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

type expoPushResponse struct {
	Data []expoPushTicket `json:"data"`
}

// Deliver posts the notification in chunks and collects the tokens
// Expo reports as DeviceNotRegistered.
func (e *ExpoDeliverer) Deliver(tokens []string, title, body string, data map[string]string) ([]string, error) {
	var unregistered []string
	for start := 0; start < len(tokens); start += expoChunkSize {
		end := start + expoChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]

		dead, err := e.deliverChunk(chunk, title, body, data)
		if err != nil {
			return unregistered, err
		}
		unregistered = append(unregistered, dead...)
	}
	return unregistered, nil
}

func (e *ExpoDeliverer) deliverChunk(tokens []string, title, body string, data map[string]string) ([]string, error) {
	messages := make([]expoPushMessage, 0, len(tokens))
	for _, token := range tokens {
		messages = append(messages, expoPushMessage{
			To:    token,
			Title: title,
			Body:  body,
			Data:  data,
			Sound: "default",
		})
	}

	payload, err := json.Marshal(messages)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "marshal expo payload")
	}

	req, err := http.NewRequest(http.MethodPost, e.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "build expo request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if e.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.accessToken)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "post expo request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorx.Newf(errorx.CodeServerBusy, "expo push returned status %d", resp.StatusCode)
	}

	var parsed expoPushResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "decode expo response")
	}
	if len(parsed.Data) != len(tokens) {
		return nil, errorx.New(errorx.CodeServerBusy,
			fmt.Sprintf("expo returned %d tickets for %d messages", len(parsed.Data), len(tokens)))
	}

	var unregistered []string
	for i, ticket := range parsed.Data {
		if ticket.Status == "error" && ticket.Details.Error == "DeviceNotRegistered" {
			unregistered = append(unregistered, tokens[i])
		}
	}
	return unregistered, nil
}

var _ Deliverer = (*ExpoDeliverer)(nil)
