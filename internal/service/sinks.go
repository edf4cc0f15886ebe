package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"mempool_watcher/internal/domain"
	"mempool_watcher/pkg/crypto"
)

// StdoutSink writes one JSON object per line. The mutex keeps lines whole
// when multiple workers deliver concurrently.
type StdoutSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{enc: json.NewEncoder(w)}
}

func (s *StdoutSink) Name() string { return "stdout" }

func (s *StdoutSink) Deliver(alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(alert)
}

// WebhookSink POSTs alerts to a configured URL. When a signer is present,
// the payload is signed so receivers can verify authenticity.
type WebhookSink struct {
	url    string
	signer *crypto.Signer
	client *http.Client
}

func NewWebhookSink(url string, signer *crypto.Signer) *WebhookSink {
	return &WebhookSink{
		url:    url,
		signer: signer,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(alert domain.Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.signer != nil {
		req.Header.Set("X-Watcher-Signature", s.signer.Sign(body))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
