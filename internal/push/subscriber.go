package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/cryptosignals/internal/core"
	"go.uber.org/zap"
)

// Subscriber registers this client for a notification topic.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) error
}

// HTTPSubscriber posts subscription requests to a push gateway.
type HTTPSubscriber struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewHTTPSubscriber creates a subscriber for the gateway at url
func NewHTTPSubscriber(url string, headers map[string]string) *HTTPSubscriber {
	return &HTTPSubscriber{
		url:     url,
		headers: headers,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPSubscriber) Subscribe(ctx context.Context, topic string) error {
	body, err := json.Marshal(map[string]string{"topic": topic})
	if err != nil {
		return core.WrapError(core.ErrSubscribeFailed, fmt.Errorf("marshaling payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return core.WrapError(core.ErrSubscribeFailed, fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return core.WrapError(core.ErrSubscribeFailed, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return core.WrapError(core.ErrSubscribeFailed, fmt.Errorf("gateway returned %d", resp.StatusCode))
	}

	return nil
}

// SubscribeLogged subscribes and logs the outcome. A failed subscription
// never stops the app.
func SubscribeLogged(ctx context.Context, s Subscriber, topic string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := s.Subscribe(ctx, topic); err != nil {
		logger.Warn("subscribe failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	logger.Info("subscribed", zap.String("topic", topic))
}
