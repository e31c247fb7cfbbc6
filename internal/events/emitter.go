package events

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TransactionEvent tells the lesson-condition engine that a recurring
// transaction landed on an account.
type TransactionEvent struct {
	Owner      string          `json:"owner"`
	Kind       string          `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurredAt"`
	AppliedAt  time.Time       `json:"appliedAt"`
}

// Emitter delivers transaction events. Delivery is fire-and-forget: a
// failure must never roll back or delay the financial write.
type Emitter interface {
	EmitTransaction(ev TransactionEvent)
}

// Webhook posts events to the lesson engine over HTTP.
type Webhook struct {
	URL    string
	Client *http.Client
	Log    *logrus.Logger
}

func NewWebhook(url string, log *logrus.Logger) *Webhook {
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
		Log:    log,
	}
}

func (w *Webhook) EmitTransaction(ev TransactionEvent) {
	go func() {
		body, err := json.Marshal(ev)
		if err != nil {
			w.Log.WithError(err).Error("events: marshal failed")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
		if err != nil {
			w.Log.WithError(err).Error("events: build request failed")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := w.Client.Do(req)
		if err != nil {
			w.Log.WithError(err).WithField("owner", ev.Owner).Warn("events: delivery failed")
			return
		}
		_ = resp.Body.Close()
	}()
}

// Nop drops events; used when no lesson engine is configured.
type Nop struct{}

func (Nop) EmitTransaction(TransactionEvent) {}
