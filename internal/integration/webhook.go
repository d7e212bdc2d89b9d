package integration

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"

	"barricade.gg/backend/internal/model"
)

const (
	WebhookEventHeader     = "X-Barricade-Event"
	WebhookSignatureHeader = "X-Barricade-Signature"

	webhookEventBan   = "ban"
	webhookEventUnban = "unban"
	webhookEventPing  = "ping"
)

// WebhookPayload is the body posted to a webhook receiver.
type WebhookPayload struct {
	ID          string    `json:"id"`
	Event       string    `json:"event"`
	CommunityID int64     `json:"communityId"`
	PlayerID    string    `json:"playerId,omitempty"`
	PlayerName  string    `json:"playerName,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	ReportID    int64     `json:"reportId,omitempty"`
	RemoteID    string    `json:"remoteId,omitempty"`
	SentAt      time.Time `json:"sentAt"`
}

// Webhook posts signed ban events to an operator supplied URL. The receiver
// may answer a ban with a JSON object carrying an "id" to be used as the
// remote handle; the event id is used otherwise.
type Webhook struct {
	config model.Integration
	req    *requester
}

var _ Integration = (*Webhook)(nil)

func NewWebhook(config model.Integration, client *http.Client) *Webhook {
	return &Webhook{
		config: config,
		req:    &requester{client: client, header: http.Header{}},
	}
}

func (w *Webhook) Config() model.Integration {
	return w.config
}

func (w *Webhook) Close() error {
	return nil
}

// Sign returns the signature of body under secret as sent in WebhookSignatureHeader.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func (w *Webhook) send(ctx context.Context, p *WebhookPayload) (gjson.Result, error) {
	p.ID = ulid.Make().String()
	p.CommunityID = w.config.CommunityID
	p.SentAt = time.Now().UTC()

	body, err := json.Marshal(p)
	if err != nil {
		return gjson.Result{}, err
	}

	r := &requester{
		client: w.req.client,
		header: http.Header{
			WebhookEventHeader:     {p.Event},
			WebhookSignatureHeader: {Sign(w.config.APIKey, body)},
		},
	}
	resp, err := r.do(ctx, http.MethodPost, w.config.APIURL, nil, body)
	if err != nil {
		return gjson.Result{}, classify(w.config.IntegrationType, err)
	}
	return gjson.ParseBytes(resp), nil
}

func (w *Webhook) ApplyBan(ctx context.Context, req *BanRequest) (string, error) {
	p := &WebhookPayload{
		Event:      webhookEventBan,
		PlayerID:   req.PlayerID,
		PlayerName: req.PlayerName,
		Reason:     req.Reason,
		ReportID:   req.ReportID,
	}
	resp, err := w.send(ctx, p)
	if err != nil {
		return "", err
	}
	if id := resp.Get("id"); id.Exists() && id.String() != "" {
		return id.String(), nil
	}
	return p.ID, nil
}

func (w *Webhook) ReverseBan(ctx context.Context, req *UnbanRequest) error {
	_, err := w.send(ctx, &WebhookPayload{
		Event:    webhookEventUnban,
		PlayerID: req.PlayerID,
		ReportID: req.ReportID,
		RemoteID: req.RemoteID,
	})
	if isStatus(err, http.StatusNotFound) || isStatus(err, http.StatusGone) {
		return ErrRemoteBanNotFound
	}
	return err
}

// Validate delivers a ping event, which the receiver must acknowledge with a
// 2xx status.
func (w *Webhook) Validate(ctx context.Context, community *model.Community) error {
	if community.ID != w.config.CommunityID {
		return NewConfigError(w.config.IntegrationType, "communities do not match", nil)
	}
	if _, err := w.send(ctx, &WebhookPayload{Event: webhookEventPing}); err != nil {
		if ce, ok := err.(*ConfigError); ok {
			return ce
		}
		return NewConfigError(w.config.IntegrationType, "receiver did not acknowledge ping", err)
	}
	return nil
}
