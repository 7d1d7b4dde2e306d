package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/config"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

const (
	maxWebhookBody      = 1 << 20
	defaultGraphTimeout = 10 * time.Second
	messagePath         = "entry.0.changes.0.value.messages.0"
)

// MetaAdapter handles WhatsApp Cloud API webhooks and replies through the Graph API.
type MetaAdapter struct {
	httpClient    *http.Client
	graphBaseURL  string
	accessToken   string
	phoneNumberID string
	verifyToken   string
	logger        *zap.Logger
}

var _ Adapter = (*MetaAdapter)(nil)

func NewMetaAdapter(cfg config.MetaConfig, baseLogger *zap.Logger) *MetaAdapter {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultGraphTimeout
	}
	return &MetaAdapter{
		httpClient:    &http.Client{Timeout: timeout},
		graphBaseURL:  strings.TrimRight(cfg.GraphBaseURL, "/"),
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		verifyToken:   cfg.VerifyToken,
		logger:        baseLogger.Named("meta_adapter"),
	}
}

func (a *MetaAdapter) Provider() model.Provider { return model.ProviderMeta }

func (a *MetaAdapter) ReplyMode() ReplyMode { return ReplyViaSendAPI }

// VerifySubscription answers the GET handshake. It succeeds only for mode "subscribe" with the configured token.
func (a *MetaAdapter) VerifySubscription(mode, token, challenge string) (string, bool) {
	if mode != "subscribe" || token == "" || token != a.verifyToken {
		return "", false
	}
	return challenge, true
}

// NormalizeInbound reads the first message of the first change of the first entry.
// Status callbacks and malformed envelopes yield nil, nil.
func (a *MetaAdapter) NormalizeInbound(ctx context.Context, req *http.Request) (*model.InboundMessage, error) {
	log := logger.FromContextOr(ctx, a.logger)

	body, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read meta webhook body: %v", apperrors.ErrBadRequest, err)
	}
	if !gjson.ValidBytes(body) {
		log.Warn("Meta webhook body is not valid JSON, ignoring", zap.Int("size", len(body)))
		return nil, nil
	}

	raw := gjson.GetBytes(body, messagePath)
	if !raw.Exists() || !raw.IsObject() {
		log.Debug("Meta webhook without message, ignoring")
		return nil, nil
	}

	from := raw.Get("from").String()
	if from == "" {
		log.Debug("Meta message without sender, ignoring")
		return nil, nil
	}

	msg := &model.InboundMessage{
		SenderID:   from,
		ReplyTo:    from,
		Provider:   model.ProviderMeta,
		MessageID:  raw.Get("id").String(),
		ReceivedAt: utils.UnixToTime(raw.Get("timestamp").Int()),
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = utils.Now()
	}

	switch raw.Get("type").String() {
	case "text":
		msg.Text = strings.TrimSpace(raw.Get("text.body").String())
	case "image":
		msg.HasMedia = true
		mediaID := raw.Get("image.id").String()
		mediaURL, err := a.resolveMediaURL(ctx, mediaID)
		if err != nil {
			log.Warn("Failed to resolve Meta media URL", zap.String("media_id", mediaID), zap.Error(err))
			break
		}
		msg.MediaURL = mediaURL
	default:
		log.Debug("Unsupported Meta message type", zap.String("type", raw.Get("type").String()))
	}
	return msg, nil
}

// resolveMediaURL exchanges a media handle for its download URL.
func (a *MetaAdapter) resolveMediaURL(ctx context.Context, mediaID string) (string, error) {
	if mediaID == "" {
		return "", fmt.Errorf("%w: empty media id", apperrors.ErrMediaUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.graphBaseURL+"/"+mediaID, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build media request: %v", apperrors.ErrMediaUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: media lookup failed: %v", apperrors.ErrMediaUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookBody))
	if err != nil {
		return "", fmt.Errorf("%w: read media response: %v", apperrors.ErrMediaUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: media lookup returned status %d", apperrors.ErrMediaUnavailable, resp.StatusCode)
	}

	url := gjson.GetBytes(body, "url").String()
	if url == "" {
		return "", fmt.Errorf("%w: media response has no url", apperrors.ErrMediaUnavailable)
	}
	return url, nil
}

type graphTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendOutbound posts a text message to the Graph messages endpoint.
func (a *MetaAdapter) SendOutbound(ctx context.Context, msg *model.InboundMessage, text string) (err error) {
	defer func() {
		observer.IncOutboundSend(model.ProviderMeta.String(), "send_api", err)
	}()

	payload := graphTextMessage{MessagingProduct: "whatsapp", To: msg.ReplyTo, Type: "text"}
	payload.Text.Body = text
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal graph message: %v", apperrors.ErrProvider, err)
	}

	url := fmt.Sprintf("%s/%s/messages", a.graphBaseURL, a.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: build graph request: %v", apperrors.ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: graph send failed: %v", apperrors.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody := readLimited(resp.Body)
		return fmt.Errorf("%w: graph send returned status %d: %s", apperrors.ErrProvider, resp.StatusCode, gjson.GetBytes(respBody, "error.message").String())
	}

	logger.FromContextOr(ctx, a.logger).Debug("Meta message sent",
		zap.String("message_id", gjson.GetBytes(readLimited(resp.Body), "messages.0.id").String()))
	return nil
}

// AcknowledgeWebhook answers 200 with an empty body. Replies go through SendOutbound.
func (a *MetaAdapter) AcknowledgeWebhook(w http.ResponseWriter, _ string) {
	w.WriteHeader(http.StatusOK)
}

func readLimited(r io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return b
}
