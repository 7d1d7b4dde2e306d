package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/config"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

// MessageCreator is the part of the Twilio REST API the adapter needs.
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// NewTwilioMessageCreator builds a Twilio REST client from credentials.
func NewTwilioMessageCreator(cfg config.TwilioConfig) MessageCreator {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return client.Api
}

// TwilioAdapter handles form-encoded Twilio WhatsApp webhooks and replies with TwiML.
type TwilioAdapter struct {
	creator    MessageCreator
	fromNumber string
	logger     *zap.Logger
}

var _ Adapter = (*TwilioAdapter)(nil)

func NewTwilioAdapter(cfg config.TwilioConfig, creator MessageCreator, baseLogger *zap.Logger) *TwilioAdapter {
	return &TwilioAdapter{
		creator:    creator,
		fromNumber: cfg.FromNumber,
		logger:     baseLogger.Named("twilio_adapter"),
	}
}

func (a *TwilioAdapter) Provider() model.Provider { return model.ProviderTwilio }

func (a *TwilioAdapter) ReplyMode() ReplyMode { return ReplyInline }

// NormalizeInbound reads Body, From, NumMedia and MediaUrl0 from the form.
func (a *TwilioAdapter) NormalizeInbound(ctx context.Context, req *http.Request) (*model.InboundMessage, error) {
	if err := req.ParseForm(); err != nil {
		return nil, fmt.Errorf("%w: parse twilio form: %v", apperrors.ErrBadRequest, err)
	}

	from := req.PostForm.Get("From")
	if from == "" {
		logger.FromContextOr(ctx, a.logger).Debug("Twilio webhook without sender, ignoring")
		return nil, nil
	}

	msg := &model.InboundMessage{
		SenderID:   StripChannelPrefix(from),
		ReplyTo:    from,
		Text:       strings.TrimSpace(req.PostForm.Get("Body")),
		Provider:   model.ProviderTwilio,
		MessageID:  req.PostForm.Get("MessageSid"),
		ReceivedAt: utils.Now(),
	}

	if n, err := strconv.Atoi(strings.TrimSpace(req.PostForm.Get("NumMedia"))); err == nil && n > 0 {
		if mediaURL := req.PostForm.Get("MediaUrl0"); mediaURL != "" {
			msg.HasMedia = true
			msg.MediaURL = mediaURL
		}
	}
	return msg, nil
}

// SendOutbound sends text from the configured number to the original sender.
func (a *TwilioAdapter) SendOutbound(ctx context.Context, msg *model.InboundMessage, text string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.ReplyTo)
	params.SetFrom(a.fromNumber)
	params.SetBody(text)

	resp, err := a.creator.CreateMessage(params)
	observer.IncOutboundSend(model.ProviderTwilio.String(), "send_api", err)
	if err != nil {
		return fmt.Errorf("%w: twilio create message: %v", apperrors.ErrProvider, err)
	}
	if resp != nil && resp.Sid != nil {
		logger.FromContextOr(ctx, a.logger).Debug("Twilio message created", zap.String("sid", *resp.Sid))
	}
	return nil
}

type twimlMessage struct {
	Body string `xml:",chardata"`
}

type twimlResponse struct {
	XMLName  xml.Name       `xml:"Response"`
	Messages []twimlMessage `xml:"Message"`
}

// AcknowledgeWebhook writes a TwiML document carrying text. Empty text yields an empty Response.
func (a *TwilioAdapter) AcknowledgeWebhook(w http.ResponseWriter, text string) {
	doc := twimlResponse{}
	if text != "" {
		doc.Messages = []twimlMessage{{Body: text}}
	}
	body, err := xml.Marshal(doc)
	if err != nil {
		a.logger.Error("Failed to marshal TwiML", zap.Error(err))
		body = []byte("<Response></Response>")
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
	observer.IncOutboundSend(model.ProviderTwilio.String(), "inline", nil)
}

// StripChannelPrefix removes a leading "<channel>:" token such as "whatsapp:".
func StripChannelPrefix(address string) string {
	if i := strings.Index(address, ":"); i >= 0 {
		return address[i+1:]
	}
	return address
}
