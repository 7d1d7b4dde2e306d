// Package provider translates between chat provider webhooks and the normalized message model.
package provider

import (
	"context"
	"net/http"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
)

// ReplyMode says how a provider expects the final reply.
type ReplyMode int

const (
	// ReplyInline carries the reply in the webhook response body.
	ReplyInline ReplyMode = iota
	// ReplyViaSendAPI sends the reply with an explicit API call and acknowledges the webhook separately.
	ReplyViaSendAPI
)

func (m ReplyMode) String() string {
	if m == ReplyViaSendAPI {
		return "send_api"
	}
	return "inline"
}

// Adapter converts one provider's wire format to and from the normalized model.
type Adapter interface {
	Provider() model.Provider
	ReplyMode() ReplyMode
	// NormalizeInbound returns nil, nil when the payload carries no message.
	NormalizeInbound(ctx context.Context, req *http.Request) (*model.InboundMessage, error)
	// SendOutbound pushes text to the sender of msg through the provider's send API.
	SendOutbound(ctx context.Context, msg *model.InboundMessage, text string) error
	// AcknowledgeWebhook writes the synchronous webhook response. For inline providers text is the reply.
	AcknowledgeWebhook(w http.ResponseWriter, text string)
}
