package model

import "time"

// MessageKind is the routing class of an inbound message.
type MessageKind int

const (
	KindEmpty MessageKind = iota
	KindText
	KindImage
)

func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return "empty"
	}
}

// InboundMessage is the provider-agnostic form of one received chat message.
type InboundMessage struct {
	// SenderID is the user's address with any channel prefix removed. Meal logs are joined on it.
	SenderID string `json:"sender_id"`
	// ReplyTo is the provider-native address for explicit sends (e.g. "whatsapp:+15551234567").
	ReplyTo   string   `json:"reply_to"`
	Text      string   `json:"text,omitempty"`
	MediaURL  string   `json:"media_url,omitempty"`
	// HasMedia is set whenever an image was sent, even if MediaURL could not be resolved.
	HasMedia   bool      `json:"has_media"`
	Provider   Provider  `json:"provider"`
	MessageID  string    `json:"message_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Kind classifies the message for routing. An image wins over text.
func (m *InboundMessage) Kind() MessageKind {
	switch {
	case m.HasMedia:
		return KindImage
	case m.Text != "":
		return KindText
	default:
		return KindEmpty
	}
}

// MediaReadable reports whether the image can be handed to the analyzer.
func (m *InboundMessage) MediaReadable() bool {
	return m.HasMedia && m.MediaURL != ""
}
