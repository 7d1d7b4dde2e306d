package mock

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/provider"
)

// MessageCreatorMock is a mock implementation of provider.MessageCreator.
type MessageCreatorMock struct {
	mock.Mock
}

func (m *MessageCreatorMock) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	args := m.Called(params)
	var msg *twilioApi.ApiV2010Message
	if v := args.Get(0); v != nil {
		msg = v.(*twilioApi.ApiV2010Message)
	}
	return msg, args.Error(1)
}

// AdapterMock is a mock implementation of provider.Adapter.
type AdapterMock struct {
	mock.Mock
}

func (m *AdapterMock) Provider() model.Provider {
	return m.Called().Get(0).(model.Provider)
}

func (m *AdapterMock) ReplyMode() provider.ReplyMode {
	return m.Called().Get(0).(provider.ReplyMode)
}

func (m *AdapterMock) NormalizeInbound(ctx context.Context, req *http.Request) (*model.InboundMessage, error) {
	args := m.Called(ctx, req)
	var msg *model.InboundMessage
	if v := args.Get(0); v != nil {
		msg = v.(*model.InboundMessage)
	}
	return msg, args.Error(1)
}

func (m *AdapterMock) SendOutbound(ctx context.Context, msg *model.InboundMessage, text string) error {
	args := m.Called(ctx, msg, text)
	return args.Error(0)
}

// AcknowledgeWebhook records the call and writes text as the body so callers can inspect it.
func (m *AdapterMock) AcknowledgeWebhook(w http.ResponseWriter, text string) {
	m.Called(w, text)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

var _ provider.Adapter = (*AdapterMock)(nil)
var _ provider.MessageCreator = (*MessageCreatorMock)(nil)
