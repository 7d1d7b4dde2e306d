package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/command"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/formatter"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/observer"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/provider"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/vision"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/utils"
)

// Route labels for the messages_routed metric.
const (
	RouteCommand             = "command"
	RouteFallback            = "fallback"
	RouteAnalysis            = "analysis"
	RouteAnalysisUnavailable = "analysis_unavailable"
	RouteIgnored             = "ignored"
	RouteNormalizeError      = "normalize_error"
	RoutePanic               = "panic"
	RouteUnknownProvider     = "unknown_provider"
)

// ErrUnknownProvider is returned when no adapter is registered for a provider.
var ErrUnknownProvider = errors.New("unknown provider")

// MessageRouter turns one webhook request into exactly one reply.
type MessageRouter struct {
	adapters   map[model.Provider]provider.Adapter
	analyzer   vision.Analyzer
	recorder   Recorder
	worker     IBackgroundWorker
	baseLogger *zap.Logger
}

func NewMessageRouter(
	adapters []provider.Adapter,
	analyzer vision.Analyzer,
	recorder Recorder,
	worker IBackgroundWorker,
	baseLogger *zap.Logger,
) *MessageRouter {
	byProvider := make(map[model.Provider]provider.Adapter, len(adapters))
	for _, a := range adapters {
		byProvider[a.Provider()] = a
	}
	return &MessageRouter{
		adapters:   byProvider,
		analyzer:   analyzer,
		recorder:   recorder,
		worker:     worker,
		baseLogger: baseLogger.Named("message_router"),
	}
}

// Adapter returns the adapter registered for p.
func (r *MessageRouter) Adapter(p model.Provider) (provider.Adapter, bool) {
	a, ok := r.adapters[p]
	return a, ok
}

// HandleWebhook normalizes req, routes the message and writes the reply through the
// originating adapter. Every call writes exactly one webhook response. A panic anywhere
// below is converted into formatter.GenericFailure.
//
// Cancellation of ctx is ignored so a provider that drops the connection mid-analysis
// still gets its reply sent; each outbound call is bounded by its own timeout.
func (r *MessageRouter) HandleWebhook(ctx context.Context, p model.Provider, w http.ResponseWriter, req *http.Request) error {
	start := time.Now()
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContextOr(ctx, r.baseLogger)

	adapter, ok := r.adapters[p]
	if !ok {
		observer.IncMessageRouted(p.String(), RouteUnknownProvider, time.Since(start))
		return ErrUnknownProvider
	}

	var (
		msg     *model.InboundMessage
		route   = RoutePanic
		replied bool
	)
	reply := func(text string) {
		if replied {
			return
		}
		replied = true
		r.dispatch(ctx, adapter, msg, w, text)
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Panic recovered while handling message", zap.Any("panic", rec), zap.Stack("stack"))
			route = RoutePanic
			reply(formatter.GenericFailure)
		}
		observer.IncMessageRouted(p.String(), route, time.Since(start))
	}()

	msg, err := adapter.NormalizeInbound(ctx, req)
	if err != nil {
		log.Warn("Failed to normalize inbound message", zap.Error(err))
		route = RouteNormalizeError
		reply(formatter.GenericFailure)
		return nil
	}
	if msg == nil {
		route = RouteIgnored
		replied = true
		adapter.AcknowledgeWebhook(w, "")
		return nil
	}

	log = log.With(zap.String("sender_id", msg.SenderID), zap.String("message_id", msg.MessageID))
	ctx = logger.WithLogger(ctx, log)
	log.Debug("Routing inbound message", zap.Stringer("kind", msg.Kind()))

	var text string
	text, route = r.buildReply(ctx, adapter, msg)
	reply(text)
	return nil
}

func (r *MessageRouter) buildReply(ctx context.Context, adapter provider.Adapter, msg *model.InboundMessage) (string, string) {
	switch msg.Kind() {
	case model.KindImage:
		return r.handleImage(ctx, adapter, msg)
	case model.KindText:
		cmd := command.Interpret(msg.Text)
		observer.IncCommand(cmd.String())
		if cmd == model.CommandUnrecognized {
			return command.Fallback(), RouteFallback
		}
		return command.Reply(cmd), RouteCommand
	default:
		return command.Fallback(), RouteFallback
	}
}

func (r *MessageRouter) handleImage(ctx context.Context, adapter provider.Adapter, msg *model.InboundMessage) (string, string) {
	log := logger.FromContextOr(ctx, r.baseLogger)

	if !msg.MediaReadable() {
		log.Warn("Image received but media could not be read")
		return formatter.Format(nil), RouteAnalysisUnavailable
	}

	if adapter.ReplyMode() == provider.ReplyInline {
		r.sendCourtesy(ctx, adapter, msg)
	}

	analysis, err := r.analyzer.Analyze(ctx, msg.MediaURL)
	if err != nil {
		return formatter.Format(nil), RouteAnalysisUnavailable
	}

	text := formatter.Format(analysis)
	if r.recorder != nil && r.recorder.Record(ctx, msg.SenderID, analysis, utils.Now()) {
		text += formatter.LoggedSuffix
	}
	return text, RouteAnalysis
}

// sendCourtesy queues the "analyzing" notice so it never delays the analysis.
func (r *MessageRouter) sendCourtesy(ctx context.Context, adapter provider.Adapter, msg *model.InboundMessage) {
	log := logger.FromContextOr(ctx, r.baseLogger)
	if r.worker == nil {
		return
	}
	err := r.worker.SubmitTask(BackgroundTask{
		Ctx:  context.WithoutCancel(ctx),
		Name: TaskCourtesyMessage,
		Run: func(taskCtx context.Context) error {
			return adapter.SendOutbound(taskCtx, msg, formatter.Courtesy)
		},
	})
	if err != nil {
		log.Warn("Could not schedule courtesy message", zap.Error(err))
	}
}

// dispatch delivers text the way the adapter expects. Send failures are logged and the
// webhook is still acknowledged.
func (r *MessageRouter) dispatch(ctx context.Context, adapter provider.Adapter, msg *model.InboundMessage, w http.ResponseWriter, text string) {
	if adapter.ReplyMode() == provider.ReplyInline {
		adapter.AcknowledgeWebhook(w, text)
		return
	}

	if msg != nil {
		if err := adapter.SendOutbound(ctx, msg, text); err != nil {
			logger.FromContextOr(ctx, r.baseLogger).Error("Failed to send reply", zap.Error(err))
		}
	}
	adapter.AcknowledgeWebhook(w, "")
}
