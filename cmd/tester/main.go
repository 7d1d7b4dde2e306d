package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/model"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
)

var textBodies = []string{"help", "today", "goals", "tip", "hello"}

// webhookTask is one synthetic webhook to deliver.
type webhookTask struct {
	Provider model.Provider
	Message  *model.InboundMessage
}

type stats struct {
	sent     atomic.Int64
	failed   atomic.Int64
	totalDur atomic.Int64
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of a running meal photo bot")
	providersStr := flag.String("providers", "twilio,meta", "Comma-separated providers to exercise (twilio, meta)")
	imageURL := flag.String("image-url", "", "Public meal photo URL; when set, every other Twilio webhook carries it")
	rate := flag.Int("rate", 5, "Target webhooks per second (total)")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	concurrency := flag.Int("concurrency", 4, "Number of concurrent senders")
	timeout := flag.Duration("timeout", 60*time.Second, "Per-request timeout")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Webhook Load Generator\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Posts synthetic Twilio and Meta webhooks to a running meal photo bot and logs the replies.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *rate <= 0 {
		*rate = 1
	}

	if err := logger.Initialize(*logLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var providers []model.Provider
	for _, p := range strings.Split(*providersStr, ",") {
		prov := model.Provider(strings.TrimSpace(p))
		if !prov.Valid() {
			logger.Log.Fatal("Unsupported provider", zap.String("provider", p))
		}
		providers = append(providers, prov)
	}

	logger.Log.Info("Starting webhook load generator",
		zap.String("url", *baseURL),
		zap.String("providers", *providersStr),
		zap.Int("rate_per_sec", *rate),
		zap.Duration("duration", *duration),
		zap.Int("concurrency", *concurrency),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &http.Client{Timeout: *timeout}
	st := &stats{}

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(*concurrency, func(data interface{}) {
		defer wg.Done()
		deliver(ctx, client, *baseURL, data.(webhookTask), st)
	})
	if err != nil {
		logger.Log.Fatal("Failed to create worker pool", zap.Error(err))
	}
	defer pool.Release()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			logger.Log.Info("Received termination signal, shutting down...", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	runLoadLoop(ctx, *rate, *duration, providers, *imageURL, pool, &wg)

	logger.Log.Info("Waiting for in-flight webhooks to complete...")
	wg.Wait()

	sent, failed := st.sent.Load(), st.failed.Load()
	var avg time.Duration
	if sent > 0 {
		avg = time.Duration(st.totalDur.Load() / sent)
	}
	logger.Log.Info("Load generation complete",
		zap.Int64("delivered", sent),
		zap.Int64("failed", failed),
		zap.Duration("avg_latency", avg),
	)
}

func runLoadLoop(ctx context.Context, rate int, duration time.Duration, providers []model.Provider, imageURL string, pool *ants.PoolWithFunc, wg *sync.WaitGroup) {
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()
	durationTimer := time.NewTimer(duration)
	defer durationTimer.Stop()

	counter := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-durationTimer.C:
			logger.Log.Info("Load generation loop stopping after specified duration")
			return
		case <-ticker.C:
			task := newTask(providers[counter%len(providers)], counter, imageURL)
			counter++

			wg.Add(1)
			if err := pool.Invoke(task); err != nil {
				wg.Done()
				logger.Log.Warn("Failed to invoke worker pool", zap.Error(err))
			}
		}
	}
}

func newTask(p model.Provider, n int, imageURL string) webhookTask {
	override := &model.InboundMessage{Text: textBodies[n%len(textBodies)]}
	if p == model.ProviderTwilio && imageURL != "" && n%2 == 1 {
		override = &model.InboundMessage{HasMedia: true, MediaURL: imageURL}
	}
	return webhookTask{Provider: p, Message: model.NewInboundMessage(p, override)}
}

func deliver(ctx context.Context, client *http.Client, baseURL string, task webhookTask, st *stats) {
	req, err := buildRequest(ctx, baseURL, task)
	if err != nil {
		st.failed.Add(1)
		logger.Log.Error("Failed to build webhook request", zap.Error(err))
		return
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		st.failed.Add(1)
		logger.Log.Warn("Webhook delivery failed", zap.String("provider", task.Provider.String()), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	elapsed := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		st.failed.Add(1)
		logger.Log.Warn("Unexpected webhook status",
			zap.String("provider", task.Provider.String()),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return
	}

	st.sent.Add(1)
	st.totalDur.Add(int64(elapsed))
	logger.Log.Debug("Webhook delivered",
		zap.String("provider", task.Provider.String()),
		zap.String("sender", task.Message.SenderID),
		zap.String("text", task.Message.Text),
		zap.Bool("image", task.Message.HasMedia),
		zap.Duration("latency", elapsed),
		zap.ByteString("reply", body))
}

func buildRequest(ctx context.Context, baseURL string, task webhookTask) (*http.Request, error) {
	base := strings.TrimRight(baseURL, "/")
	switch task.Provider {
	case model.ProviderTwilio:
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/webhook/twilio", strings.NewReader(twilioForm(task.Message)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	case model.ProviderMeta:
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/webhook/meta", strings.NewReader(metaPayload(task.Message)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", task.Provider)
	}
}

func twilioForm(msg *model.InboundMessage) string {
	form := url.Values{
		"From":       {msg.ReplyTo},
		"To":         {"whatsapp:+14155238886"},
		"MessageSid": {"SM" + strings.ReplaceAll(msg.MessageID, "-", "")},
		"Body":       {msg.Text},
		"NumMedia":   {"0"},
	}
	if msg.HasMedia {
		form.Set("NumMedia", "1")
		form.Set("MediaUrl0", msg.MediaURL)
	}
	return form.Encode()
}

func metaPayload(msg *model.InboundMessage) string {
	return fmt.Sprintf(`{"object":"whatsapp_business_account","entry":[{"id":%q,"changes":[{"field":"messages","value":{`+
		`"messaging_product":"whatsapp","contacts":[{"profile":{"name":%q},"wa_id":%q}],`+
		`"messages":[{"from":%q,"id":%q,"timestamp":"%d","type":"text","text":{"body":%q}}]}}]}]}`,
		gofakeit.Numerify("##########"), gofakeit.Name(), strings.TrimPrefix(msg.SenderID, "+"),
		strings.TrimPrefix(msg.SenderID, "+"), "wamid."+msg.MessageID, msg.ReceivedAt.Unix(), msg.Text)
}
