package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/telegram/handlers"
	"github.com/futig/mindtrace-ai/internal/telegram/middleware"
	"github.com/futig/mindtrace-ai/internal/telegram/state"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot represents the Telegram bot
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.TelegramConfig
	handler     *handlers.Handler
	sender      *handlers.MessageSender
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// New authorizes the bot token and wires the update pipeline
func New(cfg *config.TelegramConfig, retrieval handlers.RetrievalUsecase, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	sender := handlers.NewMessageSender(api, logger)

	return &Bot{
		api:         api,
		cfg:         cfg,
		handler:     handlers.NewHandler(sender, retrieval, state.NewBindings(cfg.BindingTTL), cfg.NumResults),
		sender:      sender,
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, sender),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, logger, sender),
		stopChan:    make(chan struct{}),
	}, nil
}

// Start starts long polling and returns once updates are being consumed
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops polling and waits for in-flight updates up to the shutdown timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware runs rate limit, logging and recovery around the handler
func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, func(u3 tgbotapi.Update) {
				b.handleUpdate(ctx, u3)
			})
		})
	})
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	// In-flight updates finish even when the bot is stopping.
	ctx = context.WithoutCancel(ctx)

	msg := normalize(update)
	if msg == nil {
		return
	}

	if msg.CallbackID != "" {
		b.sender.AnswerCallback(msg.CallbackID, "")
	}

	if err := b.handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "handler error",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
	}
}

// normalize converts an update into a handler message, nil for update
// kinds the bot ignores
func normalize(update tgbotapi.Update) *handlers.Message {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		query := update.CallbackQuery
		return &handlers.Message{
			ChatID:       query.Message.Chat.ID,
			UserID:       query.From.ID,
			MessageID:    query.Message.MessageID,
			CallbackData: query.Data,
			CallbackID:   query.ID,
		}
	case update.Message != nil:
		message := update.Message
		msg := &handlers.Message{
			ChatID:    message.Chat.ID,
			MessageID: message.MessageID,
			Text:      message.Text,
		}
		if message.From != nil {
			msg.UserID = message.From.ID
		}
		if message.IsCommand() {
			msg.Command = message.Command()
			msg.Args = message.CommandArguments()
		}
		if msg.Command == "" && msg.Text == "" {
			return nil
		}
		return msg
	default:
		return nil
	}
}
