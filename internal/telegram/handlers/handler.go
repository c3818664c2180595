package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/mindtrace-ai/internal/pkg/logger"
	"github.com/futig/mindtrace-ai/internal/telegram/keyboard"
	"github.com/futig/mindtrace-ai/internal/telegram/render"
	"github.com/futig/mindtrace-ai/internal/telegram/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot commands
const (
	CommandStart   = "start"
	CommandHelp    = "help"
	CommandProject = "project"
	CommandSearch  = "search"
	CommandAsk     = "ask"
	CommandReset   = "reset"
)

// Message represents a normalized Telegram message or button press
type Message struct {
	ChatID       int64
	UserID       int64
	MessageID    int
	Text         string
	Command      string
	Args         string
	CallbackData string
	CallbackID   string
}

// Handler routes commands, free text and button presses of a chat
type Handler struct {
	sender     Sender
	retrieval  RetrievalUsecase
	bindings   *state.Bindings
	keyboard   *keyboard.Builder
	numResults int
}

func NewHandler(sender Sender, retrieval RetrievalUsecase, bindings *state.Bindings, numResults int) *Handler {
	return &Handler{
		sender:     sender,
		retrieval:  retrieval,
		bindings:   bindings,
		keyboard:   keyboard.NewBuilder(),
		numResults: numResults,
	}
}

// Handle processes one message. Use case failures are reported to the chat;
// the returned error means the bot could not talk to the user at all.
func (h *Handler) Handle(ctx context.Context, msg *Message) error {
	ctx = logger.AddFields(ctx, zap.Int64("chat_id", msg.ChatID))

	switch {
	case msg.CallbackData != "":
		return h.handleCallback(ctx, msg)
	case msg.Command != "":
		return h.handleCommand(ctx, msg)
	default:
		return h.ask(ctx, msg.ChatID, msg.Text)
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *Message) error {
	ctx = logger.WithAction(ctx, "Command")
	ctxzap.Info(ctx, "command received", zap.String("command", msg.Command))

	args := strings.TrimSpace(msg.Args)

	switch msg.Command {
	case CommandStart:
		return h.send(ctx, msg.ChatID, render.MsgWelcome+"\n\n"+render.MsgHelp, nil)
	case CommandHelp:
		return h.send(ctx, msg.ChatID, render.MsgHelp, nil)
	case CommandProject:
		return h.bindProject(ctx, msg.ChatID, args)
	case CommandSearch:
		return h.search(ctx, msg.ChatID, args)
	case CommandAsk:
		if args == "" {
			return h.send(ctx, msg.ChatID, render.MsgAskUsage, nil)
		}
		return h.ask(ctx, msg.ChatID, args)
	case CommandReset:
		h.bindings.Unbind(msg.ChatID)
		return h.send(ctx, msg.ChatID, render.MsgUnbound, nil)
	default:
		return h.send(ctx, msg.ChatID, render.ErrUnknownCommand, nil)
	}
}

func (h *Handler) handleCallback(ctx context.Context, msg *Message) error {
	ctx = logger.WithAction(ctx, "Callback")

	data, err := keyboard.ParseCallback(msg.CallbackData)
	if err != nil {
		ctxzap.Warn(ctx, "invalid callback data", zap.Error(err))
		return h.send(ctx, msg.ChatID, render.ErrGeneric, nil)
	}

	switch data.Value {
	case keyboard.ActionAsk:
		binding, ok := h.bindings.Get(msg.ChatID)
		if !ok {
			return h.send(ctx, msg.ChatID, render.MsgNoProject, nil)
		}
		if binding.LastQuery == "" {
			return h.send(ctx, msg.ChatID, render.MsgNoLastQuery, nil)
		}
		return h.ask(ctx, msg.ChatID, binding.LastQuery)
	case keyboard.ActionUnbind:
		h.bindings.Unbind(msg.ChatID)
		return h.send(ctx, msg.ChatID, render.MsgUnbound, nil)
	default:
		ctxzap.Warn(ctx, "unknown callback action", zap.String("data", msg.CallbackData))
		return h.send(ctx, msg.ChatID, render.ErrGeneric, nil)
	}
}

func (h *Handler) bindProject(ctx context.Context, chatID int64, projectID string) error {
	if projectID == "" {
		if binding, ok := h.bindings.Get(chatID); ok {
			return h.send(ctx, chatID, render.RenderProjectCurrent(binding.ProjectID)+"\n"+render.MsgProjectUsage, nil)
		}
		return h.send(ctx, chatID, render.MsgProjectUsage, nil)
	}

	h.bindings.Bind(chatID, projectID)
	ctxzap.Info(ctx, "chat bound to project", zap.String("project_id", projectID))
	return h.send(ctx, chatID, render.RenderProjectBound(projectID), nil)
}

func (h *Handler) search(ctx context.Context, chatID int64, query string) error {
	ctx = logger.WithAction(ctx, "Search")

	if query == "" {
		return h.send(ctx, chatID, render.MsgSearchUsage, nil)
	}

	binding, ok := h.bindings.Get(chatID)
	if !ok {
		return h.send(ctx, chatID, render.MsgNoProject, nil)
	}
	ctx = logger.WithProject(ctx, binding.ProjectID)

	results, err := h.retrieval.Search(ctx, query, binding.ProjectID, h.numResults)
	if err != nil {
		return h.HandleError(ctx, chatID, err)
	}
	h.bindings.SetLastQuery(chatID, query)

	var markup any
	if len(results) > 0 {
		markup = h.keyboard.SearchResultsKeyboard()
	}
	return h.send(ctx, chatID, render.RenderSearchResults(query, results), markup)
}

func (h *Handler) ask(ctx context.Context, chatID int64, question string) error {
	ctx = logger.WithAction(ctx, "Ask")

	question = strings.TrimSpace(question)
	if question == "" {
		return h.send(ctx, chatID, render.MsgAskUsage, nil)
	}

	binding, ok := h.bindings.Get(chatID)
	if !ok {
		return h.send(ctx, chatID, render.MsgNoProject, nil)
	}
	ctx = logger.WithProject(ctx, binding.ProjectID)

	typing := NewTypingNotifier(h.sender, chatID, ctxzap.Extract(ctx))
	typing.Start(ctx)
	answer, err := h.retrieval.Ask(ctx, question, binding.ProjectID, h.numResults)
	typing.Stop()
	if err != nil {
		return h.HandleError(ctx, chatID, err)
	}

	ctxzap.Info(ctx, "question answered", zap.Int("contexts", len(answer.Contexts)))
	return h.send(ctx, chatID, render.RenderAnswer(answer), nil)
}

func (h *Handler) send(ctx context.Context, chatID int64, text string, markup any) error {
	if err := h.sender.Send(ctx, chatID, text, markup); err != nil {
		return fmt.Errorf("reply to chat %d: %w", chatID, err)
	}
	return nil
}
