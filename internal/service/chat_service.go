package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"furious-host/internal/domain"
	"furious-host/internal/llm"
	"furious-host/internal/repository"
)

// ChatService ejecuta el relay de chat en tres pasos por turno:
// persiste el mensaje del usuario, pide la respuesta al gateway y persiste la respuesta.
// Si el gateway o el segundo insert fallan, el mensaje del usuario queda persistido
// igual; no hay rollback compensatorio.
type ChatService struct {
	logger   *zap.Logger
	messages repository.MessageRepository
	client   llm.Client
}

var (
	ErrChatEmptyMessage = errors.New("chat message empty")
	ErrChatMissingUser  = errors.New("chat user missing")
)

const supportSystemPrompt = `You are Furious AI, the support assistant for Furious Host, a hosting provider offering Minecraft server hosting, Discord bot hosting and VPS plans.
Answer questions about plans, billing, server setup and troubleshooting. Be friendly, concise and practical.
If a question is outside hosting support, politely steer the customer back to hosting topics.`

func NewChatService(logger *zap.Logger, messages repository.MessageRepository, client llm.Client) *ChatService {
	return &ChatService{logger: logger, messages: messages, client: client}
}

// Turn es el resultado de un envio: el par usuario/asistente persistido.
type Turn struct {
	UserMessage      domain.ChatMessage `json:"user_message"`
	AssistantMessage domain.ChatMessage `json:"assistant_message"`
	Response         string             `json:"response"`
}

// Send procesa un turno completo para el usuario autenticado.
// Cuando devuelve error despues del paso 1, Turn.UserMessage contiene el
// mensaje ya persistido para que el caller pueda mostrarlo.
func (s *ChatService) Send(ctx context.Context, userID, content string) (Turn, error) {
	userID = strings.TrimSpace(userID)
	content = strings.TrimSpace(content)
	if userID == "" {
		return Turn{}, ErrChatMissingUser
	}
	if content == "" {
		return Turn{}, ErrChatEmptyMessage
	}

	userMsg := domain.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      domain.MessageRoleUser,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, userMsg); err != nil {
		return Turn{}, fmt.Errorf("persist user message: %w", err)
	}

	reply, err := s.client.Complete(ctx, supportSystemPrompt, content)
	if err != nil {
		return Turn{UserMessage: userMsg}, fmt.Errorf("generate reply: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return Turn{UserMessage: userMsg}, fmt.Errorf("generate reply: %w: empty completion", llm.ErrUpstream)
	}

	assistantMsg := domain.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      domain.MessageRoleAssistant,
		Content:   reply,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, assistantMsg); err != nil {
		if s.logger != nil {
			s.logger.Error("persist assistant message failed", zap.Error(err), zap.String("user_id", userID))
		}
		return Turn{UserMessage: userMsg}, fmt.Errorf("persist assistant message: %w", err)
	}

	return Turn{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Response:         reply,
	}, nil
}

// History devuelve el historial del usuario en orden ascendente de creacion.
func (s *ChatService) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrChatMissingUser
	}
	return s.messages.ListByUserID(ctx, userID)
}
