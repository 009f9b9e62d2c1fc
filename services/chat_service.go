package services

import (
	"context"
	"log/slog"
	"private-chat/contract"
	"private-chat/domain"
)

type IChatService interface {
	Connect(ctx context.Context, user string, session contract.Session) error
	Disconnect(ctx context.Context, user string, session contract.Session) error
	SendMessage(ctx context.Context, cmd domain.DeliverMessage) error
	RequestSequence(ctx context.Context, cmd domain.RequestNewSequence) error
	FetchHistory(ctx context.Context, cmd domain.FetchHistory) error
	Inspect(ctx context.Context) (domain.StateSnapshot, error)
}

// Censor masks forbidden words and reports which ones matched.
type Censor interface {
	Censor(content string) (string, []string)
}

// ChatService turns connection intents into actor commands.
// It never touches the chat state itself.
type ChatService struct {
	orchestrator contract.IOrchestrator
	censor       Censor
	log          *slog.Logger
}

// NewChatService accepts a nil censor when no moderation is configured.
func NewChatService(orchestrator contract.IOrchestrator, censor Censor, log *slog.Logger) *ChatService {
	return &ChatService{orchestrator: orchestrator, censor: censor, log: log}
}

func (s *ChatService) Connect(ctx context.Context, user string, session contract.Session) error {
	return s.orchestrator.Dispatch(ctx, domain.AssignSession{User: user, Session: session})
}

func (s *ChatService) Disconnect(ctx context.Context, user string, session contract.Session) error {
	return s.orchestrator.Dispatch(ctx, domain.UnassignSession{User: user, Session: session})
}

// SendMessage moderates the content before the actor stores it, so history
// and fanout only ever see the censored text.
func (s *ChatService) SendMessage(ctx context.Context, cmd domain.DeliverMessage) error {
	if s.censor != nil {
		content, words := s.censor.Censor(cmd.Content)
		if len(words) > 0 {
			s.log.Info("Message censored", "sender", cmd.Sender, "receiver", cmd.Receiver, "words", len(words))
		}
		cmd.Content = content
	}
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *ChatService) RequestSequence(ctx context.Context, cmd domain.RequestNewSequence) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *ChatService) FetchHistory(ctx context.Context, cmd domain.FetchHistory) error {
	return s.orchestrator.Dispatch(ctx, cmd)
}

func (s *ChatService) Inspect(ctx context.Context) (domain.StateSnapshot, error) {
	return s.orchestrator.Inspect(ctx)
}
