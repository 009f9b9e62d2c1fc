package services

import (
	"context"
	"log/slog"
	"private-chat/domain"
	"private-chat/errors"
	"private-chat/mocks"
	"private-chat/moderation"
	"private-chat/sink"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChatService_Connect_And_Disconnect(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockOrchestrator := mocks.NewMockIOrchestrator(ctrl)
	svc := NewChatService(mockOrchestrator, nil, logs.GetLoggerFromLevel(slog.LevelDebug))
	session := sink.NewSessionSink(1)

	// Given a connection entering then leaving
	gomock.InOrder(
		mockOrchestrator.EXPECT().Dispatch(ctx, domain.AssignSession{User: "ian", Session: session}).Return(nil),
		mockOrchestrator.EXPECT().Dispatch(ctx, domain.UnassignSession{User: "ian", Session: session}).Return(nil),
	)

	// Then both commands are forwarded in order
	req.NoError(svc.Connect(ctx, "ian", session))
	req.NoError(svc.Disconnect(ctx, "ian", session))
}

func TestChatService_SendMessage_Is_Censored(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	mockOrchestrator := mocks.NewMockIOrchestrator(ctrl)
	mod, err := moderation.NewModerator([]string{"badger"}, '*', log)
	req.NoError(err)
	svc := NewChatService(mockOrchestrator, mod, log)

	// Given a message holding a forbidden word
	var dispatched domain.Command
	mockOrchestrator.EXPECT().Dispatch(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.Command) error {
			dispatched = cmd
			return nil
		}).Times(1)

	// When it is sent
	err = svc.SendMessage(ctx, domain.DeliverMessage{Sender: "ian", Receiver: "dan", Content: "the badger"})
	req.NoError(err)

	// Then the actor only sees the masked content
	deliver, ok := dispatched.(domain.DeliverMessage)
	req.True(ok)
	req.Equal("the ******", deliver.Content)
	req.Equal("dan", deliver.Receiver)
}

func TestChatService_Propagates_Stopped_Orchestrator(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockOrchestrator := mocks.NewMockIOrchestrator(ctrl)
	svc := NewChatService(mockOrchestrator, nil, logs.GetLoggerFromLevel(slog.LevelDebug))

	mockOrchestrator.EXPECT().Dispatch(ctx, gomock.Any()).Return(errors.ErrOrchestratorStopped).Times(2)
	mockOrchestrator.EXPECT().Inspect(ctx).Return(domain.StateSnapshot{}, errors.ErrOrchestratorStopped).Times(1)

	req.ErrorIs(svc.RequestSequence(ctx, domain.RequestNewSequence{Sender: "ian", Receiver: "dan"}), errors.ErrOrchestratorStopped)
	req.ErrorIs(svc.FetchHistory(ctx, domain.FetchHistory{Requester: "ian", Partner: "dan"}), errors.ErrOrchestratorStopped)
	_, err := svc.Inspect(ctx)
	req.ErrorIs(err, errors.ErrOrchestratorStopped)
}
