package server

import (
	"encoding/json"
	"fmt"
	"private-chat/domain"
	"private-chat/errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{errors.ErrSessionCapExceeded, CodeSessionCapExceeded},
		{errors.ErrSequenceNotFound, CodeSequenceNotFound},
		{&errors.OutOfOrderError{Expected: 2, Got: 3}, CodeOutOfOrder},
		{errors.ErrInvalidToken, CodeInvalidCredentials},
		{fmt.Errorf("%w: bad", errors.ErrInvalidLogin), CodeInvalidPayload},
		{errors.ErrUnknownSubject, CodeUnknownSubject},
		{fmt.Errorf("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			require.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}
}

func TestNewMessageRequest_SequenceRef(t *testing.T) {
	req := require.New(t)

	ref, err := NewMessageRequest{}.SequenceRef()
	req.NoError(err)
	req.Nil(ref)

	ref, err = NewMessageRequest{MessageSequenceID: lo.ToPtr(uint32(0)), MessageSequenceIndex: lo.ToPtr(uint32(1))}.SequenceRef()
	req.NoError(err)
	req.Equal(&domain.SequenceRef{ID: 0, Index: 1}, ref)

	_, err = NewMessageRequest{MessageSequenceIndex: lo.ToPtr(uint32(1))}.SequenceRef()
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestDecode(t *testing.T) {
	req := require.New(t)
	data := []byte(`{"subject":"new-message","receiver":"dan","content":"hi","message_sequence_id":4,"message_sequence_index":1}`)

	subject, err := DecodeSubject(data)
	req.NoError(err)
	req.Equal(SubjectNewMessage, subject)

	payload, err := DecodePayload[NewMessageRequest](data)
	req.NoError(err)
	req.Equal("dan", payload.Receiver)
	req.Equal(uint32(4), *payload.MessageSequenceID)

	_, err = DecodeSubject([]byte("{"))
	req.ErrorIs(err, errors.ErrInvalidPayload)
}

func TestEncode(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("message keeps its sequence", func(t *testing.T) {
		req := require.New(t)
		data, ok, err := Encode(domain.PrivateMessage{ID: 3, Sender: "ian", Receiver: "dan", Content: "hi",
			ServerTime: at, Sequence: &domain.SequenceRef{ID: 1, Index: 2}})
		req.NoError(err)
		req.True(ok)
		req.JSONEq(`{"subject":"message","id":3,"sender_username":"ian","content":"hi",
			"datetime":"2026-01-02T03:04:05Z","message_sequence_id":1,"message_sequence_index":2}`, string(data))
	})

	t.Run("rejection carries expected and got", func(t *testing.T) {
		req := require.New(t)
		cause := &errors.OutOfOrderError{SequenceID: 1, Expected: 2, Got: 3}
		data, ok, err := Encode(domain.DeliveryRejected{Receiver: "dan", Sequence: domain.SequenceRef{ID: 1, Index: 3}, Err: cause})
		req.NoError(err)
		req.True(ok)

		var frame ErrorFrame
		req.NoError(json.Unmarshal(data, &frame))
		req.Equal(CodeOutOfOrder, frame.Code)
		req.Equal("dan", frame.Receiver)
		req.Equal(uint32(2), *frame.Expected)
		req.Equal(uint32(3), *frame.Got)
	})

	t.Run("close has no frame", func(t *testing.T) {
		req := require.New(t)
		data, ok, err := Encode(domain.CloseSession{Reason: "bye"})
		req.NoError(err)
		req.False(ok)
		req.Nil(data)
	})

	t.Run("empty history is an empty list", func(t *testing.T) {
		req := require.New(t)
		data, _, err := Encode(domain.ConversationHistory{Partner: "dan"})
		req.NoError(err)
		req.JSONEq(`{"subject":"conversation-history","partner":"dan","messages":[]}`, string(data))
	})
}
