package server

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"private-chat/domain"
	"private-chat/errors"
	"time"

	"github.com/samber/lo"
)

// Subjects carried by the "subject" field of every frame.
const (
	SubjectAuthenticate        = "authenticate"
	SubjectAuthenticated       = "authenticated"
	SubjectNewMessage          = "new-message"
	SubjectMessage             = "message"
	SubjectNewMessageSequence  = "new-private-message-sequence"
	SubjectConversationHistory = "conversation-history"
	SubjectError               = "error"
)

// Error codes sent in error frames.
const (
	CodeSessionCapExceeded   = "session_cap_exceeded"
	CodeSequenceNotFound     = "sequence_not_found"
	CodeOutOfOrder           = "out_of_order"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeNotAuthenticated     = "not_authenticated"
	CodeAlreadyAuthenticated = "already_authenticated"
	CodeInvalidPayload       = "invalid_payload"
	CodeUnknownSubject       = "unknown_subject"
	CodeInternal             = "internal"
)

type envelope struct {
	Subject string `json:"subject"`
}

type AuthenticateRequest struct {
	Login    string `json:"login,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

type NewMessageRequest struct {
	Receiver             string  `json:"receiver"`
	Content              string  `json:"content"`
	MessageSequenceID    *uint32 `json:"message_sequence_id,omitempty"`
	MessageSequenceIndex *uint32 `json:"message_sequence_index,omitempty"`
}

// SequenceRef returns nil for an unsequenced message. Giving only one of
// the two sequence fields is invalid.
func (r NewMessageRequest) SequenceRef() (*domain.SequenceRef, error) {
	switch {
	case r.MessageSequenceID == nil && r.MessageSequenceIndex == nil:
		return nil, nil
	case r.MessageSequenceID == nil || r.MessageSequenceIndex == nil:
		return nil, fmt.Errorf("%w: sequence id and index go together", errors.ErrInvalidPayload)
	default:
		return &domain.SequenceRef{ID: *r.MessageSequenceID, Index: *r.MessageSequenceIndex}, nil
	}
}

type NewSequenceRequest struct {
	ReceiverUsername string `json:"receiver_username"`
}

type HistoryRequest struct {
	Partner string `json:"partner"`
	Limit   int    `json:"limit,omitempty"`
}

type AuthenticatedFrame struct {
	Subject  string `json:"subject"`
	Username string `json:"username"`
	Token    string `json:"token,omitempty"`
}

type MessageFrame struct {
	Subject              string    `json:"subject"`
	ID                   uint32    `json:"id"`
	SenderUsername       string    `json:"sender_username"`
	Content              string    `json:"content"`
	Datetime             time.Time `json:"datetime"`
	MessageSequenceID    *uint32   `json:"message_sequence_id,omitempty"`
	MessageSequenceIndex *uint32   `json:"message_sequence_index,omitempty"`
}

type SequenceFrame struct {
	Subject          string `json:"subject"`
	SequenceID       uint32 `json:"sequence_id"`
	ReceiverUsername string `json:"receiver_username"`
}

type HistoryFrame struct {
	Subject  string         `json:"subject"`
	Partner  string         `json:"partner"`
	Messages []HistoryEntry `json:"messages"`
}

type HistoryEntry struct {
	ID       uint32    `json:"id"`
	Author   string    `json:"author"`
	Content  string    `json:"content"`
	Datetime time.Time `json:"datetime"`
}

type ErrorFrame struct {
	Subject           string  `json:"subject"`
	Code              string  `json:"code"`
	Message           string  `json:"message"`
	Receiver          string  `json:"receiver,omitempty"`
	MessageSequenceID *uint32 `json:"message_sequence_id,omitempty"`
	Expected          *uint32 `json:"expected,omitempty"`
	Got               *uint32 `json:"got,omitempty"`
}

// DecodeSubject reads the discriminator of an inbound frame.
func DecodeSubject(data []byte) (string, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return e.Subject, nil
}

// DecodePayload unmarshals the frame into the request type of its subject.
func DecodePayload[T any](data []byte) (T, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return payload, nil
}

// ErrorCode maps a domain error to its wire code.
func ErrorCode(err error) string {
	switch {
	case stdErrors.Is(err, errors.ErrSessionCapExceeded):
		return CodeSessionCapExceeded
	case stdErrors.Is(err, errors.ErrSequenceNotFound):
		return CodeSequenceNotFound
	case stdErrors.Is(err, errors.ErrOutOfOrder):
		return CodeOutOfOrder
	case stdErrors.Is(err, errors.ErrInvalidCredentials), stdErrors.Is(err, errors.ErrInvalidToken):
		return CodeInvalidCredentials
	case stdErrors.Is(err, errors.ErrNotAuthenticated):
		return CodeNotAuthenticated
	case stdErrors.Is(err, errors.ErrAlreadyAuthenticated):
		return CodeAlreadyAuthenticated
	case stdErrors.Is(err, errors.ErrInvalidPayload), stdErrors.Is(err, errors.ErrInvalidLogin):
		return CodeInvalidPayload
	case stdErrors.Is(err, errors.ErrUnknownSubject):
		return CodeUnknownSubject
	default:
		return CodeInternal
	}
}

// Encode renders an outbound value as a JSON frame. CloseSession has no
// frame, ok is false for it.
func Encode(out domain.Outbound) (data []byte, ok bool, err error) {
	var frame any
	switch o := out.(type) {
	case domain.PrivateMessage:
		frame = toMessageFrame(o)
	case domain.SequenceAllocated:
		frame = SequenceFrame{Subject: SubjectNewMessageSequence, SequenceID: o.SequenceID, ReceiverUsername: o.Receiver}
	case domain.ConversationHistory:
		frame = toHistoryFrame(o)
	case domain.Authenticated:
		frame = AuthenticatedFrame{Subject: SubjectAuthenticated, Username: o.Username, Token: o.Token}
	case domain.DeliveryRejected:
		frame = toRejectionFrame(o)
	case domain.SessionRejected:
		frame = toErrorFrame(o.Err)
	case domain.Failure:
		frame = toErrorFrame(o.Err)
	case domain.CloseSession:
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("no frame for %T", out)
	}
	data, err = json.Marshal(frame)
	return data, err == nil, err
}

func toMessageFrame(m domain.PrivateMessage) MessageFrame {
	frame := MessageFrame{
		Subject:        SubjectMessage,
		ID:             m.ID,
		SenderUsername: m.Sender,
		Content:        m.Content,
		Datetime:       m.ServerTime,
	}
	if m.Sequence != nil {
		frame.MessageSequenceID = lo.ToPtr(m.Sequence.ID)
		frame.MessageSequenceIndex = lo.ToPtr(m.Sequence.Index)
	}
	return frame
}

func toHistoryFrame(h domain.ConversationHistory) HistoryFrame {
	return HistoryFrame{
		Subject: SubjectConversationHistory,
		Partner: h.Partner,
		Messages: lo.Map(h.Messages, func(e domain.HistoryEntry, _ int) HistoryEntry {
			return HistoryEntry{ID: e.ID, Author: e.Author, Content: e.Content, Datetime: e.ServerTime}
		}),
	}
}

func toRejectionFrame(r domain.DeliveryRejected) ErrorFrame {
	frame := toErrorFrame(r.Err)
	frame.Receiver = r.Receiver
	frame.MessageSequenceID = lo.ToPtr(r.Sequence.ID)
	var outOfOrder *errors.OutOfOrderError
	if stdErrors.As(r.Err, &outOfOrder) {
		frame.Expected = lo.ToPtr(outOfOrder.Expected)
		frame.Got = lo.ToPtr(outOfOrder.Got)
	}
	return frame
}

func toErrorFrame(err error) ErrorFrame {
	return ErrorFrame{Subject: SubjectError, Code: ErrorCode(err), Message: err.Error()}
}
