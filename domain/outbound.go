package domain

import (
	"time"
)

// Outbound is anything pushed to a Session.
type Outbound interface {
	outbound()
}

// PrivateMessage is a message rendered for its receiver.
type PrivateMessage struct {
	ID         uint32
	Sender     string
	Receiver   string
	Content    string
	ServerTime time.Time
	Sequence   *SequenceRef
}

// SequenceAllocated answers a RequestNewSequence.
type SequenceAllocated struct {
	Receiver   string
	SequenceID uint32
}

// DeliveryRejected tells a sender its message was dropped by the sequencing gate.
type DeliveryRejected struct {
	Receiver string
	Sequence SequenceRef
	Err      error
}

// SessionRejected tells a session it was not assigned to its user.
type SessionRejected struct {
	Err error
}

// CloseSession asks the transport to close the connection.
type CloseSession struct {
	Reason string
}

// ConversationHistory answers a FetchHistory.
type ConversationHistory struct {
	Partner  string
	Messages []HistoryEntry
}

type HistoryEntry struct {
	ID         uint32
	Author     string
	Content    string
	ServerTime time.Time
}

// Authenticated confirms a login to the connection.
type Authenticated struct {
	Username string
	Token    string
}

// Failure reports a transport level problem to the connection.
type Failure struct {
	Err error
}

func (PrivateMessage) outbound()      {}
func (SequenceAllocated) outbound()   {}
func (DeliveryRejected) outbound()    {}
func (SessionRejected) outbound()     {}
func (CloseSession) outbound()        {}
func (ConversationHistory) outbound() {}
func (Authenticated) outbound()       {}
func (Failure) outbound()             {}
