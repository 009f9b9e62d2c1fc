package domain

// Command is a request executed by the state actor.
// The set of commands is closed, handlers dispatch on the concrete type.
type Command interface {
	command()
}

// AssignSession binds a freshly authenticated session to its user.
type AssignSession struct {
	User    string
	Session Session
}

// UnassignSession is emitted exactly once when an assigned connection ends.
type UnassignSession struct {
	User    string
	Session Session
}

// RequestNewSequence allocates a sequence id from Sender toward Receiver.
type RequestNewSequence struct {
	Sender       string
	Receiver     string
	ReplySession Session
}

// DeliverMessage appends a private message and fans it out to Receiver.
// When Sequence is set the message must be the next element of that sequence.
type DeliverMessage struct {
	Sender       string
	Receiver     string
	Content      string
	Sequence     *SequenceRef
	ReplySession Session
}

// FetchHistory asks for the most recent messages exchanged with Partner.
type FetchHistory struct {
	Requester    string
	Partner      string
	Limit        int
	ReplySession Session
}

// InspectState asks for a snapshot of the chat state.
// Reply must be buffered, the actor never blocks on it.
type InspectState struct {
	Reply chan<- StateSnapshot
}

func (AssignSession) command()      {}
func (UnassignSession) command()    {}
func (RequestNewSequence) command() {}
func (DeliverMessage) command()     {}
func (FetchHistory) command()       {}
func (InspectState) command()       {}

// StateSnapshot summarizes the in-memory state.
type StateSnapshot struct {
	Users         int `json:"users"`
	Sessions      int `json:"sessions"`
	Conversations int `json:"conversations"`
	Messages      int `json:"messages"`
}
