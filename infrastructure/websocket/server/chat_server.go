package server

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"private-chat/auth"
	"private-chat/domain"
	"private-chat/errors"
	"private-chat/observability"
	"private-chat/services"
	"private-chat/sink"
	"time"

	"github.com/coder/websocket"
)

// ChatServer upgrades HTTP requests to websocket connections and translates
// frames into chat commands. Every connection owns one session sink drained
// by a single writer goroutine.
type ChatServer struct {
	chatService       services.IChatService
	authService       services.IAuthService
	monitor           *observability.MonitoringManager
	sessionBufferSize int
	writeTimeout      time.Duration
	log               *slog.Logger
}

func NewChatServer(log *slog.Logger, chatService services.IChatService, authService services.IAuthService,
	monitor *observability.MonitoringManager, sessionBufferSize int, writeTimeout time.Duration) *ChatServer {
	return &ChatServer{
		chatService:       chatService,
		authService:       authService,
		monitor:           monitor,
		sessionBufferSize: sessionBufferSize,
		writeTimeout:      writeTimeout,
		log:               log,
	}
}

// connection is the per-socket state, only touched by the reader goroutine.
type connection struct {
	ws      *websocket.Conn
	session *sink.SessionSink
	user    string
	closing bool
}

func (c *connection) authenticated() bool {
	return c.user != ""
}

// ServeHTTP blocks until the client disconnects, the session is closed by
// the server or the request context ends.
func (s *ChatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		s.log.Error("Failed to accept websocket", "error", err, "ip", r.RemoteAddr)
		return
	}
	s.monitor.ConnectionOpened()
	defer s.monitor.ConnectionClosed()

	conn := &connection{ws: ws, session: sink.NewSessionSink(s.sessionBufferSize)}
	s.log.Info("Connection opened", "session", conn.session, "ip", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer cancel()
		s.writeLoop(ctx, conn)
	}()

	serve := true
	if username, ok := auth.UsernameFromContext(r.Context()); ok {
		if err := s.login(ctx, conn, username, ""); err != nil {
			s.log.Warn("Failed to assign pre-authenticated session", "user", username, "error", err)
			serve = false
		}
	}
	if serve {
		s.readLoop(ctx, conn)
	}

	if conn.closing {
		select {
		case <-writerDone:
		case <-time.After(s.writeTimeout):
		}
	}
	cancel()
	<-writerDone

	if conn.authenticated() {
		unassignCtx, unassignCancel := context.WithTimeout(context.Background(), s.writeTimeout)
		if err := s.chatService.Disconnect(unassignCtx, conn.user, conn.session); err != nil {
			s.log.Warn("Failed to unassign session", "user", conn.user, "session", conn.session, "error", err)
		}
		unassignCancel()
	}
	if err := ws.Close(websocket.StatusNormalClosure, "session ended"); err != nil {
		s.log.Debug("Failed to close websocket", "session", conn.session, "error", err)
	}
	s.log.Info("Connection closed", "user", conn.user, "session", conn.session)
}

func (s *ChatServer) readLoop(ctx context.Context, conn *connection) {
	for !conn.closing {
		_, data, err := conn.ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				s.log.Debug("Websocket closed", "user", conn.user, "session", conn.session)
			} else {
				s.log.Warn("Websocket read error", "user", conn.user, "session", conn.session, "error", err)
			}
			return
		}
		s.monitor.IncrInboundFrames()

		if err := s.handleFrame(ctx, conn, data); err != nil {
			if stdErrors.Is(err, errors.ErrOrchestratorStopped) || ctx.Err() != nil {
				s.log.Info("Dropping connection, chat is shutting down", "user", conn.user, "error", err)
				return
			}
			s.monitor.IncrProtocolErrors()
			s.log.Debug("Frame refused", "user", conn.user, "error", err)
			s.push(conn, domain.Failure{Err: err})
		}
	}
}

// handleFrame returns the errors to report to the client. Errors raised by
// the state actor come back asynchronously through the session sink.
func (s *ChatServer) handleFrame(ctx context.Context, conn *connection, data []byte) error {
	subject, err := DecodeSubject(data)
	if err != nil {
		return err
	}

	switch subject {
	case SubjectAuthenticate:
		req, err := DecodePayload[AuthenticateRequest](data)
		if err != nil {
			return err
		}
		return s.authenticate(ctx, conn, req)
	case SubjectNewMessage, SubjectNewMessageSequence, SubjectConversationHistory:
		if !conn.authenticated() {
			return errors.ErrNotAuthenticated
		}
		return s.handleChatFrame(ctx, conn, subject, data)
	default:
		s.log.Warn("Unknown subject, closing connection", "user", conn.user, "subject", subject)
		s.monitor.IncrProtocolErrors()
		err := fmt.Errorf("%w: %q", errors.ErrUnknownSubject, subject)
		s.push(conn, domain.Failure{Err: err})
		s.push(conn, domain.CloseSession{Reason: errors.ErrUnknownSubject.Error()})
		conn.closing = true
		return nil
	}
}

func (s *ChatServer) handleChatFrame(ctx context.Context, conn *connection, subject string, data []byte) error {
	switch subject {
	case SubjectNewMessage:
		req, err := DecodePayload[NewMessageRequest](data)
		if err != nil {
			return err
		}
		if err := auth.ValidateUsername(req.Receiver); err != nil {
			return err
		}
		sequence, err := req.SequenceRef()
		if err != nil {
			return err
		}
		return s.chatService.SendMessage(ctx, domain.DeliverMessage{
			Sender:       conn.user,
			Receiver:     req.Receiver,
			Content:      req.Content,
			Sequence:     sequence,
			ReplySession: conn.session,
		})
	case SubjectNewMessageSequence:
		req, err := DecodePayload[NewSequenceRequest](data)
		if err != nil {
			return err
		}
		if err := auth.ValidateUsername(req.ReceiverUsername); err != nil {
			return err
		}
		return s.chatService.RequestSequence(ctx, domain.RequestNewSequence{
			Sender:       conn.user,
			Receiver:     req.ReceiverUsername,
			ReplySession: conn.session,
		})
	default:
		req, err := DecodePayload[HistoryRequest](data)
		if err != nil {
			return err
		}
		if err := auth.ValidateUsername(req.Partner); err != nil {
			return err
		}
		return s.chatService.FetchHistory(ctx, domain.FetchHistory{
			Requester:    conn.user,
			Partner:      req.Partner,
			Limit:        req.Limit,
			ReplySession: conn.session,
		})
	}
}

func (s *ChatServer) authenticate(ctx context.Context, conn *connection, req AuthenticateRequest) error {
	if conn.authenticated() {
		return errors.ErrAlreadyAuthenticated
	}
	if req.Token != "" {
		username, err := s.authService.Authenticate(req.Token)
		if err != nil {
			return err
		}
		return s.login(ctx, conn, username, req.Token)
	}
	token, err := s.authService.Login(req.Login, req.Password)
	if err != nil {
		return err
	}
	return s.login(ctx, conn, req.Login, token.String())
}

// login binds the connection to username. The state actor may still refuse
// the session, it then closes it through the sink.
func (s *ChatServer) login(ctx context.Context, conn *connection, username, token string) error {
	if err := s.chatService.Connect(ctx, username, conn.session); err != nil {
		return err
	}
	conn.user = username
	s.log.Info("Connection authenticated", "user", username, "session", conn.session)
	s.push(conn, domain.Authenticated{Username: username, Token: token})
	return nil
}

// push goes through the sink so that the writer stays the only goroutine
// writing frames.
func (s *ChatServer) push(conn *connection, out domain.Outbound) {
	if err := conn.session.Send(out); err != nil {
		s.log.Warn("Failed to push to session", "user", conn.user, "session", conn.session, "error", err)
	}
}

// writeLoop must not read conn.user, it belongs to the reader.
func (s *ChatServer) writeLoop(ctx context.Context, conn *connection) {
	for {
		select {
		case <-ctx.Done():
			return
		case out := <-conn.session.Outbound:
			if closing, ok := out.(domain.CloseSession); ok {
				s.log.Info("Closing session", "session", conn.session, "reason", closing.Reason)
				if err := conn.ws.Close(websocket.StatusPolicyViolation, closing.Reason); err != nil {
					s.log.Debug("Failed to close websocket", "session", conn.session, "error", err)
				}
				return
			}
			if err := s.write(ctx, conn, out); err != nil {
				s.log.Warn("Websocket write error", "session", conn.session, "error", err)
				return
			}
		}
	}
}

func (s *ChatServer) write(ctx context.Context, conn *connection, out domain.Outbound) error {
	data, ok, err := Encode(out)
	if err != nil || !ok {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	return conn.ws.Write(writeCtx, websocket.MessageText, data)
}
