package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"private-chat/infrastructure/websocket/server"
	"strconv"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/coder/websocket"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=ws://localhost:8080/ws"`
	LogLevel  string `env:"LOG_LEVEL,default=WARN"`
	Colours   bool   `env:"CHAT_COLOURS,default=true"`
}

// incoming gathers the fields of every frame the server sends.
type incoming struct {
	Subject          string                `json:"subject"`
	Code             string                `json:"code"`
	Message          string                `json:"message"`
	Username         string                `json:"username"`
	SenderUsername   string                `json:"sender_username"`
	Content          string                `json:"content"`
	SequenceID       uint32                `json:"sequence_id"`
	ReceiverUsername string                `json:"receiver_username"`
	Partner          string                `json:"partner"`
	Messages         []server.HistoryEntry `json:"messages"`
}

const usage = `commands:
  /to <user> <text>        send a private message
  /seq <user>              open a message sequence
  /send <user> <id> <idx> <text>  send a sequenced message
  /history <user> [limit]  show the last messages
  /quit`

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	if !config.Colours {
		color.Disable()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.Dial(ctx, config.ServerURL, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerURL, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
	}()

	input := bufio.NewScanner(os.Stdin)
	login := prompt(input, "Please enter your login: ")
	password := prompt(input, "Please enter your password: ")
	if err := write(ctx, conn, server.AuthenticateRequest{Login: login, Password: password}, server.SubjectAuthenticate); err != nil {
		return exitRuntime, err
	}

	readErr := make(chan error, 1)
	go func() { readErr <- readFrames(ctx, conn) }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for input.Scan() {
			lines <- input.Text()
		}
	}()

	color.Gray.Println(usage)
	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case err := <-readErr:
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || err == nil {
				return exitOK, nil
			}
			return exitRuntime, err
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == "/quit" {
				return exitOK, nil
			}
			if err := handleLine(ctx, conn, line); err != nil {
				color.Red.Println(err)
			}
		}
	}
}

func prompt(input *bufio.Scanner, label string) string {
	fmt.Print(label)
	input.Scan()
	return strings.TrimSpace(input.Text())
}

func handleLine(ctx context.Context, conn *websocket.Conn, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "/to":
		if len(fields) < 3 {
			return fmt.Errorf("usage: /to <user> <text>")
		}
		return write(ctx, conn, server.NewMessageRequest{
			Receiver: fields[1],
			Content:  strings.Join(fields[2:], " "),
		}, server.SubjectNewMessage)
	case "/seq":
		if len(fields) != 2 {
			return fmt.Errorf("usage: /seq <user>")
		}
		return write(ctx, conn, server.NewSequenceRequest{ReceiverUsername: fields[1]}, server.SubjectNewMessageSequence)
	case "/send":
		if len(fields) < 5 {
			return fmt.Errorf("usage: /send <user> <id> <idx> <text>")
		}
		id, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid sequence id: %w", err)
		}
		index, err := strconv.ParseUint(fields[3], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid sequence index: %w", err)
		}
		sequenceID, sequenceIndex := uint32(id), uint32(index)
		return write(ctx, conn, server.NewMessageRequest{
			Receiver:             fields[1],
			Content:              strings.Join(fields[4:], " "),
			MessageSequenceID:    &sequenceID,
			MessageSequenceIndex: &sequenceIndex,
		}, server.SubjectNewMessage)
	case "/history":
		req := server.HistoryRequest{}
		if len(fields) < 2 {
			return fmt.Errorf("usage: /history <user> [limit]")
		}
		req.Partner = fields[1]
		if len(fields) > 2 {
			limit, err := strconv.Atoi(fields[2])
			if err != nil {
				return fmt.Errorf("invalid limit: %w", err)
			}
			req.Limit = limit
		}
		return write(ctx, conn, req, server.SubjectConversationHistory)
	default:
		color.Gray.Println(usage)
		return nil
	}
}

// write merges the subject into the payload object.
func write(ctx context.Context, conn *websocket.Conn, payload any, subject string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	fields["subject"] = subject
	if data, err = json.Marshal(fields); err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

func readFrames(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || err == io.EOF {
				return nil
			}
			return err
		}
		var frame incoming
		if err := json.Unmarshal(data, &frame); err != nil {
			color.Yellow.Printf("unreadable frame: %s\n", data)
			continue
		}
		render(frame)
	}
}

func render(frame incoming) {
	switch frame.Subject {
	case server.SubjectAuthenticated:
		color.Green.Printf("authenticated as %s\n", frame.Username)
	case server.SubjectMessage:
		color.Cyan.Printf("%s> ", frame.SenderUsername)
		fmt.Println(frame.Content)
	case server.SubjectNewMessageSequence:
		color.Magenta.Printf("sequence %d opened towards %s\n", frame.SequenceID, frame.ReceiverUsername)
	case server.SubjectConversationHistory:
		color.New(color.BgBlack, color.FgGreen).Printf("  ====== %s ======\n", frame.Partner)
		for _, entry := range frame.Messages {
			fmt.Printf("#%d %s %s> %s\n", entry.ID, entry.Datetime.Format("15:04:05"), entry.Author, entry.Content)
		}
	case server.SubjectError:
		color.Red.Printf("[%s] %s\n", frame.Code, frame.Message)
	default:
		color.Yellow.Printf("unexpected frame %q\n", frame.Subject)
	}
}
