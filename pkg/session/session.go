// Package session runs the interactive chat loop: it routes user text through
// the history store and completion client and records every turn in the transcript.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/assistente-go/pkg/completion"
	"github.com/minhyannv/assistente-go/pkg/history"
	loggerpkg "github.com/minhyannv/assistente-go/pkg/logger"
)

// State is the session loop state.
type State int

const (
	StateRunning State = iota
	StateTerminated
)

func (s State) String() string {
	if s == StateTerminated {
		return "terminated"
	}
	return "running"
}

// Control commands, matched case-insensitively after trimming.
const (
	CommandExit  = "exit"
	CommandReset = "reset"
)

// Transcript line prefixes and markers.
const (
	UserLabel      = "Usuário: "
	AssistantLabel = "Assistente: "

	StartMarkerFormat = "Sessão iniciada (%s)."
	ExitMarker        = "Sessão encerrada pelo usuário."
	EOFMarker         = "Sessão encerrada: fim da entrada."
	ResetMarker       = "Histórico reiniciado pelo usuário."
)

// Console text.
const (
	Prompt       = "You: "
	ReplyPrefix  = "Assistant:"
	Farewell     = "Ending the session. Goodbye!"
	ResetConfirm = "Conversation history reset."
)

// Recorder appends one line to the conversation transcript.
type Recorder interface {
	Record(text string) error
}

// Option configures optional session dependencies.
type Option func(*Session)

// WithLogger injects a diagnostic logger.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
		s.verbose = verbose
	}
}

// Session owns one conversation history for the lifetime of the loop.
// It is single-threaded: each turn blocks on the completion call.
type Session struct {
	history    *history.Store
	transcript Recorder
	completer  completion.Completer

	state   State
	turns   int
	logger  loggerpkg.Logger
	verbose bool
}

// New builds a Session. All three collaborators are required.
func New(store *history.Store, transcript Recorder, completer completion.Completer, opts ...Option) (*Session, error) {
	if store == nil {
		return nil, errors.New("history store is required")
	}
	if transcript == nil {
		return nil, errors.New("transcript recorder is required")
	}
	if completer == nil {
		return nil, errors.New("completer is required")
	}

	s := &Session{
		history:    store,
		transcript: transcript,
		completer:  completer,
		state:      StateRunning,
		logger:     loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = loggerpkg.WithFields(s.logger, map[string]any{"session_id": store.ID()})
	return s, nil
}

// History returns the session's history store.
func (s *Session) History() *history.Store {
	return s.history
}

// State returns the current loop state.
func (s *Session) State() State {
	return s.state
}

// Run prints the banner and processes lines from in until "exit" or end of input.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if in == nil {
		return errors.New("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.record(fmt.Sprintf(StartMarkerFormat, s.history.ID())); err != nil {
		return err
	}
	loggerpkg.Debug(s.verbose, s.logger, "session start", nil)
	printBanner(out)

	reader := bufio.NewReader(in)
	for s.state == StateRunning {
		_, _ = fmt.Fprint(out, Prompt)
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read input: %w", readErr)
		}
		if line == "" && readErr != nil {
			break
		}
		if err := s.HandleLine(ctx, strings.TrimRight(line, "\r\n"), out); err != nil {
			return err
		}
		if readErr != nil {
			break
		}
	}
	if s.state == StateTerminated {
		return nil
	}

	_, _ = fmt.Fprintln(out)
	s.state = StateTerminated
	loggerpkg.Debug(s.verbose, s.logger, "session end", map[string]any{"reason": "eof", "turns": s.turns})
	return s.record(EOFMarker)
}

// HandleLine applies one input line to the state machine.
func (s *Session) HandleLine(ctx context.Context, line string, out io.Writer) error {
	if s.state == StateTerminated {
		return errors.New("session is terminated")
	}
	if out == nil {
		out = io.Discard
	}

	input := strings.TrimSpace(line)
	switch strings.ToLower(input) {
	case CommandExit:
		if err := s.record(ExitMarker); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, Farewell)
		s.state = StateTerminated
		loggerpkg.Debug(s.verbose, s.logger, "session end", map[string]any{"reason": "exit", "turns": s.turns})
		return nil
	case CommandReset:
		s.history.Reset()
		if err := s.record(ResetMarker); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, ResetConfirm)
		loggerpkg.Debug(s.verbose, s.logger, "history reset", nil)
		return nil
	}

	result, err := s.Turn(ctx, input)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, ReplyPrefix, result.Text())
	return nil
}

// Turn appends the user text, asks the completer with the full history and
// appends the reply. Completion failures are stored as the assistant turn;
// only transcript or history errors are returned.
func (s *Session) Turn(ctx context.Context, text string) (completion.Result, error) {
	if err := s.history.Append(history.RoleUser, text); err != nil {
		return completion.Result{}, err
	}
	if err := s.record(UserLabel + text); err != nil {
		return completion.Result{}, err
	}

	result := s.completer.Complete(ctx, s.history.Snapshot())
	if !result.OK() {
		loggerpkg.Warn(s.logger, "completion failed", map[string]any{
			"kind":  result.Kind.String(),
			"cause": fmt.Sprint(result.Cause),
		})
	}

	reply := result.Text()
	if err := s.history.Append(history.RoleAssistant, reply); err != nil {
		return result, err
	}
	if err := s.record(AssistantLabel + reply); err != nil {
		return result, err
	}

	s.turns++
	loggerpkg.Debug(s.verbose, s.logger, "turn complete", map[string]any{
		"turn":     s.turns,
		"messages": s.history.Len(),
		"kind":     result.Kind.String(),
	})
	return result, nil
}

func (s *Session) record(text string) error {
	if err := s.transcript.Record(text); err != nil {
		loggerpkg.Debug(s.verbose, s.logger, "transcript write failed", map[string]any{"error": err.Error()})
		return fmt.Errorf("record transcript: %w", err)
	}
	return nil
}

func printBanner(out io.Writer) {
	_, _ = fmt.Fprintln(out, "=================================================")
	_, _ = fmt.Fprintln(out, "Welcome to the Personal Virtual Assistant!")
	_, _ = fmt.Fprintln(out, "Type 'exit' to end the session or 'reset' to clear the history.")
	_, _ = fmt.Fprintln(out, "=================================================")
}
