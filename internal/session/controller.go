// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/elastui/internal/model"
	"github.com/jeranaias/elastui/internal/ollama"
	"github.com/jeranaias/elastui/internal/thinking"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy is returned when Start is called while a generation is
	// already in flight. One generation at a time, system-wide.
	ErrBusy = errors.New("a generation is already in progress")

	// ErrNoModel is returned when no model has been selected.
	ErrNoModel = errors.New("no model selected")

	// ErrNoSession is returned when the target session does not exist at
	// start time. (Deletion after start is tolerated; see Store.UpdateMessage.)
	ErrNoSession = errors.New("session does not exist")
)

// fallbackContent is shown in place of an answer when a generation fails
// before producing any visible text.
const fallbackContent = "No response received. Check that the model server is running and resend your message."

// =============================================================================
// CONTROLLER STATE
// =============================================================================

// State is the controller's position in one generation's lifecycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingFirstByte
	StateStreaming
	StateFinalizing
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingFirstByte:
		return "awaiting-first-byte"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// =============================================================================
// GENERATION CONTROLLER
// =============================================================================

// Generator is the streaming completion boundary. Satisfied by
// *ollama.Client; tests substitute fakes.
type Generator interface {
	GenerateStream(ctx context.Context, req *ollama.GenerateRequest, callback ollama.StreamCallback) error
}

// Controller orchestrates one streaming exchange at a time: it appends the
// user message and the assistant placeholder, feeds decoded records through
// the thinking splitter, writes the running visible/reasoning text back into
// the placeholder via the store, and finalizes the message when the stream
// ends or fails.
//
// The single-generation rule is enforced here, at the single source of
// truth, rather than replicated across UI entry points.
type Controller struct {
	mu    sync.Mutex
	state State

	store  *Store
	client Generator

	model   string
	options *ollama.Options

	// onProgress, when set, receives the visible text after every record.
	onProgress func(visible string)
}

// NewController creates a controller bound to a store and a generation
// client.
func NewController(store *Store, client Generator) *Controller {
	return &Controller{
		store:  store,
		client: client,
	}
}

// SetModel selects the model used for subsequent generations.
func (c *Controller) SetModel(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = name
}

// Model returns the currently selected model.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// SetOptions sets the inference options sent with each request.
func (c *Controller) SetOptions(opts *ollama.Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = opts
}

// SetProgressCallback registers a callback invoked with the visible text
// after each decoded record. Called from the streaming goroutine.
func (c *Controller) SetProgressCallback(fn func(visible string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onProgress = fn
}

// CurrentState returns the controller state.
func (c *Controller) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsBusy reports whether a generation is in flight.
func (c *Controller) IsBusy() bool {
	return c.CurrentState() != StateIdle
}

// =============================================================================
// GENERATION
// =============================================================================

// Start runs one complete streaming exchange and blocks until it finishes.
// Callers typically run it in a goroutine and re-render on store
// notifications.
//
// Rejections (ErrBusy, ErrNoModel, ErrNoSession) happen synchronously before
// any message is appended. After the exchange starts, a transport failure
// finalizes the placeholder with an error field and is also returned to the
// caller; the store and all other sessions are unaffected, and no retry is
// attempted.
func (c *Controller) Start(ctx context.Context, sessionID, userText string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.model == "" {
		c.mu.Unlock()
		return ErrNoModel
	}
	modelName := c.model
	opts := c.options
	onProgress := c.onProgress
	c.state = StateAwaitingFirstByte
	c.mu.Unlock()

	defer c.setState(StateIdle)

	sess := c.store.GetSession(sessionID)
	if sess == nil {
		return ErrNoSession
	}

	// Turn setup: user message, then the placeholder the stream fills in.
	c.store.AppendMessage(sessionID, model.NewUserMessage(userText))
	placeholder := model.NewAssistantPlaceholder()
	messageID := c.store.AppendMessage(sessionID, placeholder)

	prompt := buildPrompt(c.store.GetSession(sessionID))

	var raw strings.Builder
	splitter := thinking.NewSplitter()
	start := time.Now()
	var lastVisible string
	var serverElapsed time.Duration

	streamErr := c.client.GenerateStream(ctx, &ollama.GenerateRequest{
		Model:   modelName,
		Prompt:  prompt,
		Options: opts,
	}, func(rec ollama.GenerateResponse) {
		c.setState(StateStreaming)

		if rec.Response != "" {
			raw.WriteString(rec.Response)
			res := splitter.Consume(raw.String())
			lastVisible = res.Visible

			c.store.UpdateMessage(sessionID, messageID, model.MessagePatch{
				Content:   model.StringPtr(res.Visible),
				Reasoning: model.StringPtr(res.Reasoning),
			})
			if onProgress != nil {
				onProgress(res.Visible)
			}
		}
		if rec.Done {
			serverElapsed = rec.TotalTime()
		}
	})

	c.setState(StateFinalizing)

	elapsed := serverElapsed
	if elapsed == 0 {
		elapsed = time.Since(start)
	}

	final := model.MessagePatch{
		IsStreaming: model.BoolPtr(false),
		ElapsedMS:   model.Int64Ptr(elapsed.Milliseconds()),
	}
	if streamErr != nil {
		final.Err = model.StringPtr(streamErr.Error())
		if lastVisible == "" {
			final.Content = model.StringPtr(fallbackContent)
		}
	}
	// No-op if the session was deleted mid-stream.
	c.store.UpdateMessage(sessionID, messageID, final)

	return streamErr
}

// setState transitions the controller state.
func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// =============================================================================
// PROMPT CONSTRUCTION
// =============================================================================

// buildPrompt flattens the session history into a single prompt for the
// /api/generate endpoint. System messages lead, then the transcript in
// order, ending with an open assistant turn.
func buildPrompt(sess *model.Session) string {
	if sess == nil {
		return ""
	}

	var b strings.Builder
	for i := range sess.Messages {
		msg := &sess.Messages[i]
		// The still-empty placeholder is not part of the transcript.
		if msg.IsStreaming || (msg.Role == model.RoleAssistant && msg.IsEmpty()) {
			continue
		}

		switch msg.Role {
		case model.RoleSystem:
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		case model.RoleUser:
			b.WriteString("User: ")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		case model.RoleAssistant:
			b.WriteString("Assistant: ")
			b.WriteString(msg.Content)
			b.WriteString("\n")
		}
	}
	b.WriteString("Assistant:")
	return b.String()
}
