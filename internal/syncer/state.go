package syncer

import (
	"sync"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/internal/mentions"
	"github.com/reelmates/reelmates-backend/pkg/types"
)

// ComposeState is the local-only half of the view: the message draft, its
// mention query, the reply target, and a staged pick attachment. Background
// pulls merge in the other direction and never write here; only a
// successful send clears it.
type ComposeState struct {
	mu         sync.Mutex
	draft      string
	cursor     int
	query      *mentions.QueryState
	replyTo    *uuid.UUID
	stagedPick *types.MediaRef
}

// ComposeSnapshot is a point-in-time copy of the compose buffer.
type ComposeSnapshot struct {
	Draft      string
	Cursor     int
	Query      *mentions.QueryState
	ReplyTo    *uuid.UUID
	StagedPick *types.MediaRef
}

// NewComposeState returns an empty compose buffer.
func NewComposeState() *ComposeState {
	return &ComposeState{}
}

// SetDraft records the draft text and cursor position and re-evaluates the
// mention query. Called on every keystroke and cursor move, so leaving a
// mention span cancels the suggestion state.
func (c *ComposeState) SetDraft(text string, cursor int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
	c.cursor = cursor
	c.query = mentions.QueryStateAt(text, cursor)
}

// Suggestions returns the mention candidates for the active query, or nil
// when no query is active.
func (c *ComposeState) Suggestions(roster []mentions.Target, composerID uuid.UUID) []mentions.Target {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query == nil {
		return nil
	}
	return mentions.FilterTargets(roster, c.query.Query, composerID)
}

// ApplyMention rewrites the draft with the selected target and clears the
// query state. A no-op when no query is active.
func (c *ComposeState) ApplyMention(target mentions.Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query == nil {
		return
	}
	c.draft, c.cursor = mentions.Apply(c.draft, *c.query, c.cursor, target)
	c.query = mentions.QueryStateAt(c.draft, c.cursor)
}

// SetReplyTarget stages the message being replied to; nil clears it.
func (c *ComposeState) SetReplyTarget(messageID *uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replyTo = messageID
}

// StagePick attaches a media reference to the draft; nil clears it.
func (c *ComposeState) StagePick(ref *types.MediaRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stagedPick = ref
}

// Snapshot copies the current buffer for building a send request.
func (c *ComposeState) Snapshot() ComposeSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComposeSnapshot{
		Draft:      c.draft,
		Cursor:     c.cursor,
		Query:      c.query,
		ReplyTo:    c.replyTo,
		StagedPick: c.stagedPick,
	}
}

// Clear empties the buffer after a successful send.
func (c *ComposeState) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = ""
	c.cursor = 0
	c.query = nil
	c.replyTo = nil
	c.stagedPick = nil
}
