package syncer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/reelmates/reelmates-backend/internal/mentions"
	"github.com/reelmates/reelmates-backend/pkg/enums"
	"github.com/reelmates/reelmates-backend/pkg/types"
)

func TestComposeStateMentionFlow(t *testing.T) {
	compose := NewComposeState()
	roster := []mentions.Target{
		{ID: uuid.New(), Handle: "bob", DisplayName: "Bob"},
		{ID: uuid.New(), Handle: "carol", DisplayName: "Carol"},
	}
	composer := uuid.New()

	compose.SetDraft("hey @bo", 7)
	suggestions := compose.Suggestions(roster, composer)
	if len(suggestions) != 1 || suggestions[0].Handle != "bob" {
		t.Fatalf("expected bob suggested, got %+v", suggestions)
	}

	compose.ApplyMention(suggestions[0])
	snap := compose.Snapshot()
	if snap.Draft != "hey @bob " {
		t.Fatalf("unexpected draft %q", snap.Draft)
	}
	if snap.Query != nil {
		t.Fatal("expected query cleared after apply")
	}
	if compose.Suggestions(roster, composer) != nil {
		t.Fatal("expected no suggestions without an active query")
	}
}

func TestComposeStateCursorMoveCancelsQuery(t *testing.T) {
	compose := NewComposeState()

	compose.SetDraft("hey @bo", 7)
	if compose.Snapshot().Query == nil {
		t.Fatal("expected active query at end of mention span")
	}

	compose.SetDraft("hey @bo", 2)
	if compose.Snapshot().Query != nil {
		t.Fatal("expected query cancelled after cursor left the span")
	}
}

func TestComposeStateClearEmptiesEverything(t *testing.T) {
	compose := NewComposeState()
	replyTo := uuid.New()

	compose.SetDraft("on it @car", 10)
	compose.SetReplyTarget(&replyTo)
	compose.StagePick(&types.MediaRef{MediaType: enums.MediaTypeMovie, MediaID: "42", Title: "Arrival"})

	snap := compose.Snapshot()
	if snap.ReplyTo == nil || *snap.ReplyTo != replyTo || snap.StagedPick == nil {
		t.Fatalf("expected staged state, got %+v", snap)
	}

	compose.Clear()
	snap = compose.Snapshot()
	if snap.Draft != "" || snap.Cursor != 0 || snap.Query != nil || snap.ReplyTo != nil || snap.StagedPick != nil {
		t.Fatalf("expected empty buffer after clear, got %+v", snap)
	}
}
