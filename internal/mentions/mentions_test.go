package mentions

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func roster() []Target {
	return []Target{
		{ID: uuid.New(), Handle: "bob", DisplayName: "Bob"},
		{ID: uuid.New(), Handle: "bobby_t", DisplayName: "Bobby Tables"},
		{ID: uuid.New(), Handle: "carol", DisplayName: "Carol"},
	}
}

func TestQueryStateAt(t *testing.T) {
	text := "hey @bo there"

	cases := []struct {
		name   string
		cursor int
		want   *QueryState
	}{
		{"just after at", 5, &QueryState{QueryStart: 4, Query: ""}},
		{"mid query", 7, &QueryState{QueryStart: 4, Query: "bo"}},
		{"cursor before at", 3, nil},
		{"cursor past whitespace", 9, nil},
		{"cursor at end of text", 13, nil},
		{"cursor out of range", 99, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := QueryStateAt(text, tc.cursor)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("QueryStateAt(%q, %d) = %+v, want %+v", text, tc.cursor, got, tc.want)
			}
		})
	}
}

func TestQueryStateCancelsOnSecondAt(t *testing.T) {
	// The later @ becomes the anchor.
	got := QueryStateAt("a @x@y", 6)
	if got == nil || got.QueryStart != 4 || got.Query != "y" {
		t.Fatalf("expected anchor on second @, got %+v", got)
	}
}

func TestFilterTargets(t *testing.T) {
	members := roster()
	composer := members[2].ID

	got := FilterTargets(members, "bo", composer)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	for _, target := range got {
		if target.ID == composer {
			t.Fatal("composer must never be suggested")
		}
	}

	// Display-name matching is case-insensitive.
	got = FilterTargets(members, "TABLES", composer)
	if len(got) != 1 || got[0].Handle != "bobby_t" {
		t.Fatalf("expected bobby_t via display name, got %+v", got)
	}

	// Empty query lists everyone but the composer, capped.
	got = FilterTargets(members, "", composer)
	if len(got) != 2 {
		t.Fatalf("expected full roster minus composer, got %d", len(got))
	}
}

func TestFilterTargetsCapsWindow(t *testing.T) {
	var members []Target
	for i := 0; i < 10; i++ {
		members = append(members, Target{ID: uuid.New(), Handle: "bob", DisplayName: "Bob"})
	}
	got := FilterTargets(members, "b", uuid.New())
	if len(got) != suggestionWindow {
		t.Fatalf("expected window of %d, got %d", suggestionWindow, len(got))
	}
}

func TestApplyRewritesQuerySpan(t *testing.T) {
	text := "hey @bo there"
	state := QueryStateAt(text, 7)
	if state == nil {
		t.Fatal("expected active query")
	}

	newText, newCursor := Apply(text, *state, 7, Target{Handle: "bob"})
	if newText != "hey @bob  there" {
		t.Fatalf("unexpected rewrite %q", newText)
	}
	if newCursor != 9 {
		t.Fatalf("expected cursor 9, got %d", newCursor)
	}
	if QueryStateAt(newText, newCursor) != nil {
		t.Fatal("expected suggestion state cleared after apply")
	}
}

func TestApplyAtEndOfText(t *testing.T) {
	text := "ping @ca"
	state := QueryStateAt(text, 8)
	newText, newCursor := Apply(text, *state, 8, Target{Handle: "carol"})
	if newText != "ping @carol " {
		t.Fatalf("unexpected rewrite %q", newText)
	}
	if newCursor != len([]rune(newText)) {
		t.Fatalf("expected cursor at end, got %d", newCursor)
	}
}

func collect(seq func(func(Segment) bool)) []Segment {
	var out []Segment
	seq(func(s Segment) bool {
		out = append(out, s)
		return true
	})
	return out
}

func TestSegmentsSplitsKnownHandles(t *testing.T) {
	got := collect(Segments("Hey @Bob check this", []Target{{Handle: "bob", DisplayName: "Bob"}}))
	want := []Segment{
		{Text: "Hey "},
		{Text: "@Bob", IsMention: true},
		{Text: " check this"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSegmentsUnknownHandleStaysPlain(t *testing.T) {
	got := collect(Segments("Hey @ghost check this", []Target{{Handle: "bob"}}))
	want := []Segment{{Text: "Hey @ghost check this"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSegmentsHandlesAdjacentAndTrailingMentions(t *testing.T) {
	targets := []Target{{Handle: "bob"}, {Handle: "carol"}}
	got := collect(Segments("@bob @carol", targets))
	want := []Segment{
		{Text: "@bob", IsMention: true},
		{Text: " "},
		{Text: "@carol", IsMention: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSegmentsIsRestartable(t *testing.T) {
	seq := Segments("Hey @bob", []Target{{Handle: "bob"}})
	first := collect(seq)
	second := collect(seq)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical passes, got %+v then %+v", first, second)
	}
}
