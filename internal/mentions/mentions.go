// Package mentions implements the compose-side and render-side handling of
// @handle references. A mention is a display convenience resolved against
// the current roster; it carries no foreign key and no delivery guarantee.
package mentions

import (
	"iter"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// suggestionWindow caps how many candidates a suggestion popover shows.
const suggestionWindow = 6

// Target is a roster entry that can be mentioned.
type Target struct {
	ID          uuid.UUID
	Handle      string
	DisplayName string
}

// QueryState describes an in-progress mention query inside a compose buffer.
// QueryStart is the rune index of the "@" anchor; Query is the text typed
// after it up to the cursor.
type QueryState struct {
	QueryStart int
	Query      string
}

// Segment is one rendered span of a message body.
type Segment struct {
	Text      string
	IsMention bool
}

// QueryStateAt inspects the text immediately before the cursor and reports
// the active mention query, if any. All positions are rune offsets. The
// query is only active while the span between the nearest "@" and the
// cursor contains no whitespace, so moving the cursor out of the span
// cancels the suggestion state.
func QueryStateAt(text string, cursor int) *QueryState {
	runes := []rune(text)
	if cursor < 0 || cursor > len(runes) {
		return nil
	}
	for i := cursor - 1; i >= 0; i-- {
		r := runes[i]
		if unicode.IsSpace(r) {
			return nil
		}
		if r == '@' {
			return &QueryState{
				QueryStart: i,
				Query:      string(runes[i+1 : cursor]),
			}
		}
	}
	return nil
}

// FilterTargets returns up to suggestionWindow roster entries matching the
// query case-insensitively against handle and display name, never including
// the composer. Prefix matches rank ahead of mid-string matches.
func FilterTargets(members []Target, query string, excludeUserID uuid.UUID) []Target {
	needle := strings.ToLower(strings.TrimSpace(query))

	var prefix, substring []Target
	for _, member := range members {
		if member.ID == excludeUserID {
			continue
		}
		handle := strings.ToLower(member.Handle)
		name := strings.ToLower(member.DisplayName)
		switch {
		case needle == "",
			strings.HasPrefix(handle, needle),
			strings.HasPrefix(name, needle):
			prefix = append(prefix, member)
		case strings.Contains(handle, needle), strings.Contains(name, needle):
			substring = append(substring, member)
		}
	}

	out := append(prefix, substring...)
	if len(out) > suggestionWindow {
		out = out[:suggestionWindow]
	}
	return out
}

// Apply rewrites the compose buffer after the user selects a suggestion:
// the span [state.QueryStart, cursor) becomes "@<handle> ". Returns the new
// text and the new cursor position, just past the inserted space.
func Apply(text string, state QueryState, cursor int, target Target) (string, int) {
	runes := []rune(text)
	if cursor > len(runes) {
		cursor = len(runes)
	}
	if state.QueryStart < 0 || state.QueryStart > cursor {
		return text, cursor
	}

	inserted := []rune("@" + target.Handle + " ")
	out := make([]rune, 0, state.QueryStart+len(inserted)+len(runes)-cursor)
	out = append(out, runes[:state.QueryStart]...)
	out = append(out, inserted...)
	out = append(out, runes[cursor:]...)
	return string(out), state.QueryStart + len(inserted)
}

// Segments lazily splits a finalized message body into plain and mention
// spans by matching @<token> patterns against the current roster. A token
// that no longer resolves (member left, handle changed) renders as plain
// text. The sequence is restartable, so a renderer may range over it more
// than once.
func Segments(text string, roster []Target) iter.Seq[Segment] {
	handles := make(map[string]bool, len(roster))
	for _, member := range roster {
		handles[strings.ToLower(member.Handle)] = true
	}

	return func(yield func(Segment) bool) {
		runes := []rune(text)
		start := 0
		i := 0
		for i < len(runes) {
			if runes[i] != '@' {
				i++
				continue
			}
			end := i + 1
			for end < len(runes) && isHandleRune(runes[end]) {
				end++
			}
			token := string(runes[i+1 : end])
			if token == "" || !handles[strings.ToLower(token)] {
				i = end
				continue
			}
			if start < i {
				if !yield(Segment{Text: string(runes[start:i])}) {
					return
				}
			}
			if !yield(Segment{Text: string(runes[i:end]), IsMention: true}) {
				return
			}
			start = end
			i = end
		}
		if start < len(runes) {
			yield(Segment{Text: string(runes[start:])})
		}
	}
}

func isHandleRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
