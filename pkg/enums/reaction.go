package enums

import "fmt"

// ReactionValue is one of the fixed emoji reactions a member can leave on a message.
type ReactionValue string

const (
	ReactionHeart    ReactionValue = "❤️"
	ReactionThumbsUp ReactionValue = "👍"
	ReactionLaugh    ReactionValue = "😂"
	ReactionWow      ReactionValue = "😮"
	ReactionSad      ReactionValue = "😢"
	ReactionFire     ReactionValue = "🔥"
)

var validReactionValues = []ReactionValue{
	ReactionHeart,
	ReactionThumbsUp,
	ReactionLaugh,
	ReactionWow,
	ReactionSad,
	ReactionFire,
}

// ReactionValues returns the allowed reaction set in display order.
func ReactionValues() []ReactionValue {
	out := make([]ReactionValue, len(validReactionValues))
	copy(out, validReactionValues)
	return out
}

// String implements fmt.Stringer.
func (r ReactionValue) String() string {
	return string(r)
}

// IsValid reports whether the value is part of the allowed reaction set.
func (r ReactionValue) IsValid() bool {
	for _, candidate := range validReactionValues {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReactionValue converts raw input into a ReactionValue.
func ParseReactionValue(value string) (ReactionValue, error) {
	reaction := ReactionValue(value)
	if !reaction.IsValid() {
		return "", fmt.Errorf("invalid reaction %q", value)
	}
	return reaction, nil
}
