package enums

import "fmt"

// InviteStatus tracks the lifecycle of a group invite.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusRejected InviteStatus = "rejected"
)

var validInviteStatuses = []InviteStatus{
	InviteStatusPending,
	InviteStatusAccepted,
	InviteStatusRejected,
}

// String implements fmt.Stringer.
func (s InviteStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InviteStatus.
func (s InviteStatus) IsValid() bool {
	for _, candidate := range validInviteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// InviteDecision is the invitee's response to a pending invite.
type InviteDecision string

const (
	InviteDecisionAccept InviteDecision = "accept"
	InviteDecisionReject InviteDecision = "reject"
)

// IsValid reports whether the value is a known InviteDecision.
func (d InviteDecision) IsValid() bool {
	return d == InviteDecisionAccept || d == InviteDecisionReject
}

// ParseInviteDecision converts raw input into an InviteDecision.
func ParseInviteDecision(value string) (InviteDecision, error) {
	decision := InviteDecision(value)
	if !decision.IsValid() {
		return "", fmt.Errorf("invalid invite decision %q", value)
	}
	return decision, nil
}
