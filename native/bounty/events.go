package bounty

import (
	"encoding/hex"
	"strconv"

	"openbounty/core/types"
)

const (
	EventTypeBountyCreated      = "bounty.created"
	EventTypeBountyAccepted     = "bounty.accepted"
	EventTypeBountySubmitted    = "bounty.submitted"
	EventTypeBountyApproved     = "bounty.approved"
	EventTypeBountyRejected     = "bounty.rejected"
	EventTypeBountyClaimed      = "bounty.claimed"
	EventTypeBountyRefunded     = "bounty.refunded"
	EventTypeBountyAutoRefunded = "bounty.auto_refunded"
)

// NewCreatedEvent returns the canonical event payload for a newly created
// bounty.
func NewCreatedEvent(id uint64, b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountyCreated, id, b)
}

// NewAcceptedEvent returns the canonical event payload emitted when a
// freelancer commits to a bounty.
func NewAcceptedEvent(id uint64, b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountyAccepted, id, b)
}

// NewSubmittedEvent returns the canonical event payload emitted when work is
// submitted for review.
func NewSubmittedEvent(id uint64, b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountySubmitted, id, b)
}

// NewApprovedEvent returns the canonical event payload emitted when a
// submission is approved. No value moves until the freelancer claims.
func NewApprovedEvent(id uint64, b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountyApproved, id, b)
}

// NewRejectedEvent returns the canonical event payload for a rejection refund
// to the client.
func NewRejectedEvent(id uint64, b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountyRejected, id, b)
}

// NewClaimedEvent returns the canonical event payload for a claimed payout.
func NewClaimedEvent(id uint64, b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountyClaimed, id, b)
}

// NewRefundedEvent returns the canonical event payload for a manual
// pre-deadline refund.
func NewRefundedEvent(id uint64, b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountyRefunded, id, b)
}

// NewAutoRefundedEvent returns the canonical event payload for the
// deadline-triggered refund path.
func NewAutoRefundedEvent(id uint64, b *Bounty) *types.Event {
	return newBountyEvent(EventTypeBountyAutoRefunded, id, b)
}

func newBountyEvent(eventType string, id uint64, b *Bounty) *types.Event {
	attrs := make(map[string]string)
	attrs["id"] = strconv.FormatUint(id, 10)
	if b == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["client"] = hex.EncodeToString(b.Client[:])
	attrs["verifier"] = hex.EncodeToString(b.Verifier[:])
	attrs["amount"] = strconv.FormatUint(b.Amount, 10)
	attrs["deadline"] = strconv.FormatUint(b.Deadline, 10)
	attrs["status"] = b.Status.String()
	if !b.Freelancer.IsZero() {
		attrs["freelancer"] = hex.EncodeToString(b.Freelancer[:])
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
