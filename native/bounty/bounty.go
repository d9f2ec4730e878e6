package bounty

import "fmt"

// AddressLength is the byte width of an account identifier.
const AddressLength = 32

// Address identifies a single account in the settlement ledger. The all-zero
// value is the system's null identity and marks an unassigned freelancer slot.
type Address [AddressLength]byte

var zeroAddress Address

// IsZero reports whether the address is the null identity.
func (a Address) IsZero() bool { return a == zeroAddress }

// Status is the lifecycle tag persisted as a single byte on every record. The
// numeric values are wire constants carried over from the first deployment and
// must not be renumbered.
type Status uint8

const (
	StatusOpen      Status = 0 // created, waiting for a freelancer
	StatusAccepted  Status = 1 // a freelancer committed to the work
	StatusApproved  Status = 2 // submission approved, payout claimable
	StatusClaimed   Status = 3 // payout claimed by the freelancer
	StatusRefunded  Status = 4 // escrow returned to the client
	StatusRejected  Status = 5 // work rejected, escrow returned to the client
	StatusSubmitted Status = 6 // work submitted, awaiting a decision
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusAccepted, StatusApproved, StatusClaimed, StatusRefunded, StatusRejected, StatusSubmitted:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status permits no further transition. A
// terminal record has issued its single value transfer (or, for REFUNDED via
// the pre-acceptance path, returned the escrow) and must never issue another.
func (s Status) Terminal() bool {
	switch s {
	case StatusClaimed, StatusRefunded, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusAccepted:
		return "accepted"
	case StatusApproved:
		return "approved"
	case StatusClaimed:
		return "claimed"
	case StatusRefunded:
		return "refunded"
	case StatusRejected:
		return "rejected"
	case StatusSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Bounty is the structured form of one persisted record. It is created once,
// mutated in place by the engine until it reaches a terminal status, and is the
// durable source of truth for whether escrowed value has already moved.
type Bounty struct {
	Client      Address
	Freelancer  Address
	Verifier    Address
	Amount      uint64
	Deadline    uint64
	Status      Status
	Description []byte
}

// Clone returns a deep copy of the bounty so callers can safely mutate the
// copy without affecting the stored instance.
func (b *Bounty) Clone() *Bounty {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Description = append([]byte(nil), b.Description...)
	return &clone
}

// Sanitize validates the record invariants that must hold after every
// transition and returns a cloned instance. An OPEN record must have no
// freelancer; every advanced status except REFUNDED (which is reachable before
// acceptance) must have one.
func Sanitize(b *Bounty) (*Bounty, error) {
	if b == nil {
		return nil, fmt.Errorf("bounty: nil record")
	}
	if !b.Status.Valid() {
		return nil, fmt.Errorf("bounty: invalid status %d", b.Status)
	}
	if b.Amount == 0 {
		return nil, fmt.Errorf("bounty: amount must be positive")
	}
	switch b.Status {
	case StatusOpen:
		if !b.Freelancer.IsZero() {
			return nil, fmt.Errorf("bounty: open record must not carry a freelancer")
		}
	case StatusRefunded:
		// Refunds are legal both before and after acceptance.
	default:
		if b.Freelancer.IsZero() {
			return nil, fmt.Errorf("bounty: status %s requires a freelancer", b.Status)
		}
	}
	return b.Clone(), nil
}

// Deposit describes the funding payment bundled with a create call: the first
// of the two grouped actions, verified by the engine before any record is
// written.
type Deposit struct {
	Sender    Address
	Recipient Address
	Amount    uint64
}
