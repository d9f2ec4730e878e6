package bounty

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"openbounty/core/events"
	"openbounty/core/types"
	"openbounty/native/common"
	"openbounty/observability"
)

// ModuleName is the pause-guard key for the bounty module.
const ModuleName = "bounty"

// DefaultClaimFee mirrors the minimum network fee attached to the claim
// payout. All client-bound refund transfers carry a zero fee.
const DefaultClaimFee uint64 = 1000

var errNilState = errors.New("bounty engine: state not configured")
var errNilSettler = errors.New("bounty engine: settler not configured")

// engineState is the record-store surface the engine depends on. Every
// operation re-reads the record it was given and writes the full record back;
// the engine never caches records across calls.
type engineState interface {
	BountyPut(id uint64, b *Bounty) error
	BountyGet(id uint64) (*Bounty, bool, error)
	BountyCount() (uint64, error)
	NextBountyID() (uint64, error)
	RevertBountyID(id uint64)
	EscrowAddress() Address
}

// Settler issues the single outbound payment of a terminal transition: an
// atomic "pay amount from escrow to account" that either fully succeeds or
// fully fails. The fee is borne by the caller of the public operation.
type Settler interface {
	Pay(caller, to Address, amount, fee uint64) error
}

type bountyEvent struct {
	evt *types.Event
}

func (e bountyEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e bountyEvent) Event() *types.Event { return e.evt }

// Engine wires the bounty state machine with the record store, the settlement
// gateway and the event emitter. It is the only component that mutates bounty
// records; all transitions are validated before any balance-affecting action.
type Engine struct {
	state     engineState
	settler   Settler
	emitter   events.Emitter
	pauses    common.PauseView
	logger    *slog.Logger
	nowFn     func() int64
	claimFee  uint64
	refundFee uint64
}

// NewEngine creates a bounty engine with a no-op emitter and the default fee
// schedule. Callers wire the state backend and settler before use.
func NewEngine() *Engine {
	return &Engine{
		emitter:  events.NoopEmitter{},
		logger:   slog.Default(),
		nowFn:    func() int64 { return time.Now().Unix() },
		claimFee: DefaultClaimFee,
	}
}

// SetState configures the record-store backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetSettler configures the value-transfer gateway used by the engine.
func (e *Engine) SetSettler(settler Settler) { e.settler = settler }

// SetPauses configures the module pause view consulted before every mutating
// operation.
func (e *Engine) SetPauses(pauses common.PauseView) { e.pauses = pauses }

// SetFees overrides the fee schedule attached to outbound transfers. The claim
// fee applies to freelancer payouts, the refund fee to every client-bound
// return (reject, refund, auto-refund).
func (e *Engine) SetFees(claimFee, refundFee uint64) {
	e.claimFee = claimFee
	e.refundFee = refundFee
}

// SetLogger overrides the structured logger. Passing nil resets it to the
// process default.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		e.logger = slog.Default()
		return
	}
	e.logger = logger
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(bountyEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) deadlinePassed(deadline uint64) bool {
	now := e.now()
	if now < 0 {
		now = 0
	}
	return uint64(now) >= deadline
}

func (e *Engine) guard() error {
	return common.Guard(e.pauses, ModuleName)
}

func (e *Engine) observe(op string, err error) {
	observability.BountyMetrics().ObserveOperation(op, err)
}

func (e *Engine) loadBounty(id uint64) (*Bounty, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	b, ok, err := e.state.BountyGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return b, nil
}

// Create allocates the next identifier and persists a new OPEN record. The
// funding deposit is the first of the two grouped actions and must originate
// from the caller, be addressed to the escrow, and match the funded amount
// exactly; no partial or over-funding is accepted.
func (e *Engine) Create(caller, verifier Address, amount, deadline uint64, description []byte, dep Deposit) (id uint64, err error) {
	defer func() { e.observe("create", err) }()
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	if err := e.guard(); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidFunding)
	}
	if dep.Amount != amount {
		return 0, fmt.Errorf("%w: deposit %d does not equal amount %d", ErrInvalidFunding, dep.Amount, amount)
	}
	if dep.Sender != caller {
		return 0, fmt.Errorf("%w: deposit sender is not the caller", ErrInvalidFunding)
	}
	if dep.Recipient != e.state.EscrowAddress() {
		return 0, fmt.Errorf("%w: deposit not addressed to the escrow", ErrInvalidFunding)
	}
	if e.deadlinePassed(deadline) {
		return 0, ErrDeadlineNotFuture
	}
	id, err = e.state.NextBountyID()
	if err != nil {
		return 0, err
	}
	b := &Bounty{
		Client:      caller,
		Verifier:    verifier,
		Amount:      amount,
		Deadline:    deadline,
		Status:      StatusOpen,
		Description: append([]byte(nil), description...),
	}
	if err := e.state.BountyPut(id, b); err != nil {
		e.state.RevertBountyID(id)
		return 0, err
	}
	e.emit(NewCreatedEvent(id, b))
	e.logger.Info("bounty created", "id", id, "amount", amount, "deadline", deadline)
	return id, nil
}

// Accept commits the caller as the bounty's freelancer. The bounty must still
// be OPEN and its deadline unexpired; the client cannot accept its own bounty.
func (e *Engine) Accept(caller Address, id uint64) (err error) {
	defer func() { e.observe("accept", err) }()
	if err := e.guard(); err != nil {
		return err
	}
	b, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if b.Status != StatusOpen {
		return fmt.Errorf("%w: cannot accept in status %s", ErrInvalidState, b.Status)
	}
	if e.deadlinePassed(b.Deadline) {
		return ErrDeadlineExpired
	}
	if err := authorizeAccept(b, caller); err != nil {
		return err
	}
	b.Freelancer = caller
	b.Status = StatusAccepted
	if err := e.state.BountyPut(id, b); err != nil {
		return err
	}
	e.emit(NewAcceptedEvent(id, b))
	e.logger.Info("bounty accepted", "id", id)
	return nil
}

// Submit marks the committed freelancer's work as delivered.
func (e *Engine) Submit(caller Address, id uint64) (err error) {
	defer func() { e.observe("submit", err) }()
	if err := e.guard(); err != nil {
		return err
	}
	b, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if b.Status != StatusAccepted {
		return fmt.Errorf("%w: cannot submit in status %s", ErrInvalidState, b.Status)
	}
	if err := authorizeFreelancer(b, caller); err != nil {
		return err
	}
	b.Status = StatusSubmitted
	if err := e.state.BountyPut(id, b); err != nil {
		return err
	}
	e.emit(NewSubmittedEvent(id, b))
	e.logger.Info("bounty submitted", "id", id)
	return nil
}

// Approve finalises the decision on a submission without moving value; the
// escrow retains the funds until the freelancer claims them.
func (e *Engine) Approve(caller Address, id uint64) (err error) {
	defer func() { e.observe("approve", err) }()
	if err := e.guard(); err != nil {
		return err
	}
	b, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if b.Status != StatusSubmitted {
		return fmt.Errorf("%w: cannot approve in status %s", ErrInvalidState, b.Status)
	}
	if err := authorizeDecision(b, caller); err != nil {
		return err
	}
	b.Status = StatusApproved
	if err := e.state.BountyPut(id, b); err != nil {
		return err
	}
	e.emit(NewApprovedEvent(id, b))
	e.logger.Info("bounty approved", "id", id)
	return nil
}

// Reject turns the work down before or after submission and returns the
// escrowed amount to the client in the same operation.
func (e *Engine) Reject(caller Address, id uint64) (err error) {
	defer func() { e.observe("reject", err) }()
	if err := e.guard(); err != nil {
		return err
	}
	b, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if b.Status != StatusSubmitted && b.Status != StatusAccepted {
		return fmt.Errorf("%w: cannot reject in status %s", ErrInvalidState, b.Status)
	}
	if err := authorizeDecision(b, caller); err != nil {
		return err
	}
	if err := e.settle(id, b, caller, b.Client, StatusRejected, e.refundFee); err != nil {
		return err
	}
	e.emit(NewRejectedEvent(id, b))
	e.logger.Info("bounty rejected", "id", id, "refunded", b.Amount)
	return nil
}

// Claim pays the approved bounty out to the freelancer. The claim transfer
// carries the configured network fee, borne by the caller.
func (e *Engine) Claim(caller Address, id uint64) (err error) {
	defer func() { e.observe("claim", err) }()
	if err := e.guard(); err != nil {
		return err
	}
	b, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if b.Status != StatusApproved {
		return fmt.Errorf("%w: cannot claim in status %s", ErrInvalidState, b.Status)
	}
	if err := authorizeFreelancer(b, caller); err != nil {
		return err
	}
	if err := e.settle(id, b, caller, b.Freelancer, StatusClaimed, e.claimFee); err != nil {
		return err
	}
	e.emit(NewClaimedEvent(id, b))
	e.logger.Info("bounty claimed", "id", id, "paid", b.Amount)
	return nil
}

// Refund is the manual, pre-deadline return path. Only the client or the
// verifier may trigger it; once the deadline has passed the deadline-driven
// AutoRefund path must be used instead.
func (e *Engine) Refund(caller Address, id uint64) (err error) {
	defer func() { e.observe("refund", err) }()
	if err := e.guard(); err != nil {
		return err
	}
	b, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if b.Status.Terminal() {
		return fmt.Errorf("%w: cannot refund in status %s", ErrInvalidState, b.Status)
	}
	if e.deadlinePassed(b.Deadline) {
		return ErrDeadlineExpired
	}
	if err := authorizeDecision(b, caller); err != nil {
		return err
	}
	if err := e.settle(id, b, caller, b.Client, StatusRefunded, e.refundFee); err != nil {
		return err
	}
	e.emit(NewRefundedEvent(id, b))
	e.logger.Info("bounty refunded", "id", id, "refunded", b.Amount)
	return nil
}

// AutoRefund returns the escrow to the client once the deadline has passed.
// Any caller may trigger it.
func (e *Engine) AutoRefund(caller Address, id uint64) (err error) {
	defer func() { e.observe("auto_refund", err) }()
	if err := e.guard(); err != nil {
		return err
	}
	b, err := e.loadBounty(id)
	if err != nil {
		return err
	}
	if b.Status.Terminal() {
		return fmt.Errorf("%w: cannot auto-refund in status %s", ErrInvalidState, b.Status)
	}
	if !e.deadlinePassed(b.Deadline) {
		return ErrDeadlineNotExpired
	}
	if err := e.settle(id, b, caller, b.Client, StatusRefunded, e.refundFee); err != nil {
		return err
	}
	e.emit(NewAutoRefundedEvent(id, b))
	e.logger.Info("bounty auto-refunded", "id", id, "refunded", b.Amount)
	return nil
}

// Info returns a copy of the stored record.
func (e *Engine) Info(id uint64) (*Bounty, error) {
	return e.loadBounty(id)
}

// Count returns the current value of the bounty counter: the number of
// successful creates since genesis.
func (e *Engine) Count() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.BountyCount()
}

// settle advances the record to its terminal status and issues the single
// outbound transfer. The status write lands first so the record is the durable
// source of truth for "value has moved"; if the transfer then fails, the prior
// record is restored and the operation surfaces ErrTransferFailed. A failed
// restore strands a terminal-but-unpaid record, which an operator can repair,
// but can never cause a second transfer. The argument bounty is advanced in
// place on success so callers emit the terminal state.
func (e *Engine) settle(id uint64, b *Bounty, caller, recipient Address, status Status, fee uint64) error {
	if e.settler == nil {
		return errNilSettler
	}
	if b.Amount == 0 {
		return fmt.Errorf("%w: zero amount on record %d", ErrMalformedRecord, id)
	}
	prev := b.Clone()
	b.Status = status
	if err := e.state.BountyPut(id, b); err != nil {
		b.Status = prev.Status
		return err
	}
	if err := e.settler.Pay(caller, recipient, b.Amount, fee); err != nil {
		if restoreErr := e.state.BountyPut(id, prev); restoreErr != nil {
			e.logger.Error("bounty settle restore failed", "id", id, "error", restoreErr)
			return fmt.Errorf("%w: %v (restore failed: %v)", ErrTransferFailed, err, restoreErr)
		}
		b.Status = prev.Status
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	return nil
}
