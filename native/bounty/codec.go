package bounty

import (
	"encoding/binary"
	"fmt"
)

// Persisted record layout. Fixed fields are packed at stable offsets; the task
// description occupies the remainder of the buffer.
//
//	[0,32)    client
//	[32,64)   freelancer (all-zero until accepted)
//	[64,96)   verifier
//	[96,104)  amount, big-endian uint64
//	[104,112) deadline, big-endian uint64
//	[112]     status byte
//	[113,...) task description
const (
	clientOffset     = 0
	freelancerOffset = clientOffset + AddressLength
	verifierOffset   = freelancerOffset + AddressLength
	amountOffset     = verifierOffset + AddressLength
	deadlineOffset   = amountOffset + 8
	statusOffset     = deadlineOffset + 8
	descOffset       = statusOffset + 1

	// FixedRecordLength is the byte width of the fixed-field region.
	FixedRecordLength = descOffset
)

// EncodedLen returns the exact persisted size of the record.
func EncodedLen(b *Bounty) int {
	if b == nil {
		return 0
	}
	return FixedRecordLength + len(b.Description)
}

// Encode packs the record into its persisted byte layout.
func Encode(b *Bounty) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformedRecord)
	}
	buf := make([]byte, EncodedLen(b))
	copy(buf[clientOffset:], b.Client[:])
	copy(buf[freelancerOffset:], b.Freelancer[:])
	copy(buf[verifierOffset:], b.Verifier[:])
	binary.BigEndian.PutUint64(buf[amountOffset:], b.Amount)
	binary.BigEndian.PutUint64(buf[deadlineOffset:], b.Deadline)
	buf[statusOffset] = byte(b.Status)
	copy(buf[descOffset:], b.Description)
	return buf, nil
}

// Decode recovers the structured record from its persisted byte layout. The
// buffer must be at least the fixed-field width and carry a known status tag;
// everything past the fixed region is the task description.
func Decode(buf []byte) (*Bounty, error) {
	if len(buf) < FixedRecordLength {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedRecord, len(buf), FixedRecordLength)
	}
	b := &Bounty{
		Amount:      binary.BigEndian.Uint64(buf[amountOffset:]),
		Deadline:    binary.BigEndian.Uint64(buf[deadlineOffset:]),
		Status:      Status(buf[statusOffset]),
		Description: append([]byte(nil), buf[descOffset:]...),
	}
	copy(b.Client[:], buf[clientOffset:])
	copy(b.Freelancer[:], buf[freelancerOffset:])
	copy(b.Verifier[:], buf[verifierOffset:])
	if !b.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status tag %d", ErrMalformedRecord, buf[statusOffset])
	}
	return b, nil
}
