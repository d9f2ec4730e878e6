package bounty

import "errors"

var (
	ErrNotFound           = errors.New("bounty: not found")
	ErrInvalidState       = errors.New("bounty: operation not permitted in current status")
	ErrUnauthorized       = errors.New("bounty: caller not authorized")
	ErrSelfDealing        = errors.New("bounty: client cannot accept own bounty")
	ErrDeadlineExpired    = errors.New("bounty: deadline has passed")
	ErrDeadlineNotExpired = errors.New("bounty: deadline has not passed")
	ErrDeadlineNotFuture  = errors.New("bounty: deadline must be in the future")
	ErrInvalidFunding     = errors.New("bounty: funding deposit does not match")
	ErrMalformedRecord    = errors.New("bounty: malformed record")
	ErrTransferFailed     = errors.New("bounty: value transfer failed")
)
