package bounty

// Authorization predicates, one per guarded transition. Each runs strictly
// after the existence and status checks so a missing record always surfaces as
// ErrNotFound before any authorization error.

// authorizeAccept rejects the null identity and the bounty's own client.
func authorizeAccept(b *Bounty, caller Address) error {
	if caller.IsZero() {
		return ErrUnauthorized
	}
	if caller == b.Client {
		return ErrSelfDealing
	}
	return nil
}

// authorizeFreelancer restricts a transition to the committed freelancer.
func authorizeFreelancer(b *Bounty, caller Address) error {
	if caller != b.Freelancer {
		return ErrUnauthorized
	}
	return nil
}

// authorizeDecision restricts a transition to the client or the designated
// verifier.
func authorizeDecision(b *Bounty, caller Address) error {
	if caller != b.Client && caller != b.Verifier {
		return ErrUnauthorized
	}
	return nil
}
