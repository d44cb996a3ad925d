package claim

// Status is the lifecycle state of a claim.
type Status string

const (
	StatusPending       Status = "pending"
	StatusEligible      Status = "eligible"
	StatusApproved      Status = "approved"
	StatusPendingReview Status = "pending_review"
	StatusBlocked       Status = "blocked"
	StatusRejected      Status = "rejected"
	StatusPaid          Status = "paid"
)

// Statuses lists every claim status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusEligible,
	StatusApproved,
	StatusPendingReview,
	StatusBlocked,
	StatusRejected,
	StatusPaid,
}

// transitions is the legal-successor table. rejected and paid are terminal;
// nothing ever transitions back to pending.
var transitions = map[Status][]Status{
	StatusPending:       {StatusEligible, StatusRejected},
	StatusEligible:      {StatusApproved, StatusPendingReview, StatusBlocked, StatusRejected},
	StatusApproved:      {StatusPaid, StatusRejected},
	StatusPendingReview: {StatusApproved, StatusBlocked, StatusRejected},
	StatusBlocked:       {StatusPendingReview, StatusRejected},
	StatusRejected:      {},
	StatusPaid:          {},
}

// Known reports whether s is one of the defined claim statuses.
func (s Status) Known() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s has no legal successors.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether moving a claim from one status to another is
// legal. Unknown statuses on either side are never legal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Successors returns a copy of the legal next statuses for s.
func Successors(s Status) []Status {
	next := transitions[s]
	if len(next) == 0 {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}
