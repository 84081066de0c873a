package matching

import "context"

type Repository interface {
	// Create stores a new request and assigns its ID from a global
	// monotonically increasing sequence.
	Create(ctx context.Context, m *MatchRequest) (*MatchRequest, error)
	Get(ctx context.Context, id uint64) (*MatchRequest, error)
	Update(ctx context.Context, m *MatchRequest) error

	// ListByRequester returns requests issued by principal, in insertion
	// order. The mutual-match detector depends on that order.
	ListByRequester(ctx context.Context, principal string) ([]*MatchRequest, error)

	// ListByParticipant returns requests where principal is requester or
	// target, in insertion order.
	ListByParticipant(ctx context.Context, principal string) ([]*MatchRequest, error)

	// CountMutual returns the number of requests carrying StatusMutual,
	// i.e. the number of logical matches on the platform.
	CountMutual(ctx context.Context) (uint64, error)
}
