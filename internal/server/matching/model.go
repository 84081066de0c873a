package matching

import (
	"time"

	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
)

// Status is the lifecycle state of a match request.
//
// Pending -> Mutual   (reciprocal request detected; terminal)
// Pending -> Rejected (explicit rejection by the target; terminal)
type Status string

const (
	StatusPending  Status = "pending"
	StatusMutual   Status = "mutual"
	StatusRejected Status = "rejected"
)

// MatchRequest records one principal asking another for a match. Requests
// are never deleted; only Status and the accept/reveal fields ever change.
//
// When A requests B and B later requests A, the detector flips the EARLIER
// record to Mutual and leaves the later one Pending forever. This mirrors
// the reference system's observable state and is deliberate.
type MatchRequest struct {
	ID               uint64
	Requester        string
	Target           string
	EncryptedScore   fhe.Handle
	EncryptedMessage []byte
	Status           Status
	CreatedAt        time.Time

	// Accept / reveal lifecycle. Acceptance is only valid on a Mutual
	// record; the reveal is only submitted after acceptance, so a reveal
	// callback can never race a rejection.
	IsAccepted  bool
	AcceptedBy  string
	IsRevealed  bool
	PublicScore uint8
}

// IsParticipant reports whether principal is either side of the request.
func (m *MatchRequest) IsParticipant(principal string) bool {
	return principal == m.Requester || principal == m.Target
}
