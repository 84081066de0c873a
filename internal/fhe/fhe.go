// Package fhe defines the engine-side view of the homomorphic-encryption
// co-processor: opaque ciphertext handles, the operation set the engine
// relies on, and the asynchronous reveal channel.
//
// The engine never inspects ciphertexts. It only passes handles between
// operations, grants decrypt capabilities, and submits handles for
// asynchronous reveal. Every handle referenced by an operation must have
// been granted to the engine principal first; ungranted operands fail with
// common.ErrAccessDenied.
package fhe

import "context"

// Handle is an opaque reference to a ciphertext held by the co-processor.
type Handle string

// Principal identifies a party that may be granted decrypt capability over
// a handle.
type Principal string

// EnginePrincipal is the grantee representing the engine itself. Handles
// must carry this grant before any homomorphic operation may reference them.
const EnginePrincipal Principal = "engine"

// AccessList is the shared grant table consulted before every
// decrypt-capable operation. Grants are append-only; there is no revocation.
type AccessList interface {
	Grant(h Handle, p Principal)
	Allowed(h Handle, p Principal) bool
}

// RevealResult is the co-processor's asynchronous answer to a reveal
// request. Proof authenticates (CorrelationID, Value); results with a bad
// proof must be discarded.
type RevealResult struct {
	CorrelationID uint64
	Value         uint8
	Proof         []byte
}

// Coprocessor is the homomorphic operation set consumed from the external
// co-processor. All arithmetic is over 8-bit unsigned integers with
// wrapping semantics; comparison results are encrypted booleans encoded as
// 0/1. Callers must not rely on overflow behavior beyond it being defined.
type Coprocessor interface {
	// Encrypt produces a fresh ciphertext for the given plaintext. The
	// returned handle carries no grants; call GrantSelf before using it.
	Encrypt(ctx context.Context, value uint8) (Handle, error)

	Add(ctx context.Context, a, b Handle) (Handle, error)
	Sub(ctx context.Context, a, b Handle) (Handle, error)

	// Comparisons yield encrypted booleans (0 or 1).
	Eq(ctx context.Context, a, b Handle) (Handle, error)
	Le(ctx context.Context, a, b Handle) (Handle, error)
	Lt(ctx context.Context, a, b Handle) (Handle, error)
	Gt(ctx context.Context, a, b Handle) (Handle, error)

	// Select returns a when cond is true, b otherwise, without branching on
	// plaintext anywhere.
	Select(ctx context.Context, cond, a, b Handle) (Handle, error)

	// GrantSelf makes h usable as an operand in later operations.
	GrantSelf(ctx context.Context, h Handle) error

	// Grant allows p to request decryption of h.
	Grant(ctx context.Context, h Handle, p Principal) error

	// RequestReveal submits h for asynchronous threshold decryption. The
	// plaintext arrives later as a RevealResult tagged with correlationID,
	// or never; absence of a result is not an error.
	RequestReveal(ctx context.Context, h Handle, correlationID uint64) error

	// VerifyRevealProof reports whether proof authenticates the pair
	// (correlationID, value).
	VerifyRevealProof(correlationID uint64, value uint8, proof []byte) bool
}
