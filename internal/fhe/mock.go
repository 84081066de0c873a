package fhe

import (
	"context"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/LondonVandervort/PrivacyDating/internal/common"
	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
)

// MockCoprocessor is an in-process stand-in for the external co-processor.
// Plaintexts are sealed with ChaCha20-Poly1305 under a local key, so the
// engine side still only ever sees opaque handles. Operations unseal the
// operands, compute mod 256, and seal the result under a fresh handle.
//
// Reveals are delivered asynchronously on Results(); proofs are HMAC-SHA256
// over correlationID||value.
type MockCoprocessor struct {
	mu      sync.Mutex
	aead    cipher.AEAD
	hmacKey []byte
	acl     AccessList
	store   map[Handle][]byte // nonce || sealed plaintext
	results chan RevealResult
}

// NewMockCoprocessor builds a mock bound to the shared access list. The key
// must be chacha20poly1305.KeySize bytes; it seals ciphertexts and keys the
// reveal proofs.
func NewMockCoprocessor(key []byte, acl AccessList) (*MockCoprocessor, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("mock coprocessor init: %w", err)
	}

	mac := sha256.Sum256(append([]byte("reveal-proof:"), key...))

	return &MockCoprocessor{
		aead:    aead,
		hmacKey: mac[:],
		acl:     acl,
		store:   make(map[Handle][]byte),
		results: make(chan RevealResult, 64),
	}, nil
}

// Results exposes the asynchronous reveal channel. The application wires it
// into the engine's reveal callback.
func (m *MockCoprocessor) Results() <-chan RevealResult {
	return m.results
}

func (m *MockCoprocessor) seal(value uint8) (Handle, error) {
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := m.aead.Seal(nonce, nonce, []byte{value}, nil)
	h := Handle(uuid.NewString())
	m.store[h] = sealed
	return h, nil
}

// load unseals h after checking the engine grant.
func (m *MockCoprocessor) load(h Handle) (uint8, error) {
	if !m.acl.Allowed(h, EnginePrincipal) {
		return 0, common.ErrAccessDenied
	}

	sealed, ok := m.store[h]
	if !ok {
		return 0, common.ErrAccessDenied
	}

	nonce := sealed[:chacha20poly1305.NonceSize]
	plain, err := m.aead.Open(nil, nonce, sealed[chacha20poly1305.NonceSize:], nil)
	if err != nil {
		return 0, fmt.Errorf("unseal: %w", err)
	}
	return plain[0], nil
}

func (m *MockCoprocessor) Encrypt(ctx context.Context, value uint8) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seal(value)
}

// binOp unseals both operands, applies f, and seals the result. The result
// handle carries no grants until GrantSelf is called.
func (m *MockCoprocessor) binOp(a, b Handle, f func(x, y uint8) uint8) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	x, err := m.load(a)
	if err != nil {
		return "", err
	}
	y, err := m.load(b)
	if err != nil {
		return "", err
	}
	return m.seal(f(x, y))
}

func boolBit(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func (m *MockCoprocessor) Add(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binOp(a, b, func(x, y uint8) uint8 { return x + y })
}

func (m *MockCoprocessor) Sub(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binOp(a, b, func(x, y uint8) uint8 { return x - y })
}

func (m *MockCoprocessor) Eq(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binOp(a, b, func(x, y uint8) uint8 { return boolBit(x == y) })
}

func (m *MockCoprocessor) Le(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binOp(a, b, func(x, y uint8) uint8 { return boolBit(x <= y) })
}

func (m *MockCoprocessor) Lt(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binOp(a, b, func(x, y uint8) uint8 { return boolBit(x < y) })
}

func (m *MockCoprocessor) Gt(ctx context.Context, a, b Handle) (Handle, error) {
	return m.binOp(a, b, func(x, y uint8) uint8 { return boolBit(x > y) })
}

func (m *MockCoprocessor) Select(ctx context.Context, cond, a, b Handle) (Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.load(cond)
	if err != nil {
		return "", err
	}
	x, err := m.load(a)
	if err != nil {
		return "", err
	}
	y, err := m.load(b)
	if err != nil {
		return "", err
	}

	if c != 0 {
		return m.seal(x)
	}
	return m.seal(y)
}

func (m *MockCoprocessor) GrantSelf(ctx context.Context, h Handle) error {
	return m.Grant(ctx, h, EnginePrincipal)
}

func (m *MockCoprocessor) Grant(ctx context.Context, h Handle, p Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store[h]; !ok {
		return common.ErrAccessDenied
	}
	m.acl.Grant(h, p)
	return nil
}

func (m *MockCoprocessor) proof(correlationID uint64, value uint8) []byte {
	mac := hmac.New(sha256.New, m.hmacKey)

	var buf [9]byte
	binary.BigEndian.PutUint64(buf[:8], correlationID)
	buf[8] = value
	mac.Write(buf[:])

	return mac.Sum(nil)
}

func (m *MockCoprocessor) RequestReveal(ctx context.Context, h Handle, correlationID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, err := m.load(h)
	if err != nil {
		return err
	}

	// Delivery is best-effort and asynchronous; a full buffer models a
	// callback that never arrives.
	select {
	case m.results <- RevealResult{CorrelationID: correlationID, Value: v, Proof: m.proof(correlationID, v)}:
	default:
	}
	return nil
}

func (m *MockCoprocessor) VerifyRevealProof(correlationID uint64, value uint8, proof []byte) bool {
	return hmac.Equal(proof, m.proof(correlationID, value))
}
