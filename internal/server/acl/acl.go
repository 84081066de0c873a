// Package acl implements the access-grant table shared by the engine and
// the ciphertext co-processor: which principals may request decryption of
// which handles. Grants are append-only; the base design has no revocation.
package acl

import (
	"sync"

	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
)

// List is the in-memory grant table. It mirrors the grant state the
// co-processor enforces, so every component consults it before any
// decrypt-capable operation.
type List struct {
	mu     sync.RWMutex
	grants map[fhe.Handle]map[fhe.Principal]struct{}
}

func NewList() *List {
	return &List{grants: make(map[fhe.Handle]map[fhe.Principal]struct{})}
}

// Grant records that p may request decryption of h. Granting twice is a
// no-op.
func (l *List) Grant(h fhe.Handle, p fhe.Principal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.grants[h] == nil {
		l.grants[h] = make(map[fhe.Principal]struct{})
	}
	l.grants[h][p] = struct{}{}
}

// Allowed reports whether p holds a grant for h.
func (l *List) Allowed(h fhe.Handle, p fhe.Principal) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.grants[h][p]
	return ok
}

// Grantees returns the principals granted on h, in unspecified order.
func (l *List) Grantees(h fhe.Handle) []fhe.Principal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]fhe.Principal, 0, len(l.grants[h]))
	for p := range l.grants[h] {
		out = append(out, p)
	}
	return out
}
