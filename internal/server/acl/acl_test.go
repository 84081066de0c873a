package acl

import (
	"testing"

	"github.com/LondonVandervort/PrivacyDating/internal/fhe"
	"github.com/stretchr/testify/assert"
)

func TestList_GrantAndAllowed(t *testing.T) {
	l := NewList()

	h := fhe.Handle("h1")
	assert.False(t, l.Allowed(h, fhe.EnginePrincipal))

	l.Grant(h, fhe.EnginePrincipal)
	assert.True(t, l.Allowed(h, fhe.EnginePrincipal))
	assert.False(t, l.Allowed(h, fhe.Principal("alice")))
}

func TestList_MultipleGrantees(t *testing.T) {
	l := NewList()

	h := fhe.Handle("score")
	l.Grant(h, fhe.EnginePrincipal)
	l.Grant(h, fhe.Principal("alice"))
	l.Grant(h, fhe.Principal("bob"))
	l.Grant(h, fhe.Principal("bob")) // no-op

	assert.ElementsMatch(t,
		[]fhe.Principal{fhe.EnginePrincipal, "alice", "bob"},
		l.Grantees(h))
}

func TestList_UnknownHandle(t *testing.T) {
	l := NewList()
	assert.Empty(t, l.Grantees(fhe.Handle("missing")))
}
