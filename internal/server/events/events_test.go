package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPublisher_Order(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()

	p.Publish(ctx, Event{Name: UserRegistered, At: time.Now()})
	p.Publish(ctx, Event{Name: MatchRequested, At: time.Now()})
	p.Publish(ctx, Event{Name: MatchRequested, At: time.Now()})

	all := p.Events()
	require.Len(t, all, 3)
	assert.Equal(t, UserRegistered, all[0].Name)

	assert.Len(t, p.Named(MatchRequested), 2)
	assert.Empty(t, p.Named(MutualMatchFound))
}

func TestMemoryPublisher_EventsReturnsCopy(t *testing.T) {
	p := NewMemoryPublisher()
	p.Publish(context.Background(), Event{Name: UserRegistered})

	got := p.Events()
	got[0].Name = "mutated"

	assert.Equal(t, UserRegistered, p.Events()[0].Name)
}
