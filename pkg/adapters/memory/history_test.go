package memory_test

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Location = (*memory.History)(nil)

func TestHistory_PushReplaceTruncate(t *testing.T) {
	h := memory.NewHistory("")
	assert.Equal(t, "/", h.Path())

	require.NoError(t, h.PushState(nil, "A", "/a"))
	require.NoError(t, h.PushState(nil, "B", "/b"))
	assert.Equal(t, 3, h.Len())

	require.True(t, h.Back())
	require.NoError(t, h.PushState(nil, "C", "/c"))
	assert.Equal(t, 3, h.Len(), "forward entries are dropped")
	assert.Equal(t, "/c", h.Path())

	require.NoError(t, h.ReplaceState(nil, "D", "/d"))
	assert.Equal(t, "/d", h.Path())
	assert.Equal(t, "D", h.Title())
	assert.Equal(t, 3, h.Len())
}

func TestHistory_PopstateEvents(t *testing.T) {
	h := memory.NewHistory("/a")
	require.NoError(t, h.PushState(map[string]any{"k": "v"}, "", "/b"))

	var events []domain.LocationChangeEvent
	unsub := h.Subscribe(func(e domain.LocationChangeEvent) { events = append(events, e) })

	assert.True(t, h.Back())
	assert.False(t, h.Back())
	assert.True(t, h.Forward())
	assert.False(t, h.Go(5))

	require.Len(t, events, 2)
	assert.Equal(t, domain.LocationChangeEvent{URL: "/a", Trigger: domain.TriggerPopstate}, events[0])
	assert.Equal(t, "/b", events[1].URL)
	assert.Equal(t, "v", events[1].State["k"])

	h.Visit("/c")
	require.Len(t, events, 3)
	assert.Equal(t, domain.TriggerHashchange, events[2].Trigger)

	unsub()
	h.Back()
	assert.Len(t, events, 3)
}

func TestHistory_SnapshotRestore(t *testing.T) {
	h := memory.NewHistory("/a")
	require.NoError(t, h.PushState(nil, "B", "/b"))
	require.NoError(t, h.PushState(nil, "C", "/c"))
	h.Back()

	st := h.Snapshot("s1")
	assert.Equal(t, "s1", st.SessionID)
	assert.Equal(t, 1, st.Index)
	assert.Equal(t, "/b", st.URL())

	restored := memory.FromState(st)
	assert.Equal(t, "/b", restored.Path())
	assert.True(t, restored.Forward())
	assert.Equal(t, "/c", restored.Path())

	restored.Restore(nil)
	assert.Equal(t, "/", restored.Path())
}
