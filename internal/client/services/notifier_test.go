package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
)

func TestNotifier_DefaultTTL(t *testing.T) {
	assert.Equal(t, 3*time.Second, NewNotifier(0).ttl)
}

func TestNotifier_AutoClears(t *testing.T) {
	n := NewNotifier(20 * time.Millisecond)
	n.Success("saved")

	got, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, models.NoticeSuccess, got.Kind)
	assert.Equal(t, "saved", got.Text)

	require.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestNotifier_NewerNoticeRestartsTimer(t *testing.T) {
	n := NewNotifier(200 * time.Millisecond)
	n.Success("first")
	time.Sleep(120 * time.Millisecond)
	n.Error("second")

	// Past the first notice's deadline, the second one is still visible.
	time.Sleep(110 * time.Millisecond)
	got, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "second", got.Text)
	assert.Equal(t, models.NoticeError, got.Kind)

	require.Eventually(t, func() bool {
		_, ok := n.Current()
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestNotifier_ListenerAndClear(t *testing.T) {
	n := NewNotifier(15 * time.Millisecond)

	var mu sync.Mutex
	var events []bool
	n.OnChange(func(_ models.Notice, visible bool) {
		mu.Lock()
		events = append(events, visible)
		mu.Unlock()
	})

	n.Success("x")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 2
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []bool{true, false}, events)
	mu.Unlock()

	long := NewNotifier(time.Hour)
	long.Error("stay")
	long.Clear()
	_, ok := long.Current()
	assert.False(t, ok)
}
