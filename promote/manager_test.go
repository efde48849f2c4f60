package promote_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/HaotaoYang/fling"
	"github.com/HaotaoYang/fling/promote"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type contact struct {
	name  string
	phone int
}

func newManager(t *testing.T) *promote.Manager[contact, int, string] {
	t.Helper()
	cfg := promote.NewManagerConfig(5*time.Millisecond, 2)
	cfg.Logger = zaptest.NewLogger(t)
	m := promote.Manage(cfg,
		func(c contact) int { return c.phone },
		func(c contact) string { return c.name },
	)
	t.Cleanup(m.Close)
	return m
}

func waitPromoted[E any, K comparable, V any](t *testing.T, m *promote.Manager[E, K, V]) {
	t.Helper()
	require.Eventually(t, func() bool {
		return m.Mode() == promote.ModePromoted
	}, 2*time.Second, 5*time.Millisecond, "manager never promoted")
}

func TestManager_StagingReads(t *testing.T) {
	m := newManager(t)
	assert.Equal(t, promote.ModeStaging, m.Mode())

	m.Put(contact{name: "mike", phone: 1})
	m.Put(contact{name: "joe", phone: 2})
	assert.Equal(t, 2, m.Len())

	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mike", v)

	_, ok, err = m.Get(99)
	require.NoError(t, err)
	assert.False(t, ok)

	v, err = m.GetDefault(99, "unknown")
	require.NoError(t, err)
	assert.Equal(t, "unknown", v)
}

func TestManager_PromotesAfterQuietPeriod(t *testing.T) {
	m := newManager(t)
	m.Put(contact{name: "mike", phone: 1})
	m.Put(contact{name: "joe", phone: 2})

	waitPromoted(t, m)

	// Reads now come from compiled code, under the managed identifier.
	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mike", v)

	v, ok, err = fling.Lookup[int, string](m.TableID(), 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "joe", v)
}

func TestManager_RepromotesAfterWrite(t *testing.T) {
	m := newManager(t)
	m.Put(contact{name: "mike", phone: 1})
	waitPromoted(t, m)

	m.Put(contact{name: "robert", phone: 3})
	require.Eventually(t, func() bool {
		_, ok, err := m.Get(3)
		return err == nil && ok
	}, 2*time.Second, 5*time.Millisecond, "new entry never reached the compiled table")

	// The earlier entry survives supersession.
	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mike", v)
}

func TestManager_PutReplacesStagedKey(t *testing.T) {
	m := newManager(t)
	m.Put(contact{name: "mike", phone: 1})
	m.Put(contact{name: "michael", phone: 1})
	assert.Equal(t, 1, m.Len())

	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "michael", v)
}

func TestManager_Delete(t *testing.T) {
	m := newManager(t)
	m.Put(contact{name: "mike", phone: 1})

	assert.True(t, m.Delete(1))
	assert.False(t, m.Delete(1))
	assert.Equal(t, 0, m.Len())

	_, ok, err := m.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_DrainRetiresTable(t *testing.T) {
	m := newManager(t)
	m.Put(contact{name: "mike", phone: 1})
	waitPromoted(t, m)

	m.Delete(1)
	require.Eventually(t, func() bool {
		return m.Mode() == promote.ModeStaging
	}, 2*time.Second, 5*time.Millisecond, "manager never fell back after drain")

	_, _, err := fling.Lookup[int, string](m.TableID(), 1)
	assert.ErrorIs(t, err, fling.ErrNoSuchTable)
}

func TestManager_ClosePurgesTable(t *testing.T) {
	cfg := promote.NewManagerConfig(5*time.Millisecond, 2)
	cfg.Logger = zaptest.NewLogger(t)
	m := promote.Manage(cfg,
		func(c contact) int { return c.phone },
		func(c contact) string { return c.name },
	)
	m.Put(contact{name: "mike", phone: 1})
	waitPromoted(t, m)
	id := m.TableID()

	m.Close()
	m.Close() // idempotent

	_, _, err := fling.Lookup[int, string](id, 1)
	assert.ErrorIs(t, err, fling.ErrNoSuchTable)
}

func TestManagerConfig_Validation(t *testing.T) {
	assert.Panics(t, func() { promote.NewManagerConfig(0, 2) })
	assert.Panics(t, func() { promote.NewManagerConfig(time.Millisecond, 0) })
	assert.Panics(t, func() {
		promote.Manage(promote.ManagerConfig{}, func(c contact) int { return c.phone }, func(c contact) string { return c.name })
	})
}
