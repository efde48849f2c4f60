// Package promote stages writes in a mutable map and compiles them into a
// fling table once they go quiet.
//
// A Manager is for tables whose contents accumulate before they freeze: it
// accepts Puts into an ordered staging map, watches for a configurable quiet
// period, and then promotes the staged entries into compiled code via
// fling.CreateNamed, always under the same identifier. Reads are served from
// the staging map until the first promotion and from the compiled table
// afterwards. Writes after a promotion land back in staging and trigger a
// re-promotion after the next quiet period, superseding the previous table.
package promote

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/HaotaoYang/fling"
)

// Manager owns one table's staging map, promotion ticker, and identifier.
// All methods are safe for concurrent use.
type Manager[E any, K comparable, V any] struct {
	cfg    ManagerConfig
	logger *zap.Logger
	keyFn  func(E) K
	valFn  func(E) V
	id     fling.TableID

	mu          sync.RWMutex
	order       []K
	staging     map[K]E
	gen         uint64 // bumped on every write
	promotedGen uint64 // gen captured by the last successful promotion

	mode      atomic.Int32
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Manage starts a manager with the given cadence and extractors. It spawns
// exactly one goroutine, which ticks at cfg.TickInterval until Close.
// Both extractors must be pure and total over every entry ever Put.
func Manage[E any, K comparable, V any](
	cfg ManagerConfig,
	keyFn func(E) K,
	valueFn func(E) V,
) *Manager[E, K, V] {
	if cfg.TickInterval <= 0 {
		panic("promote: tickInterval should be greater than 0")
	}
	if cfg.QuietTicks <= 0 {
		panic("promote: quietTicks should be greater than 0")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TableID == "" {
		cfg.TableID = fling.AllocateID()
	}

	m := &Manager[E, K, V]{
		cfg:     cfg,
		logger:  cfg.Logger,
		keyFn:   keyFn,
		valFn:   valueFn,
		id:      cfg.TableID,
		staging: make(map[K]E),
		done:    make(chan struct{}),
	}
	m.wg.Add(1)
	go m.run()
	return m
}

// TableID returns the identifier promotions load under. It is valid as a
// fling lookup target only once Mode reports ModePromoted.
func (m *Manager[E, K, V]) TableID() fling.TableID { return m.id }

// Mode reports the current read path.
func (m *Manager[E, K, V]) Mode() Mode { return Mode(m.mode.Load()) }

// Put upserts entry into the staging map, keyed by keyFn(entry). A new key
// is appended in insertion order, so promotion preserves first-Put ordering;
// a repeated key replaces its entry in place. Every Put resets the quiet
// period.
func (m *Manager[E, K, V]) Put(entry E) {
	k := m.keyFn(entry)
	m.mu.Lock()
	if _, ok := m.staging[k]; !ok {
		m.order = append(m.order, k)
	}
	m.staging[k] = entry
	m.gen++
	m.mu.Unlock()
}

// Delete removes the entry staged under key and reports whether one was
// staged. It does not reach into an already promoted table; the removal
// takes effect there with the next promotion.
func (m *Manager[E, K, V]) Delete(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.staging[key]; !ok {
		return false
	}
	delete(m.staging, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.gen++
	return true
}

// Get reads key from the compiled table once promoted, and from the staging
// map before that. The missing-key and error semantics match fling.Lookup.
func (m *Manager[E, K, V]) Get(key K) (V, bool, error) {
	if m.Mode() == ModePromoted {
		return fling.Lookup[K, V](m.id, key)
	}

	m.mu.RLock()
	entry, ok := m.staging[key]
	m.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false, nil
	}
	return m.valFn(entry), true, nil
}

// GetDefault is Get with a caller-supplied default for missing keys.
func (m *Manager[E, K, V]) GetDefault(key K, def V) (V, error) {
	v, ok, err := m.Get(key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Len returns the number of staged entries.
func (m *Manager[E, K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.staging)
}

// Close stops the promotion goroutine and purges the compiled table, if any.
// It is idempotent and blocks until the goroutine has exited.
func (m *Manager[E, K, V]) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		if m.Mode() == ModePromoted {
			fling.Purge(m.id)
		}
	})
}

// run watches the staging map for quiescence and promotes when it sees
// QuietTicks consecutive ticks with pending, unchanged writes.
func (m *Manager[E, K, V]) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	var quiet int
	var lastSeen uint64
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}

		m.mu.RLock()
		gen, promoted := m.gen, m.promotedGen
		m.mu.RUnlock()

		if gen == promoted {
			quiet = 0
			continue
		}
		if gen != lastSeen {
			lastSeen = gen
			quiet = 0
			continue
		}
		quiet++
		if quiet < m.cfg.QuietTicks {
			continue
		}
		quiet = 0
		m.promoteSnapshot(gen)
	}
}

// promoteSnapshot compiles the staged entries into the managed table. The
// snapshot is taken under the read lock but compilation runs outside it, so
// writers are never blocked on the compile; writes racing the promotion bump
// gen past the recorded one and simply schedule the next promotion.
func (m *Manager[E, K, V]) promoteSnapshot(gen uint64) {
	m.mu.RLock()
	entries := make([]E, 0, len(m.order))
	for _, k := range m.order {
		entries = append(entries, m.staging[k])
	}
	m.mu.RUnlock()

	if len(entries) == 0 {
		// Everything staged was deleted again. An empty entry list cannot
		// be compiled, so retire the table and fall back to staging reads.
		m.mu.Lock()
		m.promotedGen = gen
		m.mu.Unlock()
		if m.Mode() == ModePromoted {
			m.mode.Store(int32(ModeStaging))
			fling.Purge(m.id)
			m.logger.Info("compiled table retired, staging map empty",
				zap.String("table", string(m.id)),
			)
		}
		return
	}

	if err := fling.CreateNamed(m.id, entries, m.keyFn, m.valFn); err != nil {
		m.logger.Error("promotion failed, staying on staging reads",
			zap.String("table", string(m.id)),
			zap.Error(err),
		)
		return
	}

	m.mu.Lock()
	m.promotedGen = gen
	m.mu.Unlock()
	m.mode.Store(int32(ModePromoted))

	m.logger.Info("staging map promoted to compiled table",
		zap.String("table", string(m.id)),
		zap.Int("entries", len(entries)),
	)
}
