package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Memory implements Backend in-process using sync.Map. The default for
// single-instance deployments.
type Memory struct {
	data    sync.Map
	maxSize int
	stopCh  chan struct{}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates an in-memory cache. A background loop evicts expired
// entries and enforces maxSize every cleanupInterval.
func NewMemory(maxSize int, cleanupInterval time.Duration) *Memory {
	m := &Memory{
		maxSize: maxSize,
		stopCh:  make(chan struct{}),
	}
	go m.cleanupLoop(cleanupInterval)
	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, ok := m.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	entry := val.(*memoryEntry)
	if time.Now().After(entry.expiresAt) {
		m.data.Delete(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data.Store(key, &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

func (m *Memory) Close() error {
	close(m.stopCh)
	return nil
}

func (m *Memory) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *Memory) cleanup() {
	now := time.Now()
	var entries []struct {
		key       string
		expiresAt time.Time
	}

	m.data.Range(func(key, value interface{}) bool {
		k := key.(string)
		entry := value.(*memoryEntry)
		if now.After(entry.expiresAt) {
			m.data.Delete(k)
		} else {
			entries = append(entries, struct {
				key       string
				expiresAt time.Time
			}{k, entry.expiresAt})
		}
		return true
	})

	// Evict soonest-expiring entries beyond maxSize.
	if len(entries) > m.maxSize {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].expiresAt.Before(entries[j].expiresAt)
		})
		for i := 0; i < len(entries)-m.maxSize; i++ {
			m.data.Delete(entries[i].key)
		}
	}
}
