package sheets

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/valkey-io/valkey-go"
)

// Cache stores validated response bodies per record type.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a time-bounded memo table guarded by a single lock.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
}

func (m *MemoryCache) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// ValkeyCache shares cached bodies between several server processes.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache connects to a valkey server at addr.
func NewValkeyCache(addr string) (*ValkeyCache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, err
	}
	return &ValkeyCache{client: client, prefix: "sheets:"}, nil
}

func (v *ValkeyCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := v.client.Do(ctx, v.client.B().Get().Key(v.prefix+key).Build()).AsBytes()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			log.Warn().Err(err).Str("key", key).Msg("valkey cache read failed")
		}
		return nil, false
	}
	return b, true
}

func (v *ValkeyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	seconds := int64(ttl / time.Second)
	if seconds <= 0 {
		return
	}
	cmd := v.client.B().Setex().Key(v.prefix + key).Seconds(seconds).Value(valkey.BinaryString(value)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("valkey cache write failed")
	}
}

func (v *ValkeyCache) Delete(ctx context.Context, key string) {
	if err := v.client.Do(ctx, v.client.B().Del().Key(v.prefix+key).Build()).Error(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("valkey cache delete failed")
	}
}

// Close releases the valkey connection.
func (v *ValkeyCache) Close() {
	v.client.Close()
}
