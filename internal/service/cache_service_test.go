package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

type stubCacheRepo struct {
	mu     sync.Mutex
	store  map[string][]byte
	ttls   map[string]time.Duration
	getErr   error
	delErr   error
	patterns []string
	pinged   bool
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
		s.ttls = make(map[string]time.Duration)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	s.ttls[key] = ttl
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, pattern)
	if s.delErr != nil {
		return s.delErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.store {
		if strings.HasPrefix(key, prefix) {
			delete(s.store, key)
		}
	}
	return nil
}

func (s *stubCacheRepo) Ping(context.Context) error {
	s.pinged = true
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &stubCacheRepo{}
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest map[string]int
	hit, err := svc.Get(ctx, "plan:a", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "plan:a", map[string]int{"x": 1}, 0))
	assert.Equal(t, time.Minute, repo.ttls["plan:a"])

	hit, err = svc.Get(ctx, "plan:a", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, dest["x"])

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio), 1e-9)

	require.NoError(t, svc.Invalidate(ctx, "plan:*"))
	hit, err = svc.Get(ctx, "plan:a", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", 1, 0))
	assert.Nil(t, repo.store)
	require.NoError(t, svc.Ready(ctx))
	assert.False(t, repo.pinged)

	var nilSvc *CacheService
	hit, err := nilSvc.Get(ctx, "k", new(int))
	assert.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	repo := &stubCacheRepo{getErr: errors.New("connection refused")}
	svc := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	hit, err := svc.Get(context.Background(), "k", new(int))
	assert.Error(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Ready(context.Background()))
	assert.True(t, repo.pinged)
}
