package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"astro-distribusi/backend/pkg/metrics"
	"astro-distribusi/backend/pkg/redis"
)

// ScopeLocker 跨实例的作用域互斥锁
type ScopeLocker interface {
	AcquireLock(ctx context.Context, scope string, ttl time.Duration) (func(), error)
}

// OrdinalAllocator 在作用域内分配 max(idx)+1
type OrdinalAllocator interface {
	// Allocate 在作用域锁内读取当前最大 idx 并调用 insert(max+1)
	// 作用域为空时 current 应返回 0，首个序号为 1
	Allocate(ctx context.Context, scope string, current func(context.Context) (int, error), insert func(idx int) error) (int, error)
}

const (
	lockAttempts = 3
	lockBackoff  = 50 * time.Millisecond
)

type ordinalAllocator struct {
	locker  ScopeLocker
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu     sync.Mutex
	scopes map[string]*scopeLock
}

// scopeLock 进程内作用域互斥锁，refs 归零时从 scopes 中移除
type scopeLock struct {
	mu   sync.Mutex
	refs int
}

// NewOrdinalAllocator 创建 OrdinalAllocator
// locker 为 nil 时只做进程内串行
func NewOrdinalAllocator(locker ScopeLocker, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) OrdinalAllocator {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &ordinalAllocator{
		locker:  locker,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
		scopes:  make(map[string]*scopeLock),
	}
}

func (a *ordinalAllocator) lockScope(scope string) func() {
	a.mu.Lock()
	l, ok := a.scopes[scope]
	if !ok {
		l = &scopeLock{}
		a.scopes[scope] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.scopes, scope)
		}
		a.mu.Unlock()
	}
}

func (a *ordinalAllocator) Allocate(ctx context.Context, scope string, current func(context.Context) (int, error), insert func(idx int) error) (int, error) {
	unlock := a.lockScope(scope)
	defer unlock()

	if release := a.acquireRemote(ctx, scope); release != nil {
		defer release()
	}

	maxIdx, err := current(ctx)
	if err != nil {
		return 0, err
	}
	idx := maxIdx + 1
	if err := insert(idx); err != nil {
		return 0, err
	}
	return idx, nil
}

// acquireRemote 获取不到锁时降级为无锁分配，只记录指标
// 并发写入可能产生相同 idx，排序时以 created_at、ID 作为次序
func (a *ordinalAllocator) acquireRemote(ctx context.Context, scope string) func() {
	if a.locker == nil {
		return nil
	}

	var lastErr error
retry:
	for attempt := 1; attempt <= lockAttempts; attempt++ {
		release, err := a.locker.AcquireLock(ctx, scope, a.ttl)
		if err == nil {
			return release
		}
		lastErr = err
		if !errors.Is(err, redis.ErrLockNotAcquired) || attempt == lockAttempts {
			break
		}
		select {
		case <-ctx.Done():
			lastErr = ctx.Err()
			break retry
		case <-time.After(lockBackoff):
		}
	}

	if a.metrics != nil {
		a.metrics.OrdinalLockMiss.Inc()
	}
	a.logger.Warn("序号作用域锁获取失败，降级为无锁分配", zap.String("scope", scope), zap.Error(lastErr))
	return nil
}
