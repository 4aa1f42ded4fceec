package qos

import (
	"context"
	"sync/atomic"
)

// Limiter 固定上限的并发令牌桶
// 令牌放在带缓冲的 channel 中，Acquire 阻塞直到有令牌或 context 取消，不做轮询
// active 记录当前借出的令牌数，供调度器观测
type Limiter struct {
	sem    chan struct{} // 信号量通道
	limit  int
	active int64
	peak   int64
}

// NewLimiter 创建限流器
// limit < 1 时按 1 处理
func NewLimiter(limit int) *Limiter {
	if limit < 1 {
		limit = 1
	}

	l := &Limiter{
		sem:   make(chan struct{}, limit),
		limit: limit,
	}

	// 填充初始令牌
	for i := 0; i < limit; i++ {
		l.sem <- struct{}{}
	}

	return l
}

// Acquire 获取一个并发令牌
func (l *Limiter) Acquire(ctx context.Context) error {
	// 已取消时不再发放令牌，即使还有空闲
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-l.sem:
		n := atomic.AddInt64(&l.active, 1)
		l.recordPeak(n)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release 归还一个并发令牌
func (l *Limiter) Release() {
	atomic.AddInt64(&l.active, -1)

	select {
	case l.sem <- struct{}{}:
	default:
		// Release 次数超过 Acquire，忽略多余的令牌
	}
}

// recordPeak 更新历史峰值
func (l *Limiter) recordPeak(n int64) {
	for {
		old := atomic.LoadInt64(&l.peak)
		if n <= old || atomic.CompareAndSwapInt64(&l.peak, old, n) {
			return
		}
	}
}

// Limit 返回并发上限
func (l *Limiter) Limit() int {
	return l.limit
}

// Active 返回当前借出的令牌数
func (l *Limiter) Active() int {
	return int(atomic.LoadInt64(&l.active))
}

// Peak 返回运行期间同时借出令牌数的峰值
func (l *Limiter) Peak() int {
	return int(atomic.LoadInt64(&l.peak))
}
