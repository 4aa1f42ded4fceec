/**
 * 目标调度器
 * @date: 2026.02.10
 * @description: 每个目标一个 goroutine，由固定上限的令牌桶限制同时运行的目标数。
 */

package runner

import (
	"context"
	"sort"
	"sync"

	"enumdb/internal/core/lib/network/qos"
	"enumdb/internal/core/model"
	"enumdb/internal/pkg/logger"
)

// Unit 单个目标上的工作单元
type Unit func(ctx context.Context, target model.Target) model.TrialResult

// Scheduler 目标调度器
type Scheduler struct {
	limiter *qos.Limiter
}

// NewScheduler 创建调度器，maxThreads < 1 时按 1 处理
func NewScheduler(maxThreads int) *Scheduler {
	return &Scheduler{
		limiter: qos.NewLimiter(maxThreads),
	}
}

// Active 当前正在运行的工作单元数
func (s *Scheduler) Active() int {
	return s.limiter.Active()
}

// Peak 运行期间同时运行的工作单元数峰值
func (s *Scheduler) Peak() int {
	return s.limiter.Peak()
}

type indexedResult struct {
	index  int
	result model.TrialResult
}

// Run 为每个目标启动一个工作单元，同时运行的数量不超过上限，全部完成后返回
//
// 结果按目标输入顺序排列。context 取消时立即返回 context 错误与已完成的结果，
// 不等待仍在运行的工作单元。
func (s *Scheduler) Run(ctx context.Context, targets []model.Target, unit Unit) (model.TrialResults, error) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed []indexedResult
	)

	collect := func() model.TrialResults {
		mu.Lock()
		defer mu.Unlock()

		sort.Slice(completed, func(i, j int) bool { return completed[i].index < completed[j].index })
		results := make(model.TrialResults, 0, len(completed))
		for _, r := range completed {
			results = append(results, r.result)
		}
		return results
	}

	for i, target := range targets {
		if err := s.limiter.Acquire(ctx); err != nil {
			logger.Debugf("[Scheduler] canceled before launching %s", target.Addr())
			return collect(), err
		}

		wg.Add(1)
		go func(i int, target model.Target) {
			defer wg.Done()
			defer s.limiter.Release()

			res := unit(ctx, target)

			mu.Lock()
			completed = append(completed, indexedResult{index: i, result: res})
			mu.Unlock()
		}(i, target)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return collect(), nil
	case <-ctx.Done():
		return collect(), ctx.Err()
	}
}
