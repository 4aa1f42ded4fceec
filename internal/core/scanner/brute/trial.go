/**
 * 凭据尝试
 * @date: 2026.02.10
 * @description: 单个目标上的完整工作单元。依次尝试每组凭据，成功后枚举 schema，每次尝试结束都关闭连接。
 */

package brute

import (
	"context"
	"errors"
	"time"

	"enumdb/internal/core/dbdriver"
	"enumdb/internal/core/model"
	"enumdb/internal/core/reporter"
	"enumdb/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Enumerator 在认证连接上枚举 schema
type Enumerator interface {
	Enumerate(ctx context.Context, conn *dbdriver.Conn, sink reporter.Sink) []*model.Finding
}

// Notifier 接收凭据尝试的控制台事件
type Notifier interface {
	LoginSuccess(target model.Target, cred model.Credential)
	LoginFailure(target model.Target, cred model.Credential, err error)
	Closing(path string)
}

// Options 凭据尝试参数
type Options struct {
	CredsOnly bool            // 只验证凭据，不枚举
	Report    reporter.Format // 报告格式，空表示不输出
	OutputDir string          // 报告目录
}

// Trial 凭据尝试
// 配置只读，可被多个目标的 goroutine 共享
type Trial struct {
	driver     dbdriver.Driver
	enumerator Enumerator
	creds      []model.Credential
	opts       Options
	notifier   Notifier
}

// NewTrial 创建凭据尝试
func NewTrial(driver dbdriver.Driver, enumerator Enumerator, creds []model.Credential, opts Options, notifier Notifier) *Trial {
	return &Trial{
		driver:     driver,
		enumerator: enumerator,
		creds:      creds,
		opts:       opts,
		notifier:   notifier,
	}
}

// Run 在目标上执行全部凭据尝试
// 找到有效凭据后不停止，继续尝试剩余组合。context 取消时在两次尝试之间返回。
func (t *Trial) Run(ctx context.Context, target model.Target) model.TrialResult {
	startTime := time.Now()
	result := model.TrialResult{Target: target}

	sink := t.prepareSink(target)
	defer sink.Close()

	for _, cred := range t.creds {
		if ctx.Err() != nil {
			break
		}

		result.Attempts++
		conn, err := t.driver.Connect(ctx, target, cred)
		if err != nil {
			logger.LogAuthAttempt(target.Addr(), cred.Username, false, err)
			if t.notifier != nil {
				t.notifier.LoginFailure(target, cred, driverCause(err))
			}
			continue
		}

		logger.LogAuthAttempt(target.Addr(), cred.Username, true, nil)
		if t.notifier != nil {
			t.notifier.LoginSuccess(target, cred)
		}
		login := model.Login{Credential: cred}
		if !t.opts.CredsOnly && t.enumerator != nil {
			login.Findings = len(t.enumerator.Enumerate(ctx, conn, sink))
		}
		result.Valid = append(result.Valid, login)
		result.Findings += login.Findings

		if err := conn.Close(); err != nil {
			logger.Debugf("[Trial] close connection to %s failed: %v", target.Addr(), err)
		}
	}

	if reporter.Exists(sink) && t.notifier != nil {
		t.notifier.Closing(sink.Path())
	}

	status := "success"
	if ctx.Err() != nil {
		status = "canceled"
	} else if len(result.Valid) == 0 {
		status = "failed"
	}
	logger.LogScanOperation(target.Addr(), string(target.DBType), status, time.Since(startTime), map[string]interface{}{
		"attempts": result.Attempts,
		"valid":    len(result.Valid),
		"findings": result.Findings,
	})

	return result
}

// prepareSink 每个目标准备一次报告，准备失败时不输出报告但继续爆破
func (t *Trial) prepareSink(target model.Target) reporter.Sink {
	sink, err := reporter.New(t.opts.Report, t.opts.OutputDir, target)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"type":   logger.ReportLog,
			"target": target.Host,
			"error":  err.Error(),
		}).Warn("Failed to prepare report, continuing without it")
		return reporter.NopSink{}
	}
	return sink
}

// driverCause 返回底层驱动错误，控制台只展示驱动给出的原因
func driverCause(err error) error {
	var authErr *dbdriver.AuthError
	if errors.As(err, &authErr) && authErr.Err != nil {
		return authErr.Err
	}
	return err
}
