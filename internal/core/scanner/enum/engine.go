/**
 * 枚举引擎
 * @date: 2026.02.10
 * @description: 在一个已认证连接上遍历 库 -> 表 (-> 列)，按关键字策略采样命中的表并写入报告。
 */

package enum

import (
	"context"

	"enumdb/internal/config"
	"enumdb/internal/core/dbdriver"
	"enumdb/internal/core/model"
	"enumdb/internal/core/reporter"
	"enumdb/internal/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Notifier 接收枚举过程中的控制台事件
type Notifier interface {
	// Match 表命中且采样非空
	Match(f *model.Finding)
	// Empty 表命中但采样为空 (仅 verbose 模式下调用)
	Empty(target model.Target, database, table string)
}

// Options 引擎参数
type Options struct {
	SampleLimit  int  // 每张表最多采样行数，上限 100
	ColumnSearch bool // 按列名匹配，默认按表名
	Verbose      bool // 输出空数据集提示
}

// Engine 枚举引擎
// 无状态，可被多个目标的 goroutine 共享
type Engine struct {
	driver   dbdriver.Driver
	policy   *KeywordPolicy
	opts     Options
	notifier Notifier
}

// NewEngine 创建枚举引擎
func NewEngine(driver dbdriver.Driver, policy *KeywordPolicy, opts Options, notifier Notifier) *Engine {
	if opts.SampleLimit <= 0 || opts.SampleLimit > config.DefaultSampleLimit {
		opts.SampleLimit = config.DefaultSampleLimit
	}
	return &Engine{
		driver:   driver,
		policy:   policy,
		opts:     opts,
		notifier: notifier,
	}
}

// Enumerate 遍历连接可见的全部 schema，返回产生的 Finding
//
// 黑名单只跳过命中的那个库或表，其余继续枚举。
// 每个 Finding 立即写入 sink；写入失败只记录日志，不中断枚举。
func (e *Engine) Enumerate(ctx context.Context, conn *dbdriver.Conn, sink reporter.Sink) []*model.Finding {
	var findings []*model.Finding

	for _, database := range e.driver.ListDatabases(ctx, conn) {
		if ctx.Err() != nil {
			return findings
		}
		if e.policy.DatabaseBlacklisted(database) {
			logger.Debugf("[Enum] skip blacklisted database %s on %s", database, conn.Target.Host)
			continue
		}

		for _, table := range e.driver.ListTables(ctx, conn, database) {
			if ctx.Err() != nil {
				return findings
			}
			if e.policy.TableBlacklisted(table) {
				logger.Debugf("[Enum] skip blacklisted table %s.%s on %s", database, table, conn.Target.Host)
				continue
			}

			f, ok := e.ScanTable(ctx, conn, database, table)
			if !ok {
				continue
			}
			findings = append(findings, f)

			if e.notifier != nil {
				e.notifier.Match(f)
			}
			if sink != nil {
				if err := sink.Write(f); err != nil {
					logger.WithFields(logrus.Fields{
						"type":     logger.ReportLog,
						"target":   conn.Target.Host,
						"database": database,
						"table":    table,
						"error":    err.Error(),
					}).Warn("Failed to write finding")
				}
			}
		}
	}

	return findings
}

// ScanTable 检查单张表，先命中者优先，一张表最多产生一个 Finding
// 命中但采样为空时不再尝试其他关键字
func (e *Engine) ScanTable(ctx context.Context, conn *dbdriver.Conn, database, table string) (*model.Finding, bool) {
	var (
		kind    model.MatchKind
		match   string
		columns []string
	)

	if e.opts.ColumnSearch {
		columns = e.driver.ListColumns(ctx, conn, database, table)
		col, ok := e.firstMatchingColumn(columns)
		if !ok {
			return nil, false
		}
		kind, match = model.MatchColumn, col
	} else {
		keyword, ok := e.policy.MatchTable(table)
		if !ok {
			return nil, false
		}
		kind, match = model.MatchTable, keyword
	}

	rows := e.driver.SampleRows(ctx, conn, database, table, e.opts.SampleLimit)
	if len(rows) > e.opts.SampleLimit {
		rows = rows[:e.opts.SampleLimit]
	}
	if len(rows) == 0 {
		if e.opts.Verbose && e.notifier != nil {
			e.notifier.Empty(conn.Target, database, table)
		}
		return nil, false
	}

	if columns == nil {
		columns = e.driver.ListColumns(ctx, conn, database, table)
	}

	return &model.Finding{
		Host:     conn.Target.Host,
		DBType:   conn.Target.DBType,
		Database: database,
		Table:    table,
		Kind:     kind,
		Match:    match,
		Columns:  columns,
		Rows:     rows,
	}, true
}

// firstMatchingColumn 按列顺序、关键字顺序找到第一个命中的列
func (e *Engine) firstMatchingColumn(columns []string) (string, bool) {
	for _, col := range columns {
		if _, ok := e.policy.MatchColumn(col); ok {
			return col, true
		}
	}
	return "", false
}
