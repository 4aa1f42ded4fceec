package dbdriver

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"enumdb/internal/core/model"
	"enumdb/internal/pkg/logger"
)

// sqlBase 基于 database/sql 的公共实现
// 方言差异只体现在语句文本和 DSN 上
type sqlBase struct {
	name     string
	timeouts Timeouts

	// open 打开 *sql.DB，测试时替换为 sqlmock
	open func(dsn string) (*sql.DB, error)

	// classify 将驱动错误归类为 ErrAccessDenied / ErrConnectionFailed / ErrProtocolError
	classify func(err error) error

	queryErrors int64
}

// QueryErrors 返回被降级为空结果的查询错误次数
func (b *sqlBase) QueryErrors() int64 {
	return atomic.LoadInt64(&b.queryErrors)
}

// connect 打开连接池并固定一条物理连接
func (b *sqlBase) connect(ctx context.Context, target model.Target, cred model.Credential, dsn string) (*Conn, error) {
	db, err := b.open(dsn)
	if err != nil {
		// sql.Open 很少报错，除非驱动名或 DSN 不对
		return nil, newAuthError(target, cred, ErrProtocolError, err)
	}

	// 单连接，避免连接池副作用
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	connectCtx, cancel := context.WithTimeout(ctx, b.timeouts.Connect)
	defer cancel()

	conn, err := db.Conn(connectCtx)
	if err == nil {
		err = conn.PingContext(connectCtx)
		if err != nil {
			conn.Close()
		}
	}
	if err != nil {
		db.Close()
		return nil, newAuthError(target, cred, b.classify(err), err)
	}

	return &Conn{Target: target, Credential: cred, db: db, conn: conn}, nil
}

// exec 执行无结果语句
func (b *sqlBase) exec(ctx context.Context, conn *Conn, stmt string) bool {
	if conn == nil || conn.conn == nil {
		return false
	}

	queryCtx, cancel := context.WithTimeout(ctx, b.timeouts.Query)
	defer cancel()

	if _, err := conn.conn.ExecContext(queryCtx, stmt); err != nil {
		b.fail(conn, stmt, err)
		return false
	}
	return true
}

// queryFirstColumn 返回每一行的第一列
func (b *sqlBase) queryFirstColumn(ctx context.Context, conn *Conn, stmt string, args ...interface{}) []string {
	rows := b.queryRows(ctx, conn, stmt, 0, args...)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		if len(r) > 0 {
			out = append(out, r[0])
		}
	}
	return out
}

// queryRows 执行查询并将所有单元格转换为字符串
// limit > 0 时最多读取 limit 行
// 任何错误都丢弃已读数据并返回空结果
func (b *sqlBase) queryRows(ctx context.Context, conn *Conn, stmt string, limit int, args ...interface{}) [][]string {
	if conn == nil || conn.conn == nil {
		return nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, b.timeouts.Query)
	defer cancel()

	rows, err := conn.conn.QueryContext(queryCtx, stmt, args...)
	if err != nil {
		b.fail(conn, stmt, err)
		return nil
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		b.fail(conn, stmt, err)
		return nil
	}

	var out [][]string
	for rows.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}

		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			b.fail(conn, stmt, err)
			return nil
		}

		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = cellString(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		b.fail(conn, stmt, err)
		return nil
	}

	return out
}

// fail 查询错误的旁路通道
func (b *sqlBase) fail(conn *Conn, stmt string, err error) {
	atomic.AddInt64(&b.queryErrors, 1)
	logger.LogQueryError(b.name, conn.Target.Addr(), stmt, err)
}

// cellString 单元格转字符串
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(x)
	}
}
