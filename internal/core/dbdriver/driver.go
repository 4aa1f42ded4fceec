/**
 * 数据库驱动抽象
 * @date: 2026.02.10
 * @description: 屏蔽 SQL 方言差异的能力集。新增数据库类型只需实现 Driver 接口并注册，不做类型分支。
 */

package dbdriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"enumdb/internal/core/model"
)

// Driver 数据库驱动能力集
//
// Connect 失败时返回 *AuthError，绝不 panic。
// 其余方法遇到查询错误时返回空结果而不是错误：单条查询失败 (权限不足、表损坏)
// 不应中断剩余 schema 的枚举。错误通过 debug 日志和 QueryErrors 计数暴露。
type Driver interface {
	// Connect 使用短超时建立认证连接
	Connect(ctx context.Context, target model.Target, cred model.Credential) (*Conn, error)

	// ListDatabases 列出所有数据库
	ListDatabases(ctx context.Context, conn *Conn) []string

	// ListTables 列出指定数据库的表
	ListTables(ctx context.Context, conn *Conn, database string) []string

	// ListColumns 列出指定表的列名 (按定义顺序)
	ListColumns(ctx context.Context, conn *Conn, database, table string) []string

	// SampleRows 采样最多 limit 行
	SampleRows(ctx context.Context, conn *Conn, database, table string, limit int) [][]string
}

// Timeouts 驱动超时配置
type Timeouts struct {
	Connect time.Duration // 建连超时 (秒级)
	Query   time.Duration // 单条查询超时 (数十秒)
}

// DefaultTimeouts 默认超时
var DefaultTimeouts = Timeouts{
	Connect: 3 * time.Second,
	Query:   15 * time.Second,
}

// Conn 绑定到 (Target, Credential, Driver) 的认证连接
// 由创建它的那次凭据尝试独占，尝试结束前必须关闭
type Conn struct {
	Target     model.Target
	Credential model.Credential

	db     *sql.DB
	conn   *sql.Conn    // 固定的物理连接，保证 USE 等会话状态在后续查询中生效
	closer func() error // 非 database/sql 实现的释放函数
}

// NewConn 创建一个不绑定物理连接的 Conn
// 供不基于 database/sql 的 Driver 实现使用
func NewConn(target model.Target, cred model.Credential) *Conn {
	return &Conn{Target: target, Credential: cred}
}

// NewConnWithCloser 创建 Conn，Close 时调用一次 closer
func NewConnWithCloser(target model.Target, cred model.Credential, closer func() error) *Conn {
	return &Conn{Target: target, Credential: cred, closer: closer}
}

// Close 关闭连接，可重复调用
func (c *Conn) Close() error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
		c.conn = nil
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, err)
		}
		c.db = nil
	}
	if c.closer != nil {
		if err := c.closer(); err != nil {
			errs = append(errs, err)
		}
		c.closer = nil
	}
	return errors.Join(errs...)
}

// ErrUnsupportedDBType 不支持的数据库类型
var ErrUnsupportedDBType = errors.New("unsupported database type")

// dialect 注册信息
type dialect struct {
	defaultPort int
	factory     func(Timeouts) Driver
}

var dialects = map[model.DBType]dialect{
	model.DBTypeMySQL: {defaultPort: 3306, factory: func(t Timeouts) Driver { return NewMySQLDriver(t) }},
	model.DBTypeMSSQL: {defaultPort: 1433, factory: func(t Timeouts) Driver { return NewMSSQLDriver(t) }},
}

// New 根据数据库类型创建驱动
func New(dbType model.DBType, timeouts Timeouts) (Driver, error) {
	d, ok := dialects[dbType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDBType, dbType)
	}
	return d.factory(timeouts), nil
}

// DefaultPort 返回数据库类型的默认端口
func DefaultPort(dbType model.DBType) (int, error) {
	d, ok := dialects[dbType]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDBType, dbType)
	}
	return d.defaultPort, nil
}
