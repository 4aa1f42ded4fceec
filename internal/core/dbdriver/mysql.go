package dbdriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"enumdb/internal/core/model"

	"github.com/go-sql-driver/mysql"
)

// MySQLDriver MySQL 方言
// 库选择是独立的 USE 语句，后续查询依赖会话状态
type MySQLDriver struct {
	sqlBase
}

// NewMySQLDriver 创建 MySQL 驱动
func NewMySQLDriver(timeouts Timeouts) *MySQLDriver {
	return &MySQLDriver{
		sqlBase: sqlBase{
			name:     string(model.DBTypeMySQL),
			timeouts: timeouts,
			open:     func(dsn string) (*sql.DB, error) { return sql.Open("mysql", dsn) },
			classify: classifyMySQLError,
		},
	}
}

// dsn 构建 DSN，不指定 dbname，连接默认库
func (d *MySQLDriver) dsn(target model.Target, cred model.Credential) string {
	cfg := mysql.NewConfig()
	cfg.User = cred.Username
	cfg.Passwd = cred.Password
	cfg.Net = "tcp"
	cfg.Addr = target.Addr()
	cfg.Timeout = d.timeouts.Connect
	cfg.ReadTimeout = d.timeouts.Query
	cfg.WriteTimeout = d.timeouts.Query
	// 兼容老版本服务端的认证方式
	cfg.AllowNativePasswords = true
	cfg.AllowOldPasswords = true
	return cfg.FormatDSN()
}

// Connect 验证凭据并返回认证连接
func (d *MySQLDriver) Connect(ctx context.Context, target model.Target, cred model.Credential) (*Conn, error) {
	return d.connect(ctx, target, cred, d.dsn(target, cred))
}

// ListDatabases SHOW DATABASES
func (d *MySQLDriver) ListDatabases(ctx context.Context, conn *Conn) []string {
	return d.queryFirstColumn(ctx, conn, "SHOW DATABASES")
}

// ListTables USE 后 SHOW TABLES
func (d *MySQLDriver) ListTables(ctx context.Context, conn *Conn, database string) []string {
	if !d.use(ctx, conn, database) {
		return nil
	}
	return d.queryFirstColumn(ctx, conn, "SHOW TABLES")
}

// ListColumns SHOW COLUMNS，第一列为 Field
func (d *MySQLDriver) ListColumns(ctx context.Context, conn *Conn, database, table string) []string {
	if !d.use(ctx, conn, database) {
		return nil
	}
	return d.queryFirstColumn(ctx, conn, "SHOW COLUMNS FROM "+quoteMySQL(table))
}

// SampleRows SELECT * ... LIMIT n
func (d *MySQLDriver) SampleRows(ctx context.Context, conn *Conn, database, table string, limit int) [][]string {
	if !d.use(ctx, conn, database) {
		return nil
	}
	stmt := fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteMySQL(table), limit)
	return d.queryRows(ctx, conn, stmt, limit)
}

// use 切换当前库
func (d *MySQLDriver) use(ctx context.Context, conn *Conn, database string) bool {
	return d.exec(ctx, conn, "USE "+quoteMySQL(database))
}

// quoteMySQL 反引号转义标识符
func quoteMySQL(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

// classifyMySQLError 将底层错误转换为标准错误
func classifyMySQLError(err error) error {
	var driverErr *mysql.MySQLError
	if errors.As(err, &driverErr) {
		switch driverErr.Number {
		case 1045, 1044: // Access denied
			return ErrAccessDenied
		}
	}

	msg := strings.ToLower(err.Error())

	// 文本匹配兜底
	if strings.Contains(msg, "access denied") {
		return ErrAccessDenied
	}

	if errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no route to host") ||
		strings.Contains(msg, "network is unreachable") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "bad connection") ||
		strings.Contains(msg, "actively refused") { // Windows
		return ErrConnectionFailed
	}

	return ErrProtocolError
}
