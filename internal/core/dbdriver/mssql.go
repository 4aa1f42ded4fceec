package dbdriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"enumdb/internal/core/model"

	_ "github.com/denisenkom/go-mssqldb"
)

// MSSQLDriver MSSQL 方言
// 库名直接嵌入每条语句 ([db].sys.tables)，不依赖会话状态
type MSSQLDriver struct {
	sqlBase
}

// NewMSSQLDriver 创建 MSSQL 驱动
func NewMSSQLDriver(timeouts Timeouts) *MSSQLDriver {
	return &MSSQLDriver{
		sqlBase: sqlBase{
			name:     string(model.DBTypeMSSQL),
			timeouts: timeouts,
			open:     func(dsn string) (*sql.DB, error) { return sql.Open("sqlserver", dsn) },
			classify: classifyMSSQLError,
		},
	}
}

// dsn 使用 URL 构建连接串以处理特殊字符转义
func (d *MSSQLDriver) dsn(target model.Target, cred model.Credential) string {
	query := url.Values{}
	query.Add("database", "master")
	query.Add("encrypt", "disable")
	query.Add("connection timeout", strconv.Itoa(int(d.timeouts.Connect.Seconds())))
	query.Add("dial timeout", strconv.Itoa(int(d.timeouts.Connect.Seconds())))
	query.Add("app name", "enumdb")

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cred.Username, cred.Password),
		Host:     target.Addr(),
		RawQuery: query.Encode(),
	}
	return u.String()
}

// Connect 验证凭据并返回认证连接
func (d *MSSQLDriver) Connect(ctx context.Context, target model.Target, cred model.Credential) (*Conn, error) {
	return d.connect(ctx, target, cred, d.dsn(target, cred))
}

// ListDatabases sys.databases
func (d *MSSQLDriver) ListDatabases(ctx context.Context, conn *Conn) []string {
	return d.queryFirstColumn(ctx, conn, "SELECT name FROM sys.databases")
}

// ListTables [db].sys.tables
func (d *MSSQLDriver) ListTables(ctx context.Context, conn *Conn, database string) []string {
	return d.queryFirstColumn(ctx, conn, fmt.Sprintf("SELECT name FROM %s.sys.tables", quoteMSSQL(database)))
}

// ListColumns [db].information_schema.columns，按定义顺序
func (d *MSSQLDriver) ListColumns(ctx context.Context, conn *Conn, database, table string) []string {
	stmt := fmt.Sprintf(
		"SELECT column_name FROM %s.information_schema.columns WHERE table_name = @p1 ORDER BY ordinal_position",
		quoteMSSQL(database))
	return d.queryFirstColumn(ctx, conn, stmt, table)
}

// SampleRows SELECT TOP(n) * FROM [db].dbo.[table]
func (d *MSSQLDriver) SampleRows(ctx context.Context, conn *Conn, database, table string, limit int) [][]string {
	stmt := fmt.Sprintf("SELECT TOP(%d) * FROM %s.dbo.%s", limit, quoteMSSQL(database), quoteMSSQL(table))
	return d.queryRows(ctx, conn, stmt, limit)
}

// quoteMSSQL 方括号转义标识符
func quoteMSSQL(ident string) string {
	return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
}

// classifyMSSQLError 解析 MSSQL 错误
func classifyMSSQLError(err error) error {
	msg := err.Error()

	// Error: 18456, Severity: 14, State: 1. Login failed for user 'sa'.
	if strings.Contains(msg, "Login failed") {
		return ErrAccessDenied
	}

	lower := strings.ToLower(msg)
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "i/o timeout") ||
		strings.Contains(lower, "pre-login handshake failed") ||
		strings.Contains(lower, "the connection is closed") ||
		strings.Contains(lower, "no route to host") ||
		strings.Contains(lower, "context deadline exceeded") {
		return ErrConnectionFailed
	}

	return ErrProtocolError
}
