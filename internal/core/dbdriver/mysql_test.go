package dbdriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"enumdb/internal/core/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testMySQLTarget = model.Target{Host: "10.0.0.5", Port: 3306, DBType: model.DBTypeMySQL}
	testCred        = model.Credential{Username: "root", Password: "toor"}
)

// newMockMySQL 返回一个连接到 sqlmock 的 MySQL 驱动
func newMockMySQL(t *testing.T) (*MySQLDriver, sqlmock.Sqlmock, *Conn) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	d := NewMySQLDriver(DefaultTimeouts)
	d.open = func(string) (*sql.DB, error) { return db, nil }

	conn, err := d.Connect(context.Background(), testMySQLTarget, testCred)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return d, mock, conn
}

func TestMySQLDriver_DSN(t *testing.T) {
	d := NewMySQLDriver(Timeouts{Connect: 3 * time.Second, Query: 15 * time.Second})
	dsn := d.dsn(testMySQLTarget, model.Credential{Username: "root", Password: "p@ss:word"})

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "p@ss:word", cfg.Passwd)
	assert.Equal(t, "10.0.0.5:3306", cfg.Addr)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Empty(t, cfg.DBName)
}

func TestMySQLDriver_ListDatabases(t *testing.T) {
	d, mock, conn := newMockMySQL(t)

	mock.ExpectQuery("SHOW DATABASES").
		WillReturnRows(sqlmock.NewRows([]string{"Database"}).AddRow("information_schema").AddRow("app"))

	assert.Equal(t, []string{"information_schema", "app"}, d.ListDatabases(context.Background(), conn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDriver_ListTables_UsesDatabase(t *testing.T) {
	d, mock, conn := newMockMySQL(t)

	mock.ExpectExec("USE `app`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SHOW TABLES").
		WillReturnRows(sqlmock.NewRows([]string{"Tables_in_app"}).AddRow("orders").AddRow("user_accounts"))

	assert.Equal(t, []string{"orders", "user_accounts"}, d.ListTables(context.Background(), conn, "app"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDriver_ListColumns(t *testing.T) {
	d, mock, conn := newMockMySQL(t)

	cols := []string{"Field", "Type", "Null", "Key", "Default", "Extra"}
	mock.ExpectExec("USE `app`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SHOW COLUMNS FROM `user_accounts`").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("id", "int", "NO", "PRI", nil, "auto_increment").
			AddRow("password", "varchar(64)", "YES", "", nil, ""))

	assert.Equal(t, []string{"id", "password"}, d.ListColumns(context.Background(), conn, "app", "user_accounts"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLDriver_SampleRows_Limit(t *testing.T) {
	d, mock, conn := newMockMySQL(t)

	rows := sqlmock.NewRows([]string{"id", "name", "deleted_at"})
	for i := 0; i < 150; i++ {
		rows.AddRow(i, fmt.Sprintf("user%d", i), nil)
	}
	mock.ExpectExec("USE `app`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT * FROM `user_accounts` LIMIT 100").WillReturnRows(rows)

	got := d.SampleRows(context.Background(), conn, "app", "user_accounts", 100)
	require.Len(t, got, 100)
	assert.Equal(t, []string{"0", "user0", "NULL"}, got[0])
}

func TestMySQLDriver_QueryErrorDegradesToEmpty(t *testing.T) {
	d, mock, conn := newMockMySQL(t)

	mock.ExpectExec("USE `secret`").WillReturnError(&mysql.MySQLError{Number: 1044, Message: "Access denied"})
	mock.ExpectQuery("SHOW DATABASES").WillReturnError(errors.New("lost connection"))

	assert.Empty(t, d.ListTables(context.Background(), conn, "secret"))
	assert.Empty(t, d.ListDatabases(context.Background(), conn))
	assert.Equal(t, int64(2), d.QueryErrors())
}

func TestMySQLDriver_QuotesIdentifiers(t *testing.T) {
	assert.Equal(t, "`we``ird`", quoteMySQL("we`ird"))
}

func TestMySQLDriver_Connect_AccessDenied(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(&mysql.MySQLError{Number: 1045, Message: "Access denied for user 'root'"})

	d := NewMySQLDriver(DefaultTimeouts)
	d.open = func(string) (*sql.DB, error) { return db, nil }

	conn, err := d.Connect(context.Background(), testMySQLTarget, testCred)
	assert.Nil(t, conn)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, authErr.Denied())
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, "root:toor@10.0.0.5", authErr.Summary())
}

func TestMySQLDriver_Connect_NetworkError(t *testing.T) {
	// 本地随机未监听端口
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	d := NewMySQLDriver(Timeouts{Connect: time.Second, Query: time.Second})
	target := model.Target{Host: "127.0.0.1", Port: port, DBType: model.DBTypeMySQL}

	conn, err := d.Connect(context.Background(), target, testCred)
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestClassifyMySQLError(t *testing.T) {
	tests := []struct {
		name     string
		errInput error
		want     error
	}{
		{
			name:     "Access Denied (Code 1045)",
			errInput: &mysql.MySQLError{Number: 1045, Message: "Access denied for user 'root'@'localhost'"},
			want:     ErrAccessDenied,
		},
		{
			name:     "Wrapped Access Denied (Code 1044)",
			errInput: fmt.Errorf("connect: %w", &mysql.MySQLError{Number: 1044, Message: "denied"}),
			want:     ErrAccessDenied,
		},
		{
			name:     "Timeout",
			errInput: errors.New("dial tcp 1.2.3.4:3306: i/o timeout"),
			want:     ErrConnectionFailed,
		},
		{
			name:     "Connection Refused",
			errInput: errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"),
			want:     ErrConnectionFailed,
		},
		{
			name:     "Bad Connection",
			errInput: mysql.ErrInvalidConn,
			want:     ErrConnectionFailed,
		},
		{
			name:     "Unknown Error",
			errInput: errors.New("some weird error"),
			want:     ErrProtocolError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyMySQLError(tt.errInput); got != tt.want {
				t.Errorf("classifyMySQLError() = %v, want %v", got, tt.want)
			}
		})
	}
}
