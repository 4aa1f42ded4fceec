package dbdriver

import (
	"errors"
	"testing"

	"enumdb/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	d, err := New(model.DBTypeMySQL, DefaultTimeouts)
	require.NoError(t, err)
	assert.IsType(t, &MySQLDriver{}, d)

	d, err = New(model.DBTypeMSSQL, DefaultTimeouts)
	require.NoError(t, err)
	assert.IsType(t, &MSSQLDriver{}, d)

	_, err = New("oracle", DefaultTimeouts)
	assert.ErrorIs(t, err, ErrUnsupportedDBType)
}

func TestDefaultPort(t *testing.T) {
	port, err := DefaultPort(model.DBTypeMySQL)
	require.NoError(t, err)
	assert.Equal(t, 3306, port)

	port, err = DefaultPort(model.DBTypeMSSQL)
	require.NoError(t, err)
	assert.Equal(t, 1433, port)

	_, err = DefaultPort("postgres")
	assert.ErrorIs(t, err, ErrUnsupportedDBType)
}

func TestConn_CloseWithoutBacking(t *testing.T) {
	conn := NewConn(model.Target{Host: "h"}, model.Credential{})
	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())

	var nilConn *Conn
	assert.NoError(t, nilConn.Close())
}

func TestConn_CloserCalledOnce(t *testing.T) {
	calls := 0
	conn := NewConnWithCloser(model.Target{Host: "h"}, model.Credential{}, func() error {
		calls++
		return errors.New("reset by peer")
	})

	assert.EqualError(t, conn.Close(), "reset by peer")
	assert.NoError(t, conn.Close())
	assert.Equal(t, 1, calls)
}

func TestAuthError(t *testing.T) {
	cause := errors.New("Login failed for user 'sa'")
	err := newAuthError(model.Target{Host: "10.0.0.9"}, model.Credential{Username: "sa", Password: "pw"}, ErrAccessDenied, cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Contains(t, err.Error(), "sa:pw@10.0.0.9")
	assert.True(t, err.Denied())

	err = newAuthError(model.Target{}, model.Credential{}, nil, cause)
	assert.ErrorIs(t, err, ErrProtocolError)
}
