package options

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enumdb/internal/core/dbdriver"
	"enumdb/internal/core/model"
	"enumdb/internal/core/reporter"
	"enumdb/internal/core/scanner/brute"
)

func validOptions() *EnumOptions {
	o := NewEnumOptions()
	o.Targets = []string{"10.0.0.5"}
	o.Users = []string{"root"}
	o.Passwords = []string{"toor"}
	o.DBType = "mysql"
	return o
}

func TestEnumOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *EnumOptions)
		wantErr error
	}{
		{"valid", func(o *EnumOptions) {}, nil},
		{"no target", func(o *EnumOptions) { o.Targets = nil }, errors.New("")},
		{"bad dbtype", func(o *EnumOptions) { o.DBType = "oracle" }, dbdriver.ErrUnsupportedDBType},
		{"no users", func(o *EnumOptions) { o.Users = nil }, errors.New("")},
		{"users and file", func(o *EnumOptions) { o.UserFile = "users.txt" }, errors.New("")},
		{"passwords and file", func(o *EnumOptions) { o.PassFile = "pass.txt" }, errors.New("")},
		{"missing user file", func(o *EnumOptions) {
			o.Users = nil
			o.UserFile = filepath.Join(os.TempDir(), "enumdb-missing-users.txt")
		}, brute.ErrInputFileNotFound},
		{"bad report", func(o *EnumOptions) { o.Report = "pdf" }, reporter.ErrUnsupportedReport},
		{"bad port", func(o *EnumOptions) { o.Port = 70000 }, errors.New("")},
		{"bad threads", func(o *EnumOptions) { o.MaxThreads = 0 }, errors.New("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(o)
			err := o.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr.Error() != "" {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestEnumOptions_ResolveTargets(t *testing.T) {
	o := validOptions()
	o.Targets = []string{"10.0.0.1-2"}
	o.DBType = "MSSQL"

	targets, err := o.ResolveTargets()
	require.NoError(t, err)
	assert.Equal(t, []model.Target{
		{Host: "10.0.0.1", Port: 1433, DBType: model.DBTypeMSSQL},
		{Host: "10.0.0.2", Port: 1433, DBType: model.DBTypeMSSQL},
	}, targets)

	o.Port = 14330
	targets, err = o.ResolveTargets()
	require.NoError(t, err)
	assert.Equal(t, 14330, targets[0].Port)
}

func TestEnumOptions_ResolveCredentials(t *testing.T) {
	dir := t.TempDir()
	userFile := filepath.Join(dir, "users.txt")
	require.NoError(t, os.WriteFile(userFile, []byte("root\nsa\n"), 0o644))

	o := validOptions()
	o.Users = nil
	o.UserFile = userFile
	o.Passwords = []string{"%user%", ""}
	require.NoError(t, o.Validate())

	creds, err := o.ResolveCredentials()
	require.NoError(t, err)
	assert.Equal(t, []model.Credential{
		{Username: "root", Password: "root"},
		{Username: "root", Password: ""},
		{Username: "sa", Password: "sa"},
		{Username: "sa", Password: ""},
	}, creds)
}

func TestEnumOptions_NeedPasswordPrompt(t *testing.T) {
	o := validOptions()
	assert.False(t, o.NeedPasswordPrompt())

	o.Passwords = nil
	assert.True(t, o.NeedPasswordPrompt())

	o.PassFile = "pass.txt"
	assert.False(t, o.NeedPasswordPrompt())
}
