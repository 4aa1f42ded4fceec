package model

import (
	"reflect"
	"testing"
)

func TestTrialResults_RowsPerLogin(t *testing.T) {
	results := TrialResults{
		{
			Target:   Target{Host: "10.0.0.5", Port: 3306, DBType: DBTypeMySQL},
			Attempts: 4,
			Valid: []Login{
				{Credential: Credential{Username: "root", Password: "toor"}, Findings: 3},
				{Credential: Credential{Username: "app", Password: "app"}, Findings: 1},
			},
			Findings: 4,
		},
		{Target: Target{Host: "10.0.0.6", Port: 3306, DBType: DBTypeMySQL}, Attempts: 4},
	}

	want := [][]string{
		{"mysql", "10.0.0.5", "3306", "root", "toor", "3"},
		{"mysql", "10.0.0.5", "3306", "app", "app", "1"},
	}
	if got := results.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}
	if got := len(results.Headers()); got != len(want[0]) {
		t.Errorf("Headers() has %d columns, rows have %d", got, len(want[0]))
	}
}

func TestParseDBType(t *testing.T) {
	tests := []struct {
		in   string
		want DBType
		ok   bool
	}{
		{"mysql", DBTypeMySQL, true},
		{" MSSQL ", DBTypeMSSQL, true},
		{"oracle", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDBType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDBType(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
