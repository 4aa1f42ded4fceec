package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"line", "Password1\n", "Password1"},
		{"crlf", "Password1\r\n", "Password1"},
		{"no newline", "Password1", "Password1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readLine(context.Background(), strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("readLine() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("readLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadLine_InterruptWhileWaiting(t *testing.T) {
	r, w := io.Pipe() // 永远不会写入，模拟等待输入
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	begin := time.Now()
	_, err := readLine(ctx, r)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("readLine() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(begin); elapsed > time.Second {
		t.Errorf("readLine() returned after %v, want prompt return on cancel", elapsed)
	}
}
