package dbdriver

import (
	"errors"
	"fmt"

	"enumdb/internal/core/model"
)

var (
	// ErrAccessDenied 服务端拒绝凭据 (账号密码错误)
	ErrAccessDenied = errors.New("access denied")

	// ErrConnectionFailed 连接失败 (超时/拒绝/重置)
	ErrConnectionFailed = errors.New("connection failed")

	// ErrProtocolError 协议交互错误 (如非预期响应)
	ErrProtocolError = errors.New("protocol error")
)

// AuthError 建连/认证失败
// Kind 为上面三个哨兵错误之一，Err 为底层驱动错误
type AuthError struct {
	Target     model.Target
	Credential model.Credential
	Kind       error
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed %s: %v", e.Summary(), e.Err)
}

// Unwrap 支持 errors.Is(err, ErrAccessDenied) 以及匹配底层驱动错误
func (e *AuthError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Summary 不含驱动细节的简要描述 user:pass@host
func (e *AuthError) Summary() string {
	return fmt.Sprintf("%s:%s@%s", e.Credential.Username, e.Credential.Password, e.Target.Host)
}

// Denied 服务端是否明确拒绝了凭据
func (e *AuthError) Denied() bool {
	return errors.Is(e.Kind, ErrAccessDenied)
}

func newAuthError(target model.Target, cred model.Credential, kind, err error) *AuthError {
	if kind == nil {
		kind = ErrProtocolError
	}
	return &AuthError{Target: target, Credential: cred, Kind: kind, Err: err}
}
