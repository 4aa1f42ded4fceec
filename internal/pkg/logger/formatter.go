// 扫描相关的结构化日志
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// LogType 日志类型枚举
type LogType string

const (
	// ScanLog 扫描日志 - 记录单个目标的执行情况
	ScanLog LogType = "scan"
	// AuthLog 认证日志 - 记录每一次凭据尝试
	AuthLog LogType = "auth"
	// QueryLog 查询日志 - 记录被降级为空结果的查询错误
	QueryLog LogType = "query"
	// ReportLog 报告日志 - 记录报告写入
	ReportLog LogType = "report"
)

// LogScanOperation 记录目标级扫描事件
func LogScanOperation(target, dbType, status string, duration time.Duration, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":     ScanLog,
		"target":   target,
		"db_type":  dbType,
		"status":   status,
		"duration": duration.Milliseconds(),
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	entry := LoggerInstance.logger.WithFields(fields)
	if status == "failed" {
		entry.Warn("Scan operation failed")
	} else {
		entry.Info("Scan operation")
	}
}

// LogAuthAttempt 记录单次凭据尝试
// 密码不写入日志
func LogAuthAttempt(target, username string, success bool, err error) {
	if LoggerInstance == nil {
		return
	}

	fields := logrus.Fields{
		"type":     AuthLog,
		"target":   target,
		"username": username,
		"success":  success,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	LoggerInstance.logger.WithFields(fields).Debug("Auth attempt")
}

// LogQueryError 记录查询错误
// 查询错误不影响枚举流程，仅在 debug 级别可见
func LogQueryError(driver, target, statement string, err error) {
	if LoggerInstance == nil || err == nil {
		return
	}

	LoggerInstance.logger.WithFields(logrus.Fields{
		"type":      QueryLog,
		"driver":    driver,
		"target":    target,
		"statement": statement,
		"error":     err.Error(),
	}).Debug("Query failed, result degraded to empty")
}
