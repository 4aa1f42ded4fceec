/**
 * 目标与凭据模型 (Core Domain)
 * @date: 2026.02.10
 * @description: 扫描目标、凭据以及单目标执行结果。调度器、爆破循环与报告之间的通用语言。
 */

package model

import (
	"net"
	"strconv"
	"strings"
)

// DBType 数据库类型
type DBType string

const (
	DBTypeMySQL DBType = "mysql"
	DBTypeMSSQL DBType = "mssql"
)

// ParseDBType 解析数据库类型 (大小写不敏感)
func ParseDBType(s string) (DBType, bool) {
	switch DBType(strings.ToLower(strings.TrimSpace(s))) {
	case DBTypeMySQL:
		return DBTypeMySQL, true
	case DBTypeMSSQL:
		return DBTypeMSSQL, true
	}
	return "", false
}

// Target 单个数据库服务端点，调度后不可变
type Target struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	DBType DBType `json:"db_type"`
}

// Addr 返回 host:port
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

func (t Target) String() string {
	return string(t.DBType) + "://" + t.Addr()
}

// Credential 一组待验证的用户名/密码
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login 一组验证成功的凭据，以及用它枚举到的 Finding 数
type Login struct {
	Credential
	Findings int `json:"findings"`
}

// TrialResult 单个目标的爆破与枚举汇总
type TrialResult struct {
	Target   Target  `json:"target"`
	Attempts int     `json:"attempts"`
	Valid    []Login `json:"valid,omitempty"`
	Findings int     `json:"findings"` // 所有成功凭据的 Finding 总数
}

// TrialResults 结果集合，实现 TabularData 接口以便一次性打印
type TrialResults []TrialResult

// Headers 实现 TabularData 接口
func (rs TrialResults) Headers() []string {
	return []string{"Service", "Host", "Port", "Username", "Password", "Findings"}
}

// Rows 实现 TabularData 接口
// 只输出成功的凭据，每个凭据一行，Findings 为该凭据自己的枚举结果
func (rs TrialResults) Rows() [][]string {
	var rows [][]string
	for _, r := range rs {
		for _, c := range r.Valid {
			rows = append(rows, []string{
				string(r.Target.DBType),
				r.Target.Host,
				strconv.Itoa(r.Target.Port),
				c.Username,
				c.Password,
				strconv.Itoa(c.Findings),
			})
		}
	}
	return rows
}
