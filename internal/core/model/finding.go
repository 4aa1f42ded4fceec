package model

// MatchKind 命中类型
type MatchKind string

const (
	MatchTable  MatchKind = "table"  // 表名命中关键字
	MatchColumn MatchKind = "column" // 列名命中关键字
)

// Finding 一张命中关键字策略的表及其采样数据
// 每个连接每张表最多产生一个 Finding，创建后不可修改
type Finding struct {
	Host     string     `json:"host"`
	DBType   DBType     `json:"db_type"`
	Database string     `json:"database"`
	Table    string     `json:"table"`
	Kind     MatchKind  `json:"kind"`
	Match    string     `json:"match"` // 命中的关键字 (表模式) 或列名 (列模式)
	Columns  []string   `json:"columns"`
	Rows     [][]string `json:"rows"`
}

// Title 报告中每个 Finding 的描述行
func (f *Finding) Title() string {
	return "[+] Table: " + f.Table + "   Database: " + f.Database + "   Server: " + f.Host
}
