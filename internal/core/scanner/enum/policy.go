package enum

import (
	"strings"

	"enumdb/internal/config"
)

// KeywordPolicy 关键字与黑名单策略
// 构造时统一转为小写，之后只读，可在多个 goroutine 间共享
type KeywordPolicy struct {
	tableKeywords  []string
	columnKeywords []string
	dbBlacklist    map[string]struct{}
	tableBlacklist map[string]struct{}
}

// NewKeywordPolicy 创建策略
// 关键字保持输入顺序 (先命中者优先)，空字符串被忽略
func NewKeywordPolicy(tableKeywords, columnKeywords, dbBlacklist, tableBlacklist []string) *KeywordPolicy {
	return &KeywordPolicy{
		tableKeywords:  normalizeList(tableKeywords),
		columnKeywords: normalizeList(columnKeywords),
		dbBlacklist:    toSet(dbBlacklist),
		tableBlacklist: toSet(tableBlacklist),
	}
}

// PolicyFromConfig 从配置创建策略
func PolicyFromConfig(cfg *config.PolicyConfig) *KeywordPolicy {
	if cfg == nil {
		return NewKeywordPolicy(config.DefaultTableKeywords, config.DefaultColumnKeywords, nil, nil)
	}
	return NewKeywordPolicy(cfg.TableKeywords, cfg.ColumnKeywords, cfg.DBBlacklist, cfg.TableBlacklist)
}

// MatchTable 返回第一个出现在表名中的关键字
func (p *KeywordPolicy) MatchTable(table string) (string, bool) {
	return firstMatch(p.tableKeywords, table)
}

// MatchColumn 返回第一个出现在列名中的关键字
func (p *KeywordPolicy) MatchColumn(column string) (string, bool) {
	return firstMatch(p.columnKeywords, column)
}

// DatabaseBlacklisted 数据库是否在黑名单中
func (p *KeywordPolicy) DatabaseBlacklisted(database string) bool {
	_, ok := p.dbBlacklist[strings.ToLower(database)]
	return ok
}

// TableBlacklisted 表是否在黑名单中
func (p *KeywordPolicy) TableBlacklisted(table string) bool {
	_, ok := p.tableBlacklist[strings.ToLower(table)]
	return ok
}

func firstMatch(keywords []string, name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toSet(in []string) map[string]struct{} {
	set := make(map[string]struct{}, len(in))
	for _, s := range normalizeList(in) {
		set[s] = struct{}{}
	}
	return set
}
