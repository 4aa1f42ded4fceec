package brute

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"enumdb/internal/core/model"
)

// ErrInputFileNotFound 用户名/密码文件不存在
var ErrInputFileNotFound = errors.New("input file not found")

// userPlaceholder 密码中的用户名占位符
const userPlaceholder = "%user%"

// Credentials 生成爆破凭据列表
// 笛卡尔积: 用户名在外层、密码在内层，顺序与输入一致
func Credentials(users, passwords []string) []model.Credential {
	list := make([]model.Credential, 0, len(users)*len(passwords))
	for _, u := range users {
		for _, p := range passwords {
			// 动态替换 %user%
			list = append(list, model.Credential{
				Username: u,
				Password: strings.ReplaceAll(p, userPlaceholder, u),
			})
		}
	}
	return list
}

// LoadFile 按行读取字典文件
// 每行去除首尾空白，空行保留 (空密码是有效的尝试)
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}
