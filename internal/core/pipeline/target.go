package pipeline

import (
	"bufio"
	"net"
	"os"
	"strconv"
	"strings"

	"enumdb/internal/pkg/logger"
)

// GenerateTargets 目标生成器
// 将用户输入 (File, List, CIDR, Range, IP, Hostname) 转换为流式的主机通道
func GenerateTargets(input string) <-chan string {
	out := make(chan string, 100) // 带缓冲的 Channel

	go func() {
		defer close(out)

		// 1. 尝试作为文件读取
		if _, err := os.Stat(input); err == nil {
			file, err := os.Open(input)
			if err == nil {
				defer file.Close()
				scanner := bufio.NewScanner(file)
				for scanner.Scan() {
					line := strings.TrimSpace(scanner.Text())
					if line != "" {
						parseAndSend(line, out)
					}
				}
				return
			}
		}

		// 2. 尝试作为逗号分隔的列表
		if strings.Contains(input, ",") {
			for _, part := range strings.Split(input, ",") {
				parseAndSend(strings.TrimSpace(part), out)
			}
			return
		}

		// 3. 处理单个条目 (CIDR, Range, IP, Hostname)
		parseAndSend(strings.TrimSpace(input), out)
	}()

	return out
}

// ExpandTargets 展开所有输入，按出现顺序去重
func ExpandTargets(inputs []string) []string {
	seen := make(map[string]struct{})
	var hosts []string
	for _, input := range inputs {
		for host := range GenerateTargets(input) {
			if _, ok := seen[host]; ok {
				continue
			}
			seen[host] = struct{}{}
			hosts = append(hosts, host)
		}
	}
	return hosts
}

func parseAndSend(target string, out chan<- string) {
	// 忽略空行和注释
	if target == "" || strings.HasPrefix(target, "#") {
		return
	}

	// 1. CIDR (e.g., 192.168.1.0/24)
	if _, ipNet, err := net.ParseCIDR(target); err == nil {
		for ip := ipNet.IP.Mask(ipNet.Mask); ipNet.Contains(ip); inc(ip) {
			out <- ip.String()
		}
		return
	}

	// 2. IP Range (e.g., 192.168.1.1-192.168.1.10 或 10.0.0.1-50)
	if strings.Contains(target, "-") {
		if startIP, endIP, ok := parseRange(target); ok {
			for ip := startIP; bytesCompare(ip, endIP) <= 0; inc(ip) {
				out <- ip.String()
				if ip.Equal(endIP) {
					break
				}
			}
			return
		}
	}

	// 3. Single IP
	if ip := net.ParseIP(target); ip != nil {
		out <- ip.String()
		return
	}

	// 4. Hostname，保持原样交给驱动解析
	if isHostname(target) {
		out <- target
		return
	}

	// 无法解析
	logger.Warn("Skipping invalid target: " + target)
}

// parseRange 解析完整范围 a.b.c.d-w.x.y.z 或末段范围 a.b.c.d-n
func parseRange(target string) (net.IP, net.IP, bool) {
	parts := strings.Split(target, "-")
	if len(parts) != 2 {
		return nil, nil, false
	}

	startIP := net.ParseIP(strings.TrimSpace(parts[0])).To4()
	if startIP == nil {
		return nil, nil, false
	}

	end := strings.TrimSpace(parts[1])
	endIP := net.ParseIP(end).To4()
	if endIP == nil {
		last, err := strconv.Atoi(end)
		if err != nil || last < 0 || last > 255 {
			return nil, nil, false
		}
		endIP = make(net.IP, len(startIP))
		copy(endIP, startIP)
		endIP[3] = byte(last)
	}

	if bytesCompare(startIP, endIP) > 0 {
		return nil, nil, false
	}
	return startIP, endIP, true
}

// isHostname 粗略校验主机名字符
func isHostname(s string) bool {
	if len(s) > 253 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func inc(ip net.IP) {
	for j := len(ip) - 1; j >= 0; j-- {
		ip[j]++
		if ip[j] > 0 {
			break
		}
	}
}

func bytesCompare(a, b []byte) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	for i := 0; i < len(a); i++ {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}
