// ### 发布流程
// 1. **更新版本号**：修改 `internal/pkg/version/version.go`
// 2. **构建**：通过 -ldflags 注入 BuildTime / GitCommit / GoVersion
// 3. **推送代码和 Tag**

package version

var (
	Version   = "2.1.0" // 版本号 -- 发布时候更新版本号
	BuildTime string
	GitCommit string
	GoVersion string
)

func GetVersion() string {
	return Version
}
