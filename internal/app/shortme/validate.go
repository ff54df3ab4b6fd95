package shortme

import (
	"net/url"
	"regexp"
	"strings"
)

// ValidationError 是领域层对“输入不合法”的统一错误（空 URL、超长、重复等）。
//
// 设计原因：
// - 上层（HTTP）可以稳定地把它映射成 400，而不需要关心具体是哪条规则失败
// - 错误文案直接面向调用方，放在领域层统一维护，避免各处散落不同字符串
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidInput(msg string) error { return &ValidationError{msg: msg} }

// ConflictError 表示自定义短码已被占用（预检发现，或并发竞争时数据库唯一约束拒绝）。
// 错误信息里带上冲突的短码，方便调用方直接提示用户换一个。
type ConflictError struct {
	Code string
}

func (e *ConflictError) Error() string {
	return "Short code '" + e.Code + "' is already in use"
}

// MaxLongURLLen 是长链接的最大长度（常见浏览器/服务端上限）。
const MaxLongURLLen = 2048

// NormalizeLongURL 校验并规范化用户输入的长链接，按固定顺序执行，每步失败即返回：
//
//  1. 拒绝空白输入
//  2. 拒绝超过 2048 字符
//  3. 缺少 scheme 时补 "https://"（"local.com" 与 "https://local.com" 因此等价）
//  4. 拒绝双重前缀（"https://https://example.com" 这类粘贴事故）
//  5. host 部分必须含 "."（拒绝 "https://example" 这种没有域名的输入）
//  6. 整体必须能通过 URI 语法解析
//
// 返回规范化后的 URL；重复检测必须用这个结果做 key。
func NormalizeLongURL(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", invalidInput("URL cannot be empty")
	}
	if len(raw) > MaxLongURLLen {
		return "", invalidInput("URL too long (max 2048 characters)")
	}

	u := raw
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}

	withoutScheme := u
	if strings.HasPrefix(u, "https://") {
		withoutScheme = u[len("https://"):]
	} else {
		withoutScheme = u[len("http://"):]
	}
	if strings.HasPrefix(withoutScheme, "http://") || strings.HasPrefix(withoutScheme, "https://") {
		return "", invalidInput("Invalid URL: double protocol prefix")
	}

	host := withoutScheme
	if i := strings.IndexByte(withoutScheme, '/'); i >= 0 {
		host = withoutScheme[:i]
	}
	if !strings.Contains(host, ".") {
		return "", invalidInput("Invalid URL: missing domain")
	}

	if _, err := url.Parse(u); err != nil {
		return "", invalidInput("Invalid URL format")
	}

	return u, nil
}

var customCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// reservedCodes 禁止与已有路由前缀冲突的短码（否则 /metrics 这类路径会被短链抢走）。
var reservedCodes = map[string]struct{}{
	"api":     {},
	"error":   {},
	"healthz": {},
	"metrics": {},
	"favicon": {},
}

// ValidateCustomCode 校验用户自定义短码：3~20 位，字母/数字/连字符/下划线。
// 传输层已经做过一遍同样的规则，这里再检查一次，保证核心不依赖外层的行为。
func ValidateCustomCode(code string) error {
	if !customCodeRe.MatchString(code) {
		return invalidInput("Custom short code must be 3-20 characters of letters, digits, hyphens, or underscores")
	}
	if _, ok := reservedCodes[strings.ToLower(code)]; ok {
		return invalidInput("Custom short code '" + code + "' is reserved")
	}
	return nil
}
