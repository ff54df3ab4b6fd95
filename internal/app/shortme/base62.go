package shortme

import (
	"errors"
	"math"
)

// Base62 用于短码与数据库自增 ID 的互相转换（编码生成短码、解码用于解析路径）。
//
// 设计原因：
// - 编码/解码必须互为逆运算：解析路径靠 decode(code) 找回 ID，所以不能用
//   sqids 这类打乱字母表、带最小长度填充的方案
// - 字母表顺序固定为 数字 -> 大写 -> 小写，编码与解码共用同一张表
//
// 注意（面试常问点）：
// - “自增 ID + Base62”可被枚举，靠限流缓解；本服务不做加盐
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

var (
	// ErrInvalidCode 表示短码为空或含有字母表之外的字符。
	ErrInvalidCode = errors.New("invalid base62 code")

	// ErrCodeOverflow 表示短码解码结果超出 64 位 ID 的取值范围。
	ErrCodeOverflow = errors.New("base62 code overflows id range")
)

// charIndex 把字母表字符映射到 0~61；其余字节为 -1。
var charIndex [256]int8

func init() {
	for i := range charIndex {
		charIndex[i] = -1
	}
	for i := 0; i < len(alphabet); i++ {
		charIndex[alphabet[i]] = int8(i)
	}
}

// EncodeBase62 将非负整数编码为最短形式的 Base62 字符串。
// 约定：0 编码为 "0"，非零值无前导 "0"。
func EncodeBase62(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [11]byte // 62^10 < 2^64 <= 62^11，uint64 最多 11 位
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = alphabet[n%62]
		n /= 62
	}
	return string(buf[i:])
}

// DecodeBase62 将 Base62 字符串还原为整数，是 EncodeBase62 的精确逆运算。
//
// 错误约定：
// - 空串或含字母表外字符：ErrInvalidCode
// - 数值超出 uint64：ErrCodeOverflow
//
// 调用方（解析路径）把这两类错误统一当作“未命中”处理，不往外抛。
func DecodeBase62(code string) (uint64, error) {
	if code == "" {
		return 0, ErrInvalidCode
	}

	var n uint64
	for i := 0; i < len(code); i++ {
		v := charIndex[code[i]]
		if v < 0 {
			return 0, ErrInvalidCode
		}
		if n > math.MaxUint64/62 {
			return 0, ErrCodeOverflow
		}
		n *= 62
		if n > math.MaxUint64-uint64(v) {
			return 0, ErrCodeOverflow
		}
		n += uint64(v)
	}
	return n, nil
}

// decodeID 在 DecodeBase62 之上收窄到数据库 ID 的取值域（int64 非负）。
func decodeID(code string) (int64, error) {
	n, err := DecodeBase62(code)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, ErrCodeOverflow
	}
	return int64(n), nil
}
