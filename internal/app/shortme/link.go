package shortme

import "time"

// LinkStatus 是短链记录的生命周期状态。
// 创建路径只会产出 ACTIVE；DISABLED/EXPIRED 由后台管理流程维护（本核心不主动清理过期）。
type LinkStatus string

const (
	StatusActive   LinkStatus = "ACTIVE"
	StatusDisabled LinkStatus = "DISABLED"
	StatusExpired  LinkStatus = "EXPIRED"
)

// LinkRecord 是短链领域对象（durable 侧的权威表示）。
//
// 说明：
// - ID：数据库首次插入时分配，之后不可变；生成短码路径用它推导 ShortCode
// - ShortCode：全局唯一短码（1~20 个 [0-9A-Za-z] 字符）；生成路径先插入后补码，
//   所以持久化过程中可能短暂为空
// - LongURL：规范化后的绝对 URL（最长 2048 字符）
// - ExpiresAt：可空，仅作记录，本核心不做过期判断
//
// 设计原因：
// - 领域层不携带 HTTP/DB 细节（JSON tag、SQL 字段名放到各自的边界层）
type LinkRecord struct {
	ID        int64
	ShortCode string
	LongURL   string
	CreatedAt time.Time
	ExpiresAt *time.Time
	Status    LinkStatus
}

// newLinkRecord 按创建请求组装一条新记录。
// customCode 为空表示走生成短码路径（ShortCode 留空，等 ID 分配后再补）。
func newLinkRecord(longURL, customCode string, expiresAt *time.Time) *LinkRecord {
	return &LinkRecord{
		ShortCode: customCode,
		LongURL:   longURL,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
		Status:    StatusActive,
	}
}
