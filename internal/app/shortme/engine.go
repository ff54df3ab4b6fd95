package shortme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// SentinelTarget 是解析失败时返回的固定内部地址（跳转到错误页，而不是抛错）。
// 解析路径对外永不失败：短码不存在、解码失败、存储故障都收敛到这个值。
const SentinelTarget = "/error"

// 存储层向核心传递的信号错误。repo 负责把数据库错误翻译成这两个值，
// 引擎再把它们翻译成面向调用方的 ConflictError / ValidationError。
var (
	// ErrCodeTaken 表示 short_code 唯一约束被触发（并发竞争时的权威裁决）。
	ErrCodeTaken = errors.New("short code already exists")

	// ErrDuplicateURL 表示 long_url 唯一约束被触发（预检之后才撞上的并发重复提交）。
	ErrDuplicateURL = errors.New("url already shortened")
)

// DurableStore 是权威存储的查询契约。
//
// 约定：
// - Save 在 ID==0 时插入并回填分配的 ID，否则按 ID 更新短码；
//   唯一约束冲突翻译成 ErrCodeTaken / ErrDuplicateURL
// - Find* 未命中返回 (nil, nil)，err 只表示真正的存储故障
type DurableStore interface {
	Save(ctx context.Context, rec *LinkRecord) (*LinkRecord, error)
	FindByID(ctx context.Context, id int64) (*LinkRecord, error)
	FindByShortCode(ctx context.Context, code string) (*LinkRecord, error)
	FindByLongURL(ctx context.Context, longURL string) (*LinkRecord, error)
}

// CacheStore 是短码维度的有损镜像（TTL 兜底，随时可能消失）。
// 所有方法都可能失败；吞掉失败是引擎的职责，不是缓存实现的职责。
type CacheStore interface {
	Put(ctx context.Context, rec *LinkRecord) error
	GetByCode(ctx context.Context, code string) (*LinkRecord, error)
	GetByLongURL(ctx context.Context, longURL string) (*LinkRecord, error)
	Invalidate(ctx context.Context, code string) error
}

// ClickCounter 是跳转成功后的点击计数器（fire-and-forget）。
// 引擎本身不调用它：计数是 Resolve 调用方的副作用，只在非哨兵结果上触发。
type ClickCounter interface {
	Increment(ctx context.Context, code string)
}

// CodeFilter 是短码存在性过滤器（布隆过滤器）。
// MightExist 返回 false 表示短码从未出现过，自定义短码路径可以跳过唯一性预检；
// 真正的唯一性仍由数据库约束裁决，过滤器只省一次读。
type CodeFilter interface {
	Add(code string)
	MightExist(code string) bool
}

// cacheWriteTimeout 限制缓存写入耗时，避免缓存抖动拖慢创建/解析主路径。
const cacheWriteTimeout = 50 * time.Millisecond

// LinkEngine 编排短链的创建与解析：校验 -> 查重 -> 落库 -> 写缓存。
//
// 设计原因：
// - 协作者全部走构造注入（没有全局容器、没有运行时反射），测试时换成假实现即可
// - cache / filter 允许为 nil：缓存层整体不可用时服务照常工作，只是慢一点
type LinkEngine struct {
	store  DurableStore
	cache  CacheStore
	filter CodeFilter
	log    *slog.Logger
}

func NewLinkEngine(store DurableStore, cache CacheStore, filter CodeFilter, logger *slog.Logger) *LinkEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinkEngine{
		store:  store,
		cache:  cache,
		filter: filter,
		log:    logger,
	}
}

// CreateShortLink 创建一条短链。
//
// 两条互斥的赋码路径：
// - 自定义短码：唯一性预检（可被布隆过滤器跳过）后带码落库一次
// - 生成短码：先落库拿到权威 ID，EncodeBase62(ID) 推导短码，再落库补码
//
// 并发语义：同一个自定义短码的两次并发创建，至多一个成功；裁决完全交给
// 数据库唯一约束，应用层不加锁。预检只是提前失败的优化，不是正确性来源。
func (e *LinkEngine) CreateShortLink(ctx context.Context, longURL, customCode string, expiresAt *time.Time) (*LinkRecord, error) {
	normalized, err := NormalizeLongURL(longURL)
	if err != nil {
		return nil, err
	}

	// 重复提交检查：同一个长链接只允许一条记录（拒绝而不是合并）。
	existing, err := e.store.FindByLongURL(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("check duplicate url: %w", err)
	}
	if existing != nil {
		e.log.WarnContext(ctx, "create rejected: url already shortened", "code", existing.ShortCode)
		return nil, invalidInput("URL already shortened")
	}

	customCode = strings.TrimSpace(customCode)
	var saved *LinkRecord
	if customCode != "" {
		saved, err = e.createWithCustomCode(ctx, normalized, customCode, expiresAt)
	} else {
		saved, err = e.createWithGeneratedCode(ctx, normalized, expiresAt)
	}
	if err != nil {
		return nil, err
	}

	// 写缓存：尽力而为，失败只记日志，创建成功与否与缓存无关。
	e.cachePut(ctx, saved)
	if e.filter != nil {
		e.filter.Add(saved.ShortCode)
	}

	e.log.InfoContext(ctx, "short link created", "code", saved.ShortCode, "id", saved.ID)
	return saved, nil
}

func (e *LinkEngine) createWithCustomCode(ctx context.Context, longURL, code string, expiresAt *time.Time) (*LinkRecord, error) {
	if err := ValidateCustomCode(code); err != nil {
		return nil, err
	}

	// 预检：短码已占用就提前失败，不留半成品。
	// 布隆过滤器说“从未见过”时跳过这次读；误判只是多查一次，不影响正确性。
	if e.filter == nil || e.filter.MightExist(code) {
		existing, err := e.store.FindByShortCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("check custom code: %w", err)
		}
		if existing != nil {
			e.log.WarnContext(ctx, "custom code already in use", "code", code)
			return nil, &ConflictError{Code: code}
		}
	}

	saved, err := e.store.Save(ctx, newLinkRecord(longURL, code, expiresAt))
	if err != nil {
		// 预检通过但落库撞上唯一约束：并发竞争输了，翻译成与预检一致的冲突错误。
		if errors.Is(err, ErrCodeTaken) {
			e.log.WarnContext(ctx, "custom code lost creation race", "code", code)
			return nil, &ConflictError{Code: code}
		}
		if errors.Is(err, ErrDuplicateURL) {
			return nil, invalidInput("URL already shortened")
		}
		return nil, fmt.Errorf("save link: %w", err)
	}
	return saved, nil
}

func (e *LinkEngine) createWithGeneratedCode(ctx context.Context, longURL string, expiresAt *time.Time) (*LinkRecord, error) {
	// 先插入拿 ID。此时记录还没有短码。
	saved, err := e.store.Save(ctx, newLinkRecord(longURL, "", expiresAt))
	if err != nil {
		if errors.Is(err, ErrDuplicateURL) {
			return nil, invalidInput("URL already shortened")
		}
		return nil, fmt.Errorf("save link: %w", err)
	}

	// 由权威 ID 推导短码，第二次落库补码。
	// 正常情况下不可能撞码（ID 唯一），但第二次写仍可能失败（存储故障），
	// 这类失败原样上抛，不做掩盖。
	saved.ShortCode = EncodeBase62(uint64(saved.ID))
	saved, err = e.store.Save(ctx, saved)
	if err != nil {
		return nil, fmt.Errorf("attach generated code: %w", err)
	}
	return saved, nil
}

// Resolve 把短码解析为跳转目标，对外永不失败。
//
// 顺序：查缓存 -> 未命中则解码出 ID -> 查权威存储 -> 回填缓存。
// 任何“找不到”（短码不存在、解码失败、ID 越界）都返回 SentinelTarget；
// 存储故障同样收敛到哨兵（跳转路径不允许 500），但会记错误日志。
//
// 注意：绝不缓存“不存在”这个结论——缓存未命中永远回源数据库，
// 避免一次瞬时缺失被固化成永久不可见。
func (e *LinkEngine) Resolve(ctx context.Context, code string) string {
	if e.cache != nil {
		rec, err := e.cache.GetByCode(ctx, code)
		if err != nil {
			// 缓存故障按未命中处理，继续走数据库。
			e.log.WarnContext(ctx, "cache lookup failed", "code", code, "err", err)
		} else if rec != nil {
			return rec.LongURL
		}
	}

	id, err := decodeID(code)
	if err != nil {
		e.log.DebugContext(ctx, "code does not decode to an id", "code", code)
		return SentinelTarget
	}

	rec, err := e.store.FindByID(ctx, id)
	if err != nil {
		e.log.ErrorContext(ctx, "durable lookup failed", "code", code, "err", err)
		return SentinelTarget
	}
	if rec == nil {
		return SentinelTarget
	}

	e.cachePut(ctx, rec)
	return rec.LongURL
}

// cachePut 尽力写缓存：短超时、只记日志、永不影响主流程结果。
func (e *LinkEngine) cachePut(ctx context.Context, rec *LinkRecord) {
	if e.cache == nil || rec.ShortCode == "" {
		return
	}
	cacheCtx, cancel := context.WithTimeout(ctx, cacheWriteTimeout)
	defer cancel()
	if err := e.cache.Put(cacheCtx, rec); err != nil {
		e.log.WarnContext(ctx, "cache write failed", "code", rec.ShortCode, "err", err)
	}
}
