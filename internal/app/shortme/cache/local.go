package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"

	"shortme.local/internal/app/shortme"
)

// LocalCache 是基于 ristretto 的 L1 进程内缓存，挡掉热点短码对 Redis 的反复访问。
// TTL 比 L2 短：多实例部署时，本地副本最多落后这么久。
type LocalCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewLocalCache 创建本地缓存。
// maxItems: 最大条目数（按条目计费，cost=1）
// maxCost: ristretto 的预算上限，这里即条目数上限
func NewLocalCache(maxItems int64) (*LocalCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxItems * 10, // 计数器建议为条目数的 10 倍
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &LocalCache{
		cache: cache,
		ttl:   5 * time.Minute,
	}, nil
}

func (l *LocalCache) Get(code string) (*shortme.LinkRecord, bool) {
	if v, ok := l.cache.Get(code); ok {
		return v.(*shortme.LinkRecord), true
	}
	return nil, false
}

func (l *LocalCache) Set(rec *shortme.LinkRecord) {
	l.cache.SetWithTTL(rec.ShortCode, rec, 1, l.ttl)
}

func (l *LocalCache) Del(code string) {
	l.cache.Del(code)
}

// Wait 等待异步写入对 Get 可见（ristretto 的写是缓冲的），测试用。
func (l *LocalCache) Wait() {
	l.cache.Wait()
}

func (l *LocalCache) Close() {
	l.cache.Close()
}
