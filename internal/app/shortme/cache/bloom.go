package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// CodeFilter 是短码存在性的布隆过滤器，实现 shortme.CodeFilter。
//
// 用在创建路径：自定义短码预检前先问过滤器，“一定没见过”就省掉一次
// SELECT；误判（说可能存在但其实不存在）只是多查一次，唯一约束仍是
// 最终裁决。启动时用数据库里已有的短码灌一遍（repo.SeedCodeFilter）。
type CodeFilter struct {
	filter *bloom.BloomFilter
	mu     sync.RWMutex
}

// NewCodeFilter 创建过滤器。
// expectedItems: 预期短码数量
// falsePositiveRate: 误判率（1% 左右即可）
func NewCodeFilter(expectedItems uint, falsePositiveRate float64) *CodeFilter {
	return &CodeFilter{
		filter: bloom.NewWithEstimates(expectedItems, falsePositiveRate),
	}
}

func (f *CodeFilter) Add(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(code)
}

// MightExist 返回 false 表示短码一定没出现过；返回 true 只表示“可能”。
func (f *CodeFilter) MightExist(code string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(code)
}

// Count 返回已加入的短码数量估算（观测用）。
func (f *CodeFilter) Count() uint32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.ApproximatedSize()
}
