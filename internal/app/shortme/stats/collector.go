package stats

import "time"

// ClickEvent 是一次成功跳转产生的明细事件（Redis 计数器之外的完整记录）。
type ClickEvent struct {
	Code      string
	ClickedAt time.Time
	IP        string
	UserAgent string
	Referer   string
}

// Collector 是事件收集器的接口：进程内 channel 或 Kafka 二选一（配置切换）。
// Collect 必须是非阻塞的——跳转路径不等统计。
type Collector interface {
	Collect(event ClickEvent)
	Close()
}

// ChannelCollector 用带缓冲的 channel 收集事件，满了直接丢弃。
// 丢事件是可接受的：明细统计是 best-effort，权威计数在 Redis 计数器里。
type ChannelCollector struct {
	ch     chan ClickEvent
	closed bool
}

func NewChannelCollector(bufferSize int) *ChannelCollector {
	return &ChannelCollector{
		ch: make(chan ClickEvent, bufferSize),
	}
}

func (c *ChannelCollector) Collect(event ClickEvent) {
	if c.closed {
		return
	}
	select {
	case c.ch <- event:
	default:
		// 缓冲满，丢弃
	}
}

// Events 暴露给消费侧的只读通道。
func (c *ChannelCollector) Events() <-chan ClickEvent {
	return c.ch
}

func (c *ChannelCollector) Close() {
	c.closed = true
	close(c.ch)
}
