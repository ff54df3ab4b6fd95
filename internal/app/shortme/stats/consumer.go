package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Consumer 消费 ChannelCollector 的事件，攒批写入 Postgres：
// 明细进 click_stats 表，同时把 links.click_count 累加上去。
type Consumer struct {
	db        *pgxpool.Pool
	collector *ChannelCollector
	batchSize int
	interval  time.Duration
}

func NewConsumer(db *pgxpool.Pool, collector *ChannelCollector) *Consumer {
	return &Consumer{
		db:        db,
		collector: collector,
		batchSize: 100,
		interval:  time.Second, // 攒不满一批时的最大等待
	}
}

// Run 阻塞消费直到 ctx 取消或收集器关闭，退出前把手里的批冲掉。
func (c *Consumer) Run(ctx context.Context) {
	batch := make([]ClickEvent, 0, c.batchSize)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flush(c.db, batch)
			return
		case event, ok := <-c.collector.Events():
			if !ok {
				flush(c.db, batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				flush(c.db, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				flush(c.db, batch)
				batch = batch[:0]
			}
		}
	}
}

// flush 把一批事件写库。单条失败跳过，不影响同批其他事件。
func flush(db *pgxpool.Pool, batch []ClickEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		slog.Error("click stats: begin tx failed", "err", err)
		return
	}
	defer tx.Rollback(context.Background())

	for _, e := range batch {
		if _, err := tx.Exec(ctx,
			`INSERT INTO click_stats (code, clicked_at, ip, user_agent, referer) VALUES ($1,$2,$3,$4,$5)`,
			e.Code, e.ClickedAt, e.IP, e.UserAgent, e.Referer); err != nil {
			slog.Error("click stats: insert failed", "err", err, "code", e.Code)
			continue
		}
		if _, err := tx.Exec(ctx,
			`UPDATE links SET click_count = click_count + 1 WHERE short_code = $1`,
			e.Code); err != nil {
			slog.Error("click stats: update count failed", "err", err, "code", e.Code)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Error("click stats: commit failed", "err", err)
	} else {
		slog.Debug("click stats: flushed", "count", len(batch))
	}
}
