package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shortme.local/internal/app/shortme"
)

// pgUniqueViolation 是 Postgres 唯一约束冲突的 SQLSTATE。
const pgUniqueViolation = "23505"

// LinksRepo 实现 shortme.DurableStore，权威存储在 Postgres。
//
// 错误翻译只发生在这一层：23505 按约束名翻译成 shortme.ErrCodeTaken /
// shortme.ErrDuplicateURL，ErrNoRows 翻译成 (nil, nil)；其余错误原样上抛。
type LinksRepo struct {
	db *pgxpool.Pool
}

func NewLinksRepo(db *pgxpool.Pool) *LinksRepo {
	return &LinksRepo{db: db}
}

var _ shortme.DurableStore = (*LinksRepo)(nil)

// Save 在 ID==0 时插入新记录并回填分配的 ID；否则按 ID 更新短码。
// 生成短码路径会对同一条记录调用两次：先插入拿 ID，再补短码。
// 短码列用 NULLIF 写入：空短码存 NULL，避免两条“还没有码”的记录互相撞唯一索引。
func (r *LinksRepo) Save(ctx context.Context, rec *shortme.LinkRecord) (*shortme.LinkRecord, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if rec.ID == 0 {
		err := r.db.QueryRow(dbctx,
			`INSERT INTO links (short_code, long_url, created_at, expires_at, status)
			 VALUES (NULLIF($1,''), $2, $3, $4, $5)
			 RETURNING id`,
			rec.ShortCode, rec.LongURL, rec.CreatedAt, rec.ExpiresAt, rec.Status,
		).Scan(&rec.ID)
		if err != nil {
			return nil, translateUnique(err)
		}
		return rec, nil
	}

	tag, err := r.db.Exec(dbctx,
		`UPDATE links SET short_code = NULLIF($1,'') WHERE id = $2`,
		rec.ShortCode, rec.ID,
	)
	if err != nil {
		return nil, translateUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("link %d vanished during code assignment", rec.ID)
	}
	return rec, nil
}

func (r *LinksRepo) FindByID(ctx context.Context, id int64) (*shortme.LinkRecord, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *LinksRepo) FindByShortCode(ctx context.Context, code string) (*shortme.LinkRecord, error) {
	return r.findOne(ctx, `WHERE short_code = $1`, code)
}

func (r *LinksRepo) FindByLongURL(ctx context.Context, longURL string) (*shortme.LinkRecord, error) {
	return r.findOne(ctx, `WHERE long_url = $1`, longURL)
}

func (r *LinksRepo) findOne(ctx context.Context, where string, arg any) (*shortme.LinkRecord, error) {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	var rec shortme.LinkRecord
	err := r.db.QueryRow(dbctx,
		`SELECT id, COALESCE(short_code,''), long_url, created_at, expires_at, status FROM links `+where,
		arg,
	).Scan(&rec.ID, &rec.ShortCode, &rec.LongURL, &rec.CreatedAt, &rec.ExpiresAt, &rec.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// SeedCodeFilter 把库里已有的短码灌进布隆过滤器（启动时调用一次）。
func (r *LinksRepo) SeedCodeFilter(ctx context.Context, add func(code string)) (int, error) {
	dbctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := r.db.Query(dbctx, `SELECT short_code FROM links WHERE short_code IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return n, err
		}
		add(code)
		n++
	}
	return n, rows.Err()
}

// translateUnique 把 23505 按约束名翻译成核心的信号错误。
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		name := strings.ToLower(pgErr.ConstraintName)
		if strings.Contains(name, "short_code") {
			return shortme.ErrCodeTaken
		}
		if strings.Contains(name, "url") {
			return shortme.ErrDuplicateURL
		}
	}
	return err
}
