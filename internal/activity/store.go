// Package activity はユーザー操作のイベントをSQLiteに記録する。
package activity

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/spotisearch/pkg/event"
	"github.com/nao1215/spotisearch/pkg/migration"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// Store はイベントの追記と参照を行う。
type Store struct {
	db *sql.DB
}

// NewStore はマイグレーションを適用してStoreを生成する。
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := migration.Run(ctx, db, migrations, "migrations", "activity"); err != nil {
		return nil, fmt.Errorf("イベントスキーマの初期化に失敗: %w", err)
	}
	return &Store{db: db}, nil
}

// Append はイベントを追記する。
// VersionはAggregateごとの最新バージョンに1を足した値を採番し、evに書き戻す。
func (s *Store) Append(ctx context.Context, ev *event.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var latest int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM events WHERE aggregate_id = ?`, ev.AggregateID,
	).Scan(&latest); err != nil {
		return fmt.Errorf("最新バージョンの取得に失敗: %w", err)
	}

	version := latest + 1
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, version, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.AggregateID, string(ev.AggregateType), string(ev.EventType), string(ev.Data),
		version, ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("イベントの追記に失敗: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}
	ev.Version = version
	return nil
}

// ListByAggregate はAggregateのイベントをバージョン順に返す。
// limitが0以下の場合は全件を返す。
func (s *Store) ListByAggregate(ctx context.Context, aggregateID string, limit int) ([]event.Event, error) {
	query := `SELECT id, aggregate_id, aggregate_type, event_type, data, version, created_at
		FROM events WHERE aggregate_id = ? ORDER BY version`
	args := []any{aggregateID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("イベントの取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []event.Event{}
	for rows.Next() {
		var (
			ev                       event.Event
			aggregateType, eventType string
			data, createdAt          string
		)
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &aggregateType, &eventType, &data, &ev.Version, &createdAt); err != nil {
			return nil, fmt.Errorf("イベントの読み取りに失敗: %w", err)
		}
		ev.AggregateType = event.AggregateType(aggregateType)
		ev.EventType = event.Type(eventType)
		ev.Data = json.RawMessage(data)
		if ev.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("created_atの解析に失敗: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
