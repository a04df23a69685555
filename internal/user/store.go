package user

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nao1215/spotisearch/pkg/migration"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// Store はSQLiteに保存されたユーザーを扱うリポジトリ。
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore はマイグレーションを適用してStoreを生成する。
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if err := migration.Run(ctx, db, migrations, "migrations", "user"); err != nil {
		return nil, fmt.Errorf("ユーザースキーマの初期化に失敗: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

const selectColumns = `SELECT id, name, spotify_id, email, thumb_url, created_at, last_login_at, session_nonce FROM spotify_users`

// FindByID はIDでユーザーを取得する。
func (s *Store) FindByID(ctx context.Context, id string) (SpotifyUser, error) {
	return s.findOne(ctx, selectColumns+` WHERE id = ?`, id)
}

// FindBySpotifyID はSpotify IDでユーザーを取得する。
func (s *Store) FindBySpotifyID(ctx context.Context, spotifyID string) (SpotifyUser, error) {
	return s.findOne(ctx, selectColumns+` WHERE spotify_id = ?`, spotifyID)
}

func (s *Store) findOne(ctx context.Context, query string, arg string) (SpotifyUser, error) {
	var (
		u                    SpotifyUser
		createdAt, lastLogin string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Name, &u.SpotifyID, &u.Email, &u.ThumbURL, &createdAt, &lastLogin, &u.SessionNonce,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SpotifyUser{}, ErrNotFound
	}
	if err != nil {
		return SpotifyUser{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	if u.Date, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return SpotifyUser{}, fmt.Errorf("created_atの解析に失敗: %w", err)
	}
	if u.LastLoginAt, err = time.Parse(time.RFC3339Nano, lastLogin); err != nil {
		return SpotifyUser{}, fmt.Errorf("last_login_atの解析に失敗: %w", err)
	}
	return u, nil
}

// Create は新しいユーザーを作成する。
func (s *Store) Create(ctx context.Context, params CreateParams) (SpotifyUser, error) {
	if params.Name == "" || params.SpotifyID == "" {
		return SpotifyUser{}, ErrInvalidUser
	}

	now := s.now().UTC()
	u := SpotifyUser{
		ID:          uuid.New().String(),
		Name:        params.Name,
		SpotifyID:   params.SpotifyID,
		Email:       params.Email,
		ThumbURL:    params.ThumbURL,
		Date:         now,
		LastLoginAt:  now,
		SessionNonce: uuid.New().String(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO spotify_users (id, name, spotify_id, email, thumb_url, created_at, last_login_at, session_nonce)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.SpotifyID, u.Email, u.ThumbURL,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano), u.SessionNonce,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return SpotifyUser{}, ErrDuplicateSpotifyID
		}
		return SpotifyUser{}, fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return u, nil
}

// isUniqueViolation はerrがUNIQUE制約違反かどうかを返す。
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
}

// RevokeSessions はセッションナンスを更新し、発行済みのセッションCookieを無効にする。
// 更新後のナンスを返す。
func (s *Store) RevokeSessions(ctx context.Context, id string) (string, error) {
	nonce := uuid.New().String()
	res, err := s.db.ExecContext(ctx,
		`UPDATE spotify_users SET session_nonce = ? WHERE id = ?`, nonce, id,
	)
	if err != nil {
		return "", fmt.Errorf("セッションナンスの更新に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return "", ErrNotFound
	}
	return nonce, nil
}

// UpdateLastLogin は最終ログイン日時を現在時刻に更新する。
func (s *Store) UpdateLastLogin(ctx context.Context, id string) (time.Time, error) {
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE spotify_users SET last_login_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("最終ログイン日時の更新に失敗: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return time.Time{}, fmt.Errorf("更新件数の取得に失敗: %w", err)
	}
	if n == 0 {
		return time.Time{}, ErrNotFound
	}
	return now, nil
}

// FindOrCreate はSpotify IDでユーザーを検索し、存在しなければプロフィールから作成する。
// 既存ユーザーの場合は最終ログイン日時を更新する。createdは新規作成した場合にtrue。
func (s *Store) FindOrCreate(ctx context.Context, p Profile) (u SpotifyUser, created bool, err error) {
	if p.ID == "" {
		return SpotifyUser{}, false, ErrInvalidUser
	}

	u, err = s.FindBySpotifyID(ctx, p.ID)
	switch {
	case err == nil:
		return s.touch(ctx, u)
	case !errors.Is(err, ErrNotFound):
		return SpotifyUser{}, false, err
	}

	u, err = s.Create(ctx, paramsFromProfile(p))
	if errors.Is(err, ErrDuplicateSpotifyID) {
		// 同じユーザーの初回ログインが並行して先に作成した
		if u, err = s.FindBySpotifyID(ctx, p.ID); err != nil {
			return SpotifyUser{}, false, err
		}
		return s.touch(ctx, u)
	}
	if err != nil {
		return SpotifyUser{}, false, err
	}
	return u, true, nil
}

// touch は既存ユーザーの最終ログイン日時を更新して返す。
func (s *Store) touch(ctx context.Context, u SpotifyUser) (SpotifyUser, bool, error) {
	var err error
	if u.LastLoginAt, err = s.UpdateLastLogin(ctx, u.ID); err != nil {
		return SpotifyUser{}, false, err
	}
	return u, false, nil
}
