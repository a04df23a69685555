package user

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nao1215/spotisearch/pkg/database"
)

// newTestStore はインメモリSQLiteを使うテスト用のStoreを生成する。
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("インメモリDB接続に失敗: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s, err := NewStore(context.Background(), db)
	if err != nil {
		t.Fatalf("NewStore()でエラーが発生: %v", err)
	}
	return s
}

// TestCreate はユーザー作成を検証する。
func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("作成したユーザーをIDとSpotify IDで取得できること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		ctx := context.Background()

		created, err := s.Create(ctx, CreateParams{
			Name:      "テストユーザー",
			SpotifyID: "spotify-123",
			Email:     "test@example.com",
			ThumbURL:  "https://i.scdn.co/image/abc",
		})
		if err != nil {
			t.Fatalf("Create()でエラーが発生: %v", err)
		}
		if created.ID == "" {
			t.Fatal("IDが採番されていない")
		}

		byID, err := s.FindByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("FindByID()でエラーが発生: %v", err)
		}
		if byID.Name != "テストユーザー" {
			t.Errorf("Name = %q, want %q", byID.Name, "テストユーザー")
		}
		if byID.Email != "test@example.com" {
			t.Errorf("Email = %q, want %q", byID.Email, "test@example.com")
		}
		if byID.ThumbURL != "https://i.scdn.co/image/abc" {
			t.Errorf("ThumbURL = %q, want %q", byID.ThumbURL, "https://i.scdn.co/image/abc")
		}
		if !byID.Date.Equal(created.Date) {
			t.Errorf("Date = %v, want %v", byID.Date, created.Date)
		}

		bySpotify, err := s.FindBySpotifyID(ctx, "spotify-123")
		if err != nil {
			t.Fatalf("FindBySpotifyID()でエラーが発生: %v", err)
		}
		if bySpotify.ID != created.ID {
			t.Errorf("ID = %q, want %q", bySpotify.ID, created.ID)
		}
	})

	t.Run("名前が空の場合はErrInvalidUserが返ること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		_, err := s.Create(context.Background(), CreateParams{SpotifyID: "spotify-1"})
		if !errors.Is(err, ErrInvalidUser) {
			t.Errorf("err = %v, want ErrInvalidUser", err)
		}
	})

	t.Run("同じSpotify IDで2回作成するとエラーになること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		ctx := context.Background()
		params := CreateParams{Name: "a", SpotifyID: "dup"}
		if _, err := s.Create(ctx, params); err != nil {
			t.Fatalf("1回目のCreate()でエラーが発生: %v", err)
		}
		if _, err := s.Create(ctx, params); !errors.Is(err, ErrDuplicateSpotifyID) {
			t.Fatalf("err = %v, want ErrDuplicateSpotifyID", err)
		}
	})
}

// TestFind はユーザー取得を検証する。
func TestFind(t *testing.T) {
	t.Parallel()

	t.Run("存在しないIDではErrNotFoundが返ること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		if _, err := s.FindByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("存在しないSpotify IDではErrNotFoundが返ること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		if _, err := s.FindBySpotifyID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

// TestFindOrCreate はログイン時のユーザー検索・作成を検証する。
func TestFindOrCreate(t *testing.T) {
	t.Parallel()

	t.Run("初回ログインではプロフィールからユーザーが作成されること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		u, created, err := s.FindOrCreate(context.Background(), Profile{
			ID:          "spotify-new",
			DisplayName: "新規ユーザー",
			Emails:      []string{"first@example.com", "second@example.com"},
			Photos:      []string{"https://img/1", "https://img/2"},
		})
		if err != nil {
			t.Fatalf("FindOrCreate()でエラーが発生: %v", err)
		}
		if !created {
			t.Error("created = false, want true")
		}
		if u.Name != "新規ユーザー" {
			t.Errorf("Name = %q, want %q", u.Name, "新規ユーザー")
		}
		if u.Email != "first@example.com" {
			t.Errorf("Email = %q, want %q", u.Email, "first@example.com")
		}
		if u.ThumbURL != "https://img/1" {
			t.Errorf("ThumbURL = %q, want %q", u.ThumbURL, "https://img/1")
		}
	})

	t.Run("2回目のログインでは既存ユーザーが返り最終ログイン日時が更新されること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return base }

		first, _, err := s.FindOrCreate(ctx, Profile{ID: "spotify-1", DisplayName: "ユーザー"})
		if err != nil {
			t.Fatalf("1回目のFindOrCreate()でエラーが発生: %v", err)
		}

		s.now = func() time.Time { return base.Add(time.Hour) }
		second, created, err := s.FindOrCreate(ctx, Profile{ID: "spotify-1", DisplayName: "名前変更"})
		if err != nil {
			t.Fatalf("2回目のFindOrCreate()でエラーが発生: %v", err)
		}
		if created {
			t.Error("created = true, want false")
		}
		if second.ID != first.ID {
			t.Errorf("ID = %q, want %q", second.ID, first.ID)
		}
		// 既存ユーザーのプロフィールは上書きしない
		if second.Name != "ユーザー" {
			t.Errorf("Name = %q, want %q", second.Name, "ユーザー")
		}
		if !second.LastLoginAt.Equal(base.Add(time.Hour)) {
			t.Errorf("LastLoginAt = %v, want %v", second.LastLoginAt, base.Add(time.Hour))
		}

		stored, err := s.FindByID(ctx, first.ID)
		if err != nil {
			t.Fatalf("FindByID()でエラーが発生: %v", err)
		}
		if !stored.LastLoginAt.Equal(base.Add(time.Hour)) {
			t.Errorf("保存されたLastLoginAt = %v, want %v", stored.LastLoginAt, base.Add(time.Hour))
		}
		if !stored.Date.Equal(base) {
			t.Errorf("保存されたDate = %v, want %v", stored.Date, base)
		}
	})

	t.Run("表示名が無い場合はSpotify IDが名前になること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		u, _, err := s.FindOrCreate(context.Background(), Profile{ID: "anonymous-42"})
		if err != nil {
			t.Fatalf("FindOrCreate()でエラーが発生: %v", err)
		}
		if u.Name != "anonymous-42" {
			t.Errorf("Name = %q, want %q", u.Name, "anonymous-42")
		}
		if u.Email != "" || u.ThumbURL != "" {
			t.Errorf("EmailとThumbURLは空であるべき: %+v", u)
		}
	})

	t.Run("Spotify IDが空の場合はErrInvalidUserが返ること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		if _, _, err := s.FindOrCreate(context.Background(), Profile{DisplayName: "x"}); !errors.Is(err, ErrInvalidUser) {
			t.Errorf("err = %v, want ErrInvalidUser", err)
		}
	})
}

// TestFindOrCreateConcurrent は同じユーザーの初回ログインが重なった場合を検証する。
func TestFindOrCreateConcurrent(t *testing.T) {
	t.Parallel()

	db, err := database.Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("Open()でエラーが発生: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	s, err := NewStore(ctx, db)
	if err != nil {
		t.Fatalf("NewStore()でエラーが発生: %v", err)
	}

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[string]bool{}
		created int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, c, err := s.FindOrCreate(ctx, Profile{ID: "spotify-race", DisplayName: "Race"})
			if err != nil {
				t.Errorf("FindOrCreate()でエラーが発生: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ids[u.ID] = true
			if c {
				created++
			}
		}()
	}
	wg.Wait()

	if len(ids) != 1 {
		t.Errorf("ユーザーIDが%d種類になった, want 1", len(ids))
	}
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
}

// TestRevokeSessions はセッションナンスの更新を検証する。
func TestRevokeSessions(t *testing.T) {
	t.Parallel()

	t.Run("ナンスが新しい値に更新されること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		ctx := context.Background()
		u, err := s.Create(ctx, CreateParams{Name: "a", SpotifyID: "s-1"})
		if err != nil {
			t.Fatalf("Create()でエラーが発生: %v", err)
		}
		if u.SessionNonce == "" {
			t.Fatal("作成直後のSessionNonceが空")
		}

		nonce, err := s.RevokeSessions(ctx, u.ID)
		if err != nil {
			t.Fatalf("RevokeSessions()でエラーが発生: %v", err)
		}
		if nonce == u.SessionNonce {
			t.Error("ナンスが更新されていない")
		}
		found, err := s.FindByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("FindByID()でエラーが発生: %v", err)
		}
		if found.SessionNonce != nonce {
			t.Errorf("SessionNonce = %q, want %q", found.SessionNonce, nonce)
		}
	})

	t.Run("存在しないユーザーではErrNotFoundが返ること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		if _, err := s.RevokeSessions(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

// TestUpdateLastLogin は最終ログイン日時の更新を検証する。
func TestUpdateLastLogin(t *testing.T) {
	t.Parallel()

	t.Run("存在しないユーザーではErrNotFoundが返ること", func(t *testing.T) {
		t.Parallel()

		s := newTestStore(t)
		if _, err := s.UpdateLastLogin(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
