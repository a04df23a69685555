package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"

	"github.com/nao1215/spotisearch/internal/activity"
	"github.com/nao1215/spotisearch/internal/config"
	"github.com/nao1215/spotisearch/internal/session"
	"github.com/nao1215/spotisearch/internal/spotify"
	"github.com/nao1215/spotisearch/internal/user"
	"github.com/nao1215/spotisearch/pkg/database"
	"github.com/nao1215/spotisearch/pkg/middleware"
)

// authenticator はOAuth2ログインを行うプロバイダ。*spotify.Strategyが実装する。
type authenticator interface {
	AuthCodeURL(state string) string
	Authenticate(ctx context.Context, code string) (user.Profile, spotify.Token, error)
	Refresh(ctx context.Context, refreshToken string) (spotify.Token, error)
}

// searcher は検索APIのクライアント。*spotify.Clientが実装する。
type searcher interface {
	Search(ctx context.Context, accessToken, term string) (*spotify.Response, error)
}

// Server はspotisearchのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサービス設定。
	cfg config.Config
	// db はSQLiteデータベース接続。
	db *sql.DB
	// users はユーザーのリポジトリ。
	users *user.Store
	// activity はユーザー操作のイベントストア。
	activity *activity.Store
	// sessions はログイン中ユーザーのキャッシュ。
	sessions *session.Cache
	// auth はSpotifyのOAuth2ログイン。
	auth authenticator
	// searcher はSpotifyの検索クライアント。
	searcher searcher
	// states はOAuth2 stateパラメータの発行・検証。
	states *spotify.StateSigner
	// cookies はセッションCookieの署名・暗号化。
	cookies *securecookie.SecureCookie
	// now は現在時刻を返す。テストで差し替える。
	now func() time.Time
}

// NewServer は設定からサーバーを生成する。
// SQLiteデータベースを開き、各リポジトリのマイグレーションを適用する。
func NewServer(ctx context.Context, cfg config.Config) (*Server, error) {
	sqlDB, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	users, err := user.NewStore(ctx, sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	events, err := activity.NewStore(ctx, sqlDB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	if !cfg.SpotifyConfigured() {
		log.Printf("SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRETが未設定のためログインは利用できません")
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:   router,
		cfg:      cfg,
		db:       sqlDB,
		users:    users,
		activity: events,
		sessions: session.NewCache(),
		auth: spotify.NewStrategy(spotify.StrategyConfig{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			CallbackURL:  cfg.SpotifyCallbackURL,
			AccountsURL:  cfg.SpotifyAccountsURL,
			APIURL:       cfg.SpotifyAPIURL,
		}),
		searcher: spotify.NewClient(cfg.SpotifyAPIURL, cfg.SearchPageSize),
		states:   spotify.NewStateSigner(cfg.StateSecret),
		cookies:  newCookieCodec(cfg.SessionSecret),
		now:      time.Now,
	}
	s.setupRoutes()
	return s, nil
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるとグレースフルに停止する。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーの停止に失敗: %w", err)
	}
	return nil
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	requireLogin := middleware.RequireLogin(s.sessions, middleware.QueryID, s.userIDFromCookie)

	users := s.router.Group("/users")
	{
		// Spotifyログイン（認証不要）
		users.GET("/spotify", s.handleLogin())
		users.GET("/spotify/redirect", s.handleCallback())
		// ログイン中ユーザーのみ
		users.GET("/info", requireLogin, s.handleInfo())
		users.GET("/logout", requireLogin, s.handleLogout())
		users.GET("/events", requireLogin, s.handleEvents())
	}

	s.router.POST("/spotify/search", requireLogin, s.handleSearch())

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "spotisearch"})
	})
}
