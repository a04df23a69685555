// Package config は環境変数からサービス設定を読み込む。
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config はspotisearchサービスの設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string `env:"PORT" envDefault:"8081"`
	// DatabasePath はSQLiteデータベースファイルのパス。
	DatabasePath string `env:"DATABASE_PATH" envDefault:"/data/spotisearch.db"`

	// SpotifyClientID はSpotifyアプリケーションのクライアントID。
	SpotifyClientID string `env:"SPOTIFY_CLIENT_ID"`
	// SpotifyClientSecret はSpotifyアプリケーションのクライアントシークレット。
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET"`
	// SpotifyCallbackURL はOAuth2コールバックURL。Spotify側の登録値と一致させること。
	SpotifyCallbackURL string `env:"SPOTIFY_CALLBACK_URL" envDefault:"http://localhost:8081/users/spotify/redirect"`
	// SpotifyAccountsURL は認可・トークンエンドポイントのホスト。
	SpotifyAccountsURL string `env:"SPOTIFY_ACCOUNTS_URL" envDefault:"https://accounts.spotify.com"`
	// SpotifyAPIURL はWeb APIのホスト。
	SpotifyAPIURL string `env:"SPOTIFY_API_URL" envDefault:"https://api.spotify.com"`

	// SessionSecret はセッションCookieの署名・暗号化鍵の元になる秘密値。
	SessionSecret string `env:"SESSION_SECRET" envDefault:"dev-session-secret"`
	// StateSecret はOAuth2 stateパラメータ（JWT）の署名鍵。
	StateSecret string `env:"STATE_SECRET" envDefault:"dev-state-secret"`

	// AllowedOrigins はCORSで許可するオリジン。"*" は全オリジンを許可する。
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// ProfileRedirectURL はログイン成功時のリダイレクト先。
	ProfileRedirectURL string `env:"PROFILE_REDIRECT_URL" envDefault:"/profile"`
	// FailureRedirectURL はログイン失敗時とログアウト時のリダイレクト先。
	FailureRedirectURL string `env:"FAILURE_REDIRECT_URL" envDefault:"/"`

	// SearchPageSize は検索APIに渡すlimit値。
	SearchPageSize int `env:"SEARCH_PAGE_SIZE" envDefault:"10"`
	// Debug はセッション処理の詳細ログを有効にする。
	Debug bool `env:"DEBUG" envDefault:"false"`
}

// Load は環境変数から設定を読み込む。
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}
	cfg.AllowedOrigins = trimCSV(cfg.AllowedOrigins)
	if cfg.SearchPageSize <= 0 || cfg.SearchPageSize > 50 {
		return Config{}, fmt.Errorf("SEARCH_PAGE_SIZEは1から50の範囲で指定してください: %d", cfg.SearchPageSize)
	}
	return cfg, nil
}

// SpotifyConfigured はOAuth2クライアントが設定済みかどうかを返す。
func (c Config) SpotifyConfigured() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

// trimCSV はカンマ区切りで分割された値から空要素を除去する。
func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
