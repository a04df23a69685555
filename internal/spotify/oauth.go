package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/nao1215/spotisearch/internal/user"
	"github.com/nao1215/spotisearch/pkg/httpclient"
)

// Scopes はログイン時に要求するスコープ。メールアドレスとプロフィールの参照に必要。
var Scopes = []string{"user-read-email", "user-read-private"}

// ErrMissingCode は認可コードが無いコールバックのエラー。
var ErrMissingCode = errors.New("spotify: 認可コードがありません")

// StrategyConfig はStrategyの設定。
type StrategyConfig struct {
	// ClientID はSpotifyアプリケーションのクライアントID。
	ClientID string
	// ClientSecret はSpotifyアプリケーションのクライアントシークレット。
	ClientSecret string
	// CallbackURL はOAuth2コールバックURL。
	CallbackURL string
	// AccountsURL は認可・トークンエンドポイントのホスト。
	AccountsURL string
	// APIURL はWeb APIのホスト。
	APIURL string
}

// Strategy はSpotifyのOAuth2認可コードフローを扱う。
// プロトコル処理はgolang.org/x/oauth2に任せ、プロフィール取得だけを行う。
type Strategy struct {
	oauth *oauth2.Config
	api   *httpclient.Client
}

// NewStrategy はStrategyを生成する。
func NewStrategy(cfg StrategyConfig) *Strategy {
	accounts := strings.TrimRight(cfg.AccountsURL, "/")
	return &Strategy{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   accounts + "/authorize",
				TokenURL:  accounts + "/api/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		api: httpclient.New(strings.TrimRight(cfg.APIURL, "/")),
	}
}

// AuthCodeURL はstateを付けた認可画面のURLを返す。
func (s *Strategy) AuthCodeURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// Token はトークンエンドポイントから受け取ったトークン。
type Token struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn は発行時点での有効秒数。
	ExpiresIn int64
	// Expiry はアクセストークンの有効期限。
	Expiry time.Time
}

func newToken(t *oauth2.Token, now time.Time) Token {
	tok := Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		Expiry:       t.Expiry,
	}
	// expires_inを返さないサーバーでは有効期限から逆算する
	if tok.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		tok.ExpiresIn = int64(tok.Expiry.Sub(now).Round(time.Second) / time.Second)
	}
	return tok
}

// rawProfile は GET /v1/me のレスポンス。
type rawProfile struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Images      []rawImage `json:"images"`
}

// Authenticate は認可コードをトークンに交換し、ログインユーザーのプロフィールを取得する。
func (s *Strategy) Authenticate(ctx context.Context, code string) (user.Profile, Token, error) {
	if code == "" {
		return user.Profile{}, Token{}, ErrMissingCode
	}

	t, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return user.Profile{}, Token{}, fmt.Errorf("認可コードの交換に失敗: %w", err)
	}
	token := newToken(t, time.Now())

	var raw rawProfile
	if err := s.api.GetJSON(httpclient.WithAccessToken(ctx, token.AccessToken), "/v1/me", nil, &raw); err != nil {
		return user.Profile{}, Token{}, fmt.Errorf("プロフィールの取得に失敗: %w", err)
	}
	if raw.ID == "" {
		return user.Profile{}, Token{}, errors.New("spotify: プロフィールにIDが含まれていません")
	}

	profile := user.Profile{
		ID:          raw.ID,
		DisplayName: raw.DisplayName,
	}
	if raw.Email != "" {
		profile.Emails = []string{raw.Email}
	}
	for _, img := range raw.Images {
		if img.URL != "" {
			profile.Photos = append(profile.Photos, img.URL)
		}
	}
	return profile, token, nil
}

// Refresh はリフレッシュトークンで新しいアクセストークンを取得する。
// 新しいリフレッシュトークンが返らなかった場合は元のものを引き継ぐ。
func (s *Strategy) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	if refreshToken == "" {
		return Token{}, errors.New("spotify: リフレッシュトークンがありません")
	}
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Unix(1, 0)}
	t, err := s.oauth.TokenSource(ctx, expired).Token()
	if err != nil {
		return Token{}, fmt.Errorf("アクセストークンの更新に失敗: %w", err)
	}
	token := newToken(t, time.Now())
	if token.RefreshToken == "" {
		token.RefreshToken = refreshToken
	}
	return token, nil
}
