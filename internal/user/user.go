package user

import (
	"errors"
	"time"
)

var (
	// ErrNotFound はユーザーが見つからない場合のエラー。
	ErrNotFound = errors.New("user: ユーザーが見つかりません")
	// ErrInvalidUser は必須項目が欠けている場合のエラー。
	ErrInvalidUser = errors.New("user: 名前とSpotify IDは必須です")
	// ErrDuplicateSpotifyID は同じSpotify IDのユーザーが既に存在する場合のエラー。
	ErrDuplicateSpotifyID = errors.New("user: Spotify IDが重複しています")
)

// SpotifyUser はSpotifyでログインしたユーザー。
type SpotifyUser struct {
	// ID はユーザーの一意識別子。セッションキャッシュのキーとしても使う。
	ID string `json:"id"`
	// Name は表示名。
	Name string `json:"name"`
	// SpotifyID はSpotify上のユーザーID。
	SpotifyID string `json:"spotifyId"`
	// Email はメールアドレス。取得できなかった場合は空。
	Email string `json:"email,omitempty"`
	// ThumbURL はプロフィール画像のURL。取得できなかった場合は空。
	ThumbURL string `json:"thumbURL,omitempty"`
	// Date は作成日時。
	Date time.Time `json:"date"`
	// LastLoginAt は最終ログイン日時。
	LastLoginAt time.Time `json:"lastLoginAt"`
	// SessionNonce はセッションCookieに埋め込む値。ログアウトで更新される。
	SessionNonce string `json:"-"`
}

// Profile はOAuth2プロバイダから取得したユーザープロフィール。
type Profile struct {
	// ID はSpotify上のユーザーID。
	ID string
	// DisplayName は表示名。
	DisplayName string
	// Emails はメールアドレスの一覧。
	Emails []string
	// Photos はプロフィール画像URLの一覧。
	Photos []string
}

// CreateParams はユーザー作成のパラメータ。
type CreateParams struct {
	Name      string
	SpotifyID string
	Email     string
	ThumbURL  string
}

// paramsFromProfile はプロフィールから新規ユーザーの作成パラメータを組み立てる。
// 表示名が未設定のアカウントではSpotify IDを名前として使う。
func paramsFromProfile(p Profile) CreateParams {
	params := CreateParams{
		Name:      p.DisplayName,
		SpotifyID: p.ID,
	}
	if params.Name == "" {
		params.Name = p.ID
	}
	if len(p.Emails) > 0 {
		params.Email = p.Emails[0]
	}
	if len(p.Photos) > 0 {
		params.ThumbURL = p.Photos[0]
	}
	return params
}
