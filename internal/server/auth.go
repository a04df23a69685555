package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/spotisearch/internal/session"
	"github.com/nao1215/spotisearch/pkg/event"
	"github.com/nao1215/spotisearch/pkg/middleware"
)

// userInfoResponse はログイン中ユーザーの情報のJSONレスポンス構造。
type userInfoResponse struct {
	// Name はユーザーの表示名。
	Name string `json:"name"`
	// Provider はログインに使ったプロバイダ名。
	Provider string `json:"provider"`
	// SpotifyID はSpotify上のユーザーID。
	SpotifyID string `json:"spotifyID"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Expires はアクセストークンの有効期限。
	Expires time.Time `json:"expires"`
	// ImageURL はプロフィール画像のURL。
	ImageURL string `json:"imageURL"`
}

// handleLogin はSpotify OAuth2ログインを開始するハンドラを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.cfg.SpotifyConfigured() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Spotify OAuth2が設定されていません"})
			return
		}
		state, err := s.states.Generate()
		if err != nil {
			log.Printf("state生成エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログインの開始に失敗しました"})
			return
		}
		if err := s.setStateCookie(c, state); err != nil {
			log.Printf("stateCookieのエンコードに失敗: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ログインの開始に失敗しました"})
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, s.auth.AuthCodeURL(state))
	}
}

// handleCallback はSpotify OAuth2コールバックを処理するハンドラを返す。
// 失敗した場合はすべてFailureRedirectURLへリダイレクトする。
func (s *Server) handleCallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		state := c.Query("state")
		stateErr := s.consumeStateCookie(c, state)
		if reason := c.Query("error"); reason != "" {
			log.Printf("Spotifyログインが拒否されました: reason=%s", reason)
			c.Redirect(http.StatusFound, s.cfg.FailureRedirectURL)
			return
		}
		if stateErr != nil {
			log.Printf("stateの照合に失敗: %v", stateErr)
			c.Redirect(http.StatusFound, s.cfg.FailureRedirectURL)
			return
		}
		if err := s.states.Verify(state); err != nil {
			log.Printf("stateの検証に失敗: %v", err)
			c.Redirect(http.StatusFound, s.cfg.FailureRedirectURL)
			return
		}

		profile, token, err := s.auth.Authenticate(ctx, c.Query("code"))
		if err != nil {
			log.Printf("Spotify認証エラー: %v", err)
			c.Redirect(http.StatusFound, s.cfg.FailureRedirectURL)
			return
		}

		u, created, err := s.users.FindOrCreate(ctx, profile)
		if err != nil {
			log.Printf("ユーザーの取得・作成に失敗: spotify_id=%s, error=%v", profile.ID, err)
			c.Redirect(http.StatusFound, s.cfg.FailureRedirectURL)
			return
		}

		access := session.NewAccess(token.AccessToken, token.RefreshToken, token.ExpiresIn, s.now())
		s.sessions.Put(u.ID, session.Entry{User: u, Access: access})
		s.setSessionCookie(c, u, access)
		s.record(c, u.ID, event.TypeUserLoggedIn, event.UserLoggedInData{
			SpotifyID: u.SpotifyID,
			NewUser:   created,
			Expires:   access.Expires,
		})

		log.Printf("Spotifyログイン: user_id=%s, spotify_id=%s, new_user=%t, origin=%s",
			u.ID, u.SpotifyID, created, c.GetHeader("Origin"))
		if s.cfg.Debug {
			log.Printf("ログイン中ユーザー数: %d, expires=%s", s.sessions.Len(), access.Expires)
		}
		c.Redirect(http.StatusFound, s.cfg.ProfileRedirectURL+"#id="+u.ID)
	}
}

// handleInfo はログイン中ユーザーの情報を返すハンドラを返す。
func (s *Server) handleInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		entry, ok := s.sessions.Get(middleware.GetUserID(c))
		if !ok {
			// ゲート通過後にログアウトされた場合
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ログインしていません"})
			return
		}
		c.JSON(http.StatusOK, userInfoResponse{
			Name:      entry.User.Name,
			Provider:  entry.Access.Provider,
			SpotifyID: entry.User.SpotifyID,
			Email:     entry.User.Email,
			Expires:   entry.Access.Expires,
			ImageURL:  entry.User.ThumbURL,
		})
	}
}

// handleLogout はログアウトを処理するハンドラを返す。
// セッションナンスを更新して、発行済みのセッションCookieからの復元もできなくする。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetUserID(c)
		entry, _ := s.sessions.Get(id)
		if _, err := s.users.RevokeSessions(c.Request.Context(), id); err != nil {
			log.Printf("セッションの無効化に失敗: user_id=%s, error=%v", id, err)
		}
		s.sessions.Delete(id)
		s.clearSessionCookie(c)
		s.record(c, id, event.TypeUserLoggedOut, event.UserLoggedOutData{SpotifyID: entry.User.SpotifyID})

		log.Printf("ログアウト: user_id=%s", id)
		c.Redirect(http.StatusFound, s.cfg.FailureRedirectURL)
	}
}
