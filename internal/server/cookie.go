package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"

	"github.com/nao1215/spotisearch/internal/session"
	"github.com/nao1215/spotisearch/internal/spotify"
	"github.com/nao1215/spotisearch/internal/user"
)

const (
	// sessionCookieName はセッションCookieの名前。
	sessionCookieName = "spotisearch_session"
	// stateCookieName はログイン開始時に発行したstateを保持するCookieの名前。
	stateCookieName = "spotisearch_oauth_state"
	// stateCookiePath はstateCookieを送信するパス。ログイン開始とコールバックだけに限定する。
	stateCookiePath = "/users/spotify"
)

// errStateMismatch はコールバックのstateがブラウザのstateCookieと一致しない場合のエラー。
var errStateMismatch = errors.New("stateがログインを開始したブラウザのものと一致しません")

// sessionCookie はセッションCookieに保存する内容。
// サーバー再起動でキャッシュが失われても、ここからログイン状態を復元できる。
type sessionCookie struct {
	ID string `json:"id"`
	// Nonce は発行時点のユーザーのセッションナンス。ログアウト後のCookieを拒否するために使う。
	Nonce  string         `json:"nonce"`
	Access session.Access `json:"access"`
}

// newCookieCodec は秘密値から署名用と暗号化用の鍵を導出してSecureCookieを生成する。
func newCookieCodec(secret string) *securecookie.SecureCookie {
	hashKey := sha256.Sum256([]byte("hash:" + secret))
	blockKey := sha256.Sum256([]byte("block:" + secret))
	codec := securecookie.New(hashKey[:], blockKey[:])
	codec.SetSerializer(securecookie.JSONEncoder{})
	return codec
}

// setSessionCookie はユーザーIDとアクセストークン情報をCookieに保存する。
func (s *Server) setSessionCookie(c *gin.Context, u user.SpotifyUser, access session.Access) {
	encoded, err := s.cookies.Encode(sessionCookieName, sessionCookie{ID: u.ID, Nonce: u.SessionNonce, Access: access})
	if err != nil {
		log.Printf("セッションCookieのエンコードに失敗: user_id=%s, error=%v", u.ID, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, encoded, 0, "/", "", c.Request.TLS != nil, true)
}

// clearSessionCookie はセッションCookieを削除する。
func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}

// readSessionCookie はセッションCookieを復号する。
func (s *Server) readSessionCookie(c *gin.Context) (sessionCookie, bool) {
	raw, err := c.Cookie(sessionCookieName)
	if err != nil || raw == "" {
		return sessionCookie{}, false
	}
	var sc sessionCookie
	if err := s.cookies.Decode(sessionCookieName, raw, &sc); err != nil {
		log.Printf("セッションCookieの復号に失敗: %v", err)
		return sessionCookie{}, false
	}
	if sc.ID == "" {
		return sessionCookie{}, false
	}
	return sc, true
}

// userIDFromCookie はセッションCookieからユーザーIDを取り出すIDResolver。
// キャッシュに無いユーザーはデータベースから読み込み、Cookieのナンスが現在のものと一致する場合だけ
// Cookieのアクセストークン情報と合わせて復元する。
func (s *Server) userIDFromCookie(c *gin.Context) string {
	sc, ok := s.readSessionCookie(c)
	if !ok {
		return ""
	}
	if s.sessions.Has(sc.ID) {
		return sc.ID
	}

	u, err := s.users.FindByID(c.Request.Context(), sc.ID)
	if err != nil {
		log.Printf("セッションの復元に失敗: user_id=%s, error=%v", sc.ID, err)
		return ""
	}
	if subtle.ConstantTimeCompare([]byte(sc.Nonce), []byte(u.SessionNonce)) != 1 {
		log.Printf("無効化済みのセッションCookieを拒否: user_id=%s", sc.ID)
		return ""
	}
	s.sessions.Put(u.ID, session.Entry{User: u, Access: sc.Access})
	if s.cfg.Debug {
		log.Printf("Cookieからセッションを復元: user_id=%s, expires=%s", u.ID, sc.Access.Expires)
	}
	return u.ID
}

// setStateCookie はログインを開始したブラウザにstateを保存する。
func (s *Server) setStateCookie(c *gin.Context, state string) error {
	encoded, err := s.cookies.Encode(stateCookieName, state)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, encoded, int(spotify.StateTTL.Seconds()), stateCookiePath, "", c.Request.TLS != nil, true)
	return nil
}

// consumeStateCookie はstateCookieを削除し、コールバックのstateと一致するかを確認する。
func (s *Server) consumeStateCookie(c *gin.Context, state string) error {
	raw, err := c.Cookie(stateCookieName)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookieName, "", -1, stateCookiePath, "", c.Request.TLS != nil, true)
	if err != nil || raw == "" {
		return errStateMismatch
	}

	var issued string
	if err := s.cookies.Decode(stateCookieName, raw, &issued); err != nil {
		return errStateMismatch
	}
	if state == "" || subtle.ConstantTimeCompare([]byte(issued), []byte(state)) != 1 {
		return errStateMismatch
	}
	return nil
}
