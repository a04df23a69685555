package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/spotisearch/internal/session"
	"github.com/nao1215/spotisearch/internal/spotify"
	"github.com/nao1215/spotisearch/pkg/event"
	"github.com/nao1215/spotisearch/pkg/httpclient"
	"github.com/nao1215/spotisearch/pkg/middleware"
)

// msgEmptySearchTerm は検索語が空の場合のエラーメッセージ。フロントエンドがそのまま表示する。
const msgEmptySearchTerm = "Enter a search term."

// searchError は検索レスポンスに含めるエラー。
type searchError struct {
	Msg string `json:"msg"`
}

// searchResults は検索語と変換済みの検索結果。
// 検索に失敗した場合はspotifyResponseを含めない。
type searchResults struct {
	SearchTerm      string            `json:"search_term"`
	SpotifyResponse *spotify.Response `json:"spotifyResponse,omitempty"`
}

// searchResponse は検索のJSONレスポンス構造。
// エラーの有無にかかわらずステータスは200で、errorsで結果を判定する。
type searchResponse struct {
	Errors        []searchError `json:"errors"`
	SearchResults searchResults `json:"searchResults"`
}

// handleSearch はSpotify検索をプロキシするハンドラを返す。
// 検索語はフォームフィールドsearch_termで受け取る。
func (s *Server) handleSearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := middleware.GetUserID(c)
		term := c.PostForm("search_term")
		log.Printf("検索: user_id=%s, search_term=%q", id, term)

		entry, ok := s.sessions.Get(id)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "ログインしていません"})
			return
		}

		resp := searchResponse{
			Errors:        []searchError{},
			SearchResults: searchResults{SearchTerm: term},
		}

		access := s.freshAccess(c, entry)
		result, err := s.searcher.Search(c.Request.Context(), access.AccessToken, term)
		if err != nil {
			msg := searchErrorMessage(err)
			if !errors.Is(err, spotify.ErrEmptySearchTerm) {
				log.Printf("検索エラー: user_id=%s, error=%v", id, err)
				s.record(c, id, event.TypeSearchPerformed, event.SearchPerformedData{SearchTerm: term, Error: msg})
			}
			resp.Errors = append(resp.Errors, searchError{Msg: msg})
			c.JSON(http.StatusOK, resp)
			return
		}

		resp.SearchResults.SpotifyResponse = result
		s.record(c, id, event.TypeSearchPerformed, event.SearchPerformedData{
			SearchTerm: term,
			Albums:     len(result.Albums),
			Artists:    len(result.Artists),
			Tracks:     len(result.Tracks),
			Playlists:  len(result.Playlists),
		})
		c.JSON(http.StatusOK, resp)
	}
}

// searchErrorMessage は検索エラーをフロントエンド向けのメッセージに変換する。
func searchErrorMessage(err error) string {
	if errors.Is(err, spotify.ErrEmptySearchTerm) {
		return msgEmptySearchTerm
	}
	if apiErr, ok := httpclient.AsAPIError(err); ok {
		return fmt.Sprintf("Error: %d %s", apiErr.StatusCode, apiErr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Error: %d %s", http.StatusGatewayTimeout, http.StatusText(http.StatusGatewayTimeout))
	}
	return fmt.Sprintf("Error: %d %s", http.StatusBadGateway, http.StatusText(http.StatusBadGateway))
}

// freshAccess はアクセストークンが期限切れであればリフレッシュトークンで更新する。
// 更新できなかった場合は元のトークンをそのまま返し、検索APIのエラーとして利用者に伝える。
func (s *Server) freshAccess(c *gin.Context, entry session.Entry) session.Access {
	id, access := entry.User.ID, entry.Access
	if !access.Expired(s.now()) || access.RefreshToken == "" {
		return access
	}

	token, err := s.auth.Refresh(c.Request.Context(), access.RefreshToken)
	if err != nil {
		log.Printf("アクセストークンの更新に失敗: user_id=%s, error=%v", id, err)
		return access
	}

	refreshed := session.NewAccess(token.AccessToken, token.RefreshToken, token.ExpiresIn, s.now())
	if !s.sessions.UpdateAccess(id, refreshed) {
		return access
	}
	s.setSessionCookie(c, entry.User, refreshed)
	s.record(c, id, event.TypeAccessRefreshed, event.AccessRefreshedData{Expires: refreshed.Expires})
	if s.cfg.Debug {
		log.Printf("アクセストークンを更新: user_id=%s, expires=%s", id, refreshed.Expires)
	}
	return refreshed
}
