package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/spotisearch/pkg/event"
	"github.com/nao1215/spotisearch/pkg/middleware"
)

// record はユーザー操作のイベントを記録する。
// 記録に失敗してもリクエストは失敗させない。
func (s *Server) record(c *gin.Context, userID string, eventType event.Type, data any) {
	ev, err := event.NewUserEvent(userID, eventType, data)
	if err != nil {
		log.Printf("イベント生成エラー: type=%s, error=%v", eventType, err)
		return
	}
	if err := s.activity.Append(c.Request.Context(), ev); err != nil {
		log.Printf("イベント記録エラー: type=%s, user_id=%s, error=%v", eventType, userID, err)
	}
}

// handleEvents はログイン中ユーザーの操作履歴を返すハンドラを返す。
// クエリパラメータlimitで件数を制限できる。
func (s *Server) handleEvents() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limitは0以上の整数で指定してください"})
				return
			}
			limit = n
		}

		events, err := s.activity.ListByAggregate(c.Request.Context(), middleware.GetUserID(c), limit)
		if err != nil {
			log.Printf("イベント取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "操作履歴の取得に失敗しました"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}
