package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// contextKeyUserID はGinコンテキストにユーザーIDを格納するためのキー。
const contextKeyUserID = "user_id"

// SessionChecker はユーザーIDがログイン中かどうかを判定する。
type SessionChecker interface {
	Has(id string) bool
}

// IDResolver はリクエストからユーザーIDを取り出す。見つからなければ空文字列を返す。
type IDResolver func(c *gin.Context) string

// QueryID はクエリパラメータ "id" からユーザーIDを取り出すIDResolver。
func QueryID(c *gin.Context) string {
	return c.Query("id")
}

// RequireLogin はログイン中のユーザーだけを通すGinミドルウェアを返す。
// resolversを順に試し、得られたユーザーIDがcheckerでログイン中と判定されれば
// コンテキストに "user_id" を設定する。ログイン中でなければ次のResolverを試す。
// Resolverごとに異なるIDが得られた場合は通さない。
func RequireLogin(checker SessionChecker, resolvers ...IDResolver) gin.HandlerFunc {
	if len(resolvers) == 0 {
		resolvers = []IDResolver{QueryID}
	}
	return func(c *gin.Context) {
		var id string
		for _, resolve := range resolvers {
			got := resolve(c)
			if got == "" {
				continue
			}
			if id != "" && got != id {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "ユーザーIDが一致しません",
				})
				return
			}
			id = got
			if checker.Has(id) {
				c.Set(contextKeyUserID, id)
				c.Next()
				return
			}
		}

		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "ユーザーIDが必要です",
			})
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "ログインしていません",
		})
	}
}

// GetUserID はGinコンテキストからユーザーIDを取得する。
// RequireLoginミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(contextKeyUserID)
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}
