package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubChecker はテスト用のSessionChecker。
type stubChecker map[string]bool

func (s stubChecker) Has(id string) bool { return s[id] }

// newGateRouter はRequireLoginを適用したテスト用ルーターを返す。
// ハンドラーはGetUserIDで得たIDをそのまま返す。
func newGateRouter(checker SessionChecker, resolvers ...IDResolver) *gin.Engine {
	router := gin.New()
	router.GET("/protected", RequireLogin(checker, resolvers...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	return router
}

// TestRequireLogin はログインゲートを検証する。
func TestRequireLogin(t *testing.T) {
	t.Parallel()

	checker := stubChecker{"user-1": true, "cookie-user": true}

	t.Run("ログイン中のIDなら通過しコンテキストにIDが設定されること", func(t *testing.T) {
		t.Parallel()

		router := newGateRouter(checker)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?id=user-1", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["user_id"] != "user-1" {
			t.Errorf("user_id = %q, want %q", body["user_id"], "user-1")
		}
	})

	t.Run("IDが無い場合は401が返ること", func(t *testing.T) {
		t.Parallel()

		router := newGateRouter(checker)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("ログインしていないIDでは401が返ること", func(t *testing.T) {
		t.Parallel()

		router := newGateRouter(checker)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?id=stranger", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if _, ok := body["error"]; !ok {
			t.Error("エラーメッセージが含まれていない")
		}
	})

	t.Run("先頭のResolverで見つからなければ次のResolverが使われること", func(t *testing.T) {
		t.Parallel()

		fromHeader := func(c *gin.Context) string { return c.GetHeader("X-Test-User") }
		router := newGateRouter(checker, QueryID, fromHeader)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("X-Test-User", "cookie-user")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("クエリのIDが未ログインでも後続のResolverで復元できれば通過すること", func(t *testing.T) {
		t.Parallel()

		restored := stubChecker{}
		restore := func(c *gin.Context) string {
			restored["user-2"] = true
			return "user-2"
		}
		router := newGateRouter(restored, QueryID, restore)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?id=user-2", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["user_id"] != "user-2" {
			t.Errorf("user_id = %q, want %q", body["user_id"], "user-2")
		}
	})

	t.Run("クエリのIDと後続のResolverのIDが異なる場合は401が返ること", func(t *testing.T) {
		t.Parallel()

		fromHeader := func(c *gin.Context) string { return c.GetHeader("X-Test-User") }
		router := newGateRouter(checker, QueryID, fromHeader)

		req := httptest.NewRequest(http.MethodGet, "/protected?id=stranger", nil)
		req.Header.Set("X-Test-User", "cookie-user")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})

	t.Run("ログイン中のIDが見つかれば後続のResolverは呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		called := false
		second := func(c *gin.Context) string {
			called = true
			return "cookie-user"
		}
		router := newGateRouter(checker, QueryID, second)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected?id=user-1", nil))

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if called {
			t.Error("後続のResolverが呼ばれた")
		}
	})
}

// TestGetUserID はGetUserIDを検証する。
func TestGetUserID(t *testing.T) {
	t.Parallel()

	t.Run("ユーザーIDが設定されていない場合は空文字列を返すこと", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		if got := GetUserID(c); got != "" {
			t.Errorf("GetUserID() = %q, want empty", got)
		}
	})

	t.Run("文字列以外の値が設定されている場合は空文字列を返すこと", func(t *testing.T) {
		t.Parallel()

		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set("user_id", 123)
		if got := GetUserID(c); got != "" {
			t.Errorf("GetUserID() = %q, want empty", got)
		}
	})
}
