package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client は外部Web API呼び出し用のHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は接続先APIのベースURL。
	baseURL string
}

// New は新しいHTTPクライアントを生成する。
// baseURLには接続先APIのベースURL（例: "https://api.spotify.com"）を指定する。
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// APIError は接続先APIが2xx以外を返した場合のエラー。
type APIError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Message はレスポンスボディから取り出したエラーメッセージ。
	Message string
}

// Error はerrorインターフェースの実装。
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTPエラー: status=%d, message=%s", e.StatusCode, e.Message)
}

// errorBody はWeb APIのエラーレスポンス形式。
// 例: {"error":{"status":401,"message":"The access token expired"}}
type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetJSON は指定パスにGETリクエストを送信する。
// queryが空でなければクエリ文字列として付与し、レスポンスボディをresultにデシリアライズする。
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, result any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, result)
}

// doJSON はJSON形式のHTTPリクエストを実行する共通処理。
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	// コンテキストからアクセストークンを伝播する
	if token, ok := ctx.Value(contextKeyAccessToken).(string); ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// newAPIError はエラーレスポンスからAPIErrorを組み立てる。
// ボディが既知の形式でなければボディ全体、空ならステータステキストをメッセージとする。
func newAPIError(resp *http.Response) *APIError {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body errorBody
	if err := json.Unmarshal(respBody, &body); err == nil && body.Error.Message != "" {
		apiErr.Message = body.Error.Message
		if body.Error.Status != 0 {
			apiErr.StatusCode = body.Error.Status
		}
		return apiErr
	}
	if len(respBody) > 0 {
		apiErr.Message = string(respBody)
		return apiErr
	}
	apiErr.Message = http.StatusText(resp.StatusCode)
	return apiErr
}

// AsAPIError はerrがAPIErrorを含む場合にそれを取り出す。
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyAccessToken はコンテキストにアクセストークンを格納するためのキー。
const contextKeyAccessToken contextKey = "access_token"

// WithAccessToken はコンテキストにアクセストークンを設定する。
// 設定されたトークンはAuthorization: Bearerヘッダーとして送信される。
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyAccessToken, token)
}
