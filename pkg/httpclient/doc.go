// Package httpclient は外部Web API呼び出し用のHTTPクライアントを提供する。
//
// JSONレスポンスのデシリアライズ、コンテキスト経由のBearerトークン付与、
// タイムアウト設定、APIエラーレスポンスの解釈などの共通処理を含む。
package httpclient
