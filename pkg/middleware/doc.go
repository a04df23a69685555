// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// ログイン中ユーザーのゲートチェック、パニックリカバリ、CORS設定を含む。
package middleware
