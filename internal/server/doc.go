// Package server はspotisearchのHTTPサーバーを提供する。
//
// SpotifyのOAuth2ログインとコールバック、ログイン中ユーザーのキャッシュ、
// キャッシュを使ったゲートチェック、Spotify検索のプロキシを担当する。
package server
