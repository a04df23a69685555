// Package session はログイン中ユーザーのサーバー側キャッシュを提供する。
//
// ユーザーIDをキーに、ユーザー情報とSpotifyのアクセストークンを保持する。
// プロセス内のメモリのみに置かれ、再起動すると全ユーザーが再ログインを要する。
// 件数の上限や期限切れによる自動削除は行わない。
package session
