// Package user はSpotifyでログインしたユーザーの永続化を提供する。
//
// ユーザーはSpotify IDで一意に識別され、初回ログイン時にプロフィールから作成される。
package user
