// Package spotify はSpotifyのOAuth2ログインとWeb API検索を扱う。
//
// 検索結果はWeb APIのJSONから必要なフィールドだけを取り出した
// Album・Artist・Track・Playlistの平坦なレコードに変換して返す。
package spotify
