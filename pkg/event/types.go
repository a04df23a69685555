package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeUser はユーザーエンティティを表す。
	AggregateTypeUser AggregateType = "User"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeUserLoggedIn はユーザーがSpotifyでログインしたことを表す。
	TypeUserLoggedIn Type = "UserLoggedIn"
	// TypeUserLoggedOut はユーザーがログアウトしたことを表す。
	TypeUserLoggedOut Type = "UserLoggedOut"
	// TypeSearchPerformed はユーザーが検索を実行したことを表す。
	TypeSearchPerformed Type = "SearchPerformed"
	// TypeAccessRefreshed は期限切れのアクセストークンを更新したことを表す。
	TypeAccessRefreshed Type = "AccessRefreshed"
)

// Event はユーザー操作の不変のイベントレコードを表す。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// Version はAggregate内でのイベントの順序番号。
	Version int64 `json:"version"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// UserLoggedInData はUserLoggedInイベントのデータ。
type UserLoggedInData struct {
	// SpotifyID はSpotify上のユーザーID。
	SpotifyID string `json:"spotify_id"`
	// NewUser は初回ログインでユーザーが作成された場合にtrue。
	NewUser bool `json:"new_user"`
	// Expires はアクセストークンの有効期限。
	Expires time.Time `json:"expires"`
}

// UserLoggedOutData はUserLoggedOutイベントのデータ。
type UserLoggedOutData struct {
	// SpotifyID はSpotify上のユーザーID。
	SpotifyID string `json:"spotify_id"`
}

// SearchPerformedData はSearchPerformedイベントのデータ。
type SearchPerformedData struct {
	// SearchTerm は検索語。
	SearchTerm string `json:"search_term"`
	// Albums はヒットしたアルバム数。
	Albums int `json:"albums"`
	// Artists はヒットしたアーティスト数。
	Artists int `json:"artists"`
	// Tracks はヒットしたトラック数。
	Tracks int `json:"tracks"`
	// Playlists はヒットしたプレイリスト数。
	Playlists int `json:"playlists"`
	// Error は検索が失敗した場合のエラーメッセージ。
	Error string `json:"error,omitempty"`
}

// AccessRefreshedData はAccessRefreshedイベントのデータ。
type AccessRefreshedData struct {
	// Expires は更新後のアクセストークンの有効期限。
	Expires time.Time `json:"expires"`
}
