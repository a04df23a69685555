package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/spotisearch/pkg/httpclient"
)

const (
	// searchTypes は検索対象の種類。アルバム・アーティスト・トラック・プレイリストを同時に検索する。
	searchTypes = "album,artist,track,playlist"
	// DefaultPageSize は種類ごとの取得件数の既定値。
	DefaultPageSize = 10
)

// ErrEmptySearchTerm は検索語が空の場合のエラー。
var ErrEmptySearchTerm = errors.New("spotify: 検索語が空です")

// Response は検索結果を種類ごとに変換したもの。
type Response struct {
	Albums    []Album    `json:"albums"`
	Artists   []Artist   `json:"artists"`
	Tracks    []Track    `json:"tracks"`
	Playlists []Playlist `json:"playlists"`
}

// Client はSpotify Web APIの検索クライアント。
type Client struct {
	api      *httpclient.Client
	pageSize int
}

// NewClient はapiURL（例: "https://api.spotify.com"）に接続するClientを生成する。
// pageSizeが0以下の場合はDefaultPageSizeを使う。
func NewClient(apiURL string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		api:      httpclient.New(strings.TrimRight(apiURL, "/")),
		pageSize: pageSize,
	}
}

// Search はユーザーのアクセストークンで検索APIを呼び出し、結果を変換して返す。
// Web APIがエラーを返した場合は*httpclient.APIErrorを含むエラーを返す。
func (c *Client) Search(ctx context.Context, accessToken, term string) (*Response, error) {
	if term == "" {
		return nil, ErrEmptySearchTerm
	}

	query := url.Values{
		"q":     {term},
		"type":  {searchTypes},
		"limit": {strconv.Itoa(c.pageSize)},
	}
	var raw rawSearchResponse
	ctx = httpclient.WithAccessToken(ctx, accessToken)
	if err := c.api.GetJSON(ctx, "/v1/search", query, &raw); err != nil {
		return nil, fmt.Errorf("検索APIの呼び出しに失敗: %w", err)
	}

	return &Response{
		Albums:    convertItems(raw.Albums.Items, newAlbum),
		Artists:   convertItems(raw.Artists.Items, newArtist),
		Tracks:    convertItems(raw.Tracks.Items, newTrack),
		Playlists: convertItems(raw.Playlists.Items, newPlaylist),
	}, nil
}
