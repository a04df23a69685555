package spotify

// Web APIのレスポンスのうち、変換に必要なフィールドだけを定義する。

type rawExternalURLs struct {
	Spotify string `json:"spotify"`
}

type rawImage struct {
	URL string `json:"url"`
}

type rawArtistRef struct {
	Name string `json:"name"`
}

type rawAlbum struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ExternalURLs rawExternalURLs `json:"external_urls"`
	Images       []rawImage      `json:"images"`
	ReleaseDate  string          `json:"release_date"`
	TotalTracks  int             `json:"total_tracks"`
	Artists      []rawArtistRef  `json:"artists"`
}

type rawArtist struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ExternalURLs rawExternalURLs `json:"external_urls"`
	Images       []rawImage      `json:"images"`
	Genres       []string        `json:"genres"`
}

type rawTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ExternalURLs rawExternalURLs `json:"external_urls"`
	Artists      []rawArtistRef  `json:"artists"`
	DiscNumber   int             `json:"disc_number"`
	TrackNumber  int             `json:"track_number"`
	DurationMS   int64           `json:"duration_ms"`
	Album        rawAlbum        `json:"album"`
}

type rawPlaylist struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	ExternalURLs rawExternalURLs `json:"external_urls"`
	Owner        struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
	Images []rawImage `json:"images"`
}

// rawPage はページングされた検索結果。
// プレイリストの検索結果にはnullの要素が混ざることがあるためポインタで受ける。
type rawPage[T any] struct {
	Items []*T `json:"items"`
}

type rawSearchResponse struct {
	Albums    rawPage[rawAlbum]    `json:"albums"`
	Artists   rawPage[rawArtist]   `json:"artists"`
	Tracks    rawPage[rawTrack]    `json:"tracks"`
	Playlists rawPage[rawPlaylist] `json:"playlists"`
}

// firstImageURL は先頭の画像URLを返す。画像が無ければ空文字列。
func firstImageURL(images []rawImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func artistNames(artists []rawArtistRef) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

// convertItems はnullを除いた各要素をconvで変換する。
func convertItems[T, R any](items []*T, conv func(*T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, conv(item))
	}
	return out
}
