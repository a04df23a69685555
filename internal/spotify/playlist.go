package spotify

// Playlist は検索結果のプレイリスト。
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Owner は作成者の表示名。
	Owner      string `json:"owner"`
	SpotifyURL string `json:"spotify_url"`
	ImageURL   string `json:"image_url"`
	// Tracks はプレイリストの総トラック数。
	Tracks int `json:"tracks"`
}

func newPlaylist(r *rawPlaylist) Playlist {
	return Playlist{
		ID:         r.ID,
		Name:       r.Name,
		Owner:      r.Owner.DisplayName,
		SpotifyURL: r.ExternalURLs.Spotify,
		ImageURL:   firstImageURL(r.Images),
		Tracks:     r.Tracks.Total,
	}
}
