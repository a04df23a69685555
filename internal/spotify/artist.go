package spotify

// Artist は検索結果のアーティスト。
// 画像が登録されていないアーティストではimage_urlを出力しない。
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	SpotifyURL string   `json:"spotify_url"`
	ImageURL   string   `json:"image_url,omitempty"`
	Genres     []string `json:"genres"`
}

func newArtist(r *rawArtist) Artist {
	genres := r.Genres
	if genres == nil {
		genres = []string{}
	}
	return Artist{
		ID:         r.ID,
		Name:       r.Name,
		SpotifyURL: r.ExternalURLs.Spotify,
		ImageURL:   firstImageURL(r.Images),
		Genres:     genres,
	}
}
