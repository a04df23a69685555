package spotify

// Album は検索結果のアルバム。
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	SpotifyURL  string   `json:"spotify_url"`
	ImageURL    string   `json:"image_url"`
	ReleaseDate string   `json:"release_date"`
	// Tracks はアルバムの総トラック数。
	Tracks int `json:"tracks"`
}

func newAlbum(r *rawAlbum) Album {
	return Album{
		ID:          r.ID,
		Name:        r.Name,
		Artists:     artistNames(r.Artists),
		SpotifyURL:  r.ExternalURLs.Spotify,
		ImageURL:    firstImageURL(r.Images),
		ReleaseDate: r.ReleaseDate,
		Tracks:      r.TotalTracks,
	}
}
