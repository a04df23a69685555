package spotify

// Track は検索結果のトラック。
// 画像とリリース日は収録アルバムのものを使う。
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	SpotifyURL  string   `json:"spotify_url"`
	ImageURL    string   `json:"image_url"`
	ReleaseDate string   `json:"release_date"`
	DiscNumber  int      `json:"disc_number"`
	TrackNumber int      `json:"track_number"`
	// Duration は "HH:MM:SS.mmm" 形式の再生時間。
	Duration string `json:"duration"`
	Album    Album  `json:"album"`
}

func newTrack(r *rawTrack) Track {
	return Track{
		ID:          r.ID,
		Name:        r.Name,
		Artists:     artistNames(r.Artists),
		SpotifyURL:  r.ExternalURLs.Spotify,
		ImageURL:    firstImageURL(r.Album.Images),
		ReleaseDate: r.Album.ReleaseDate,
		DiscNumber:  r.DiscNumber,
		TrackNumber: r.TrackNumber,
		Duration:    FormatDuration(r.DurationMS),
		Album:       newAlbum(&r.Album),
	}
}
