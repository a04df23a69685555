package spotify

import "fmt"

// FormatDuration はミリ秒を "HH:MM:SS.mmm" 形式に変換する。
// 例: 7354320 → "02:02:34.320"。100時間以上の場合は時の桁が増える。
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	msecs := ms % 1000
	secs := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", secs/3600, secs/60%60, secs%60, msecs)
}
