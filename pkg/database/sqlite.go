// Package database はSQLiteデータベースへの接続を提供する。
package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// dsnOptions はすべての接続に付けるオプション。
// 書き込みトランザクションはBEGIN IMMEDIATEで開始し、ロック待ちはbusy_timeoutに任せる。
const dsnOptions = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate"

// DSN はファイルパスに接続オプションを付けたデータソース名を返す。
func DSN(path string) string {
	return path + "?" + dsnOptions
}

// Open はpathのSQLiteデータベースを開く。
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}
	return db, nil
}
