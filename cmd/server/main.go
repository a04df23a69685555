// spotisearchサービスのエントリポイント。
// SpotifyのOAuth2ログイン、ログイン中ユーザーのセッション管理、Spotify検索のプロキシを担当する。
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/nao1215/spotisearch/internal/config"
	"github.com/nao1215/spotisearch/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗: %v", err)
	}
	defer srv.Close()

	log.Printf("spotisearchサービスを起動します: :%s", cfg.Port)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("spotisearchサービスの起動に失敗: %v", err)
	}
	log.Printf("spotisearchサービスを停止しました")
}
