package session

import (
	"sync"
	"time"

	"github.com/nao1215/spotisearch/internal/user"
)

// ProviderSpotify はAccess.Providerに設定されるプロバイダ名。
const ProviderSpotify = "spotify"

// Access はOAuth2プロバイダから受け取ったアクセストークン情報。
type Access struct {
	// Provider はプロバイダ名。常に "spotify"。
	Provider string `json:"provider"`
	// AccessToken はWeb API呼び出しに使うアクセストークン。
	AccessToken string `json:"accessToken"`
	// RefreshToken はアクセストークン更新用のトークン。
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn はトークン発行時点での有効秒数。
	ExpiresIn int64 `json:"expiresIn"`
	// Expires はアクセストークンの有効期限。
	Expires time.Time `json:"expires"`
}

// NewAccess は発行時刻と有効秒数からAccessを組み立てる。
func NewAccess(accessToken, refreshToken string, expiresIn int64, issuedAt time.Time) Access {
	return Access{
		Provider:     ProviderSpotify,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
		Expires:      issuedAt.Add(time.Duration(expiresIn) * time.Second),
	}
}

// Expired はnow時点でアクセストークンが期限切れかどうかを返す。
// 有効期限が未設定の場合は期限切れとみなさない。
func (a Access) Expired(now time.Time) bool {
	return !a.Expires.IsZero() && !now.Before(a.Expires)
}

// Entry はキャッシュに保持するログイン中ユーザーのデータ。
type Entry struct {
	// User はログインしたユーザー。
	User user.SpotifyUser `json:"user"`
	// Access はログイン時に取得したアクセストークン情報。
	Access Access `json:"access"`
}

// Cache はユーザーIDからEntryを引くインメモリキャッシュ。
// 複数のリクエストから同時に参照・更新されるためミューテックスで保護する。
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache は空のCacheを生成する。
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Put はidに対するEntryを保存する。既存のEntryは上書きされる。
func (c *Cache) Put(id string, e Entry) {
	c.mu.Lock()
	c.entries[id] = e
	c.mu.Unlock()
}

// Get はidに対するEntryを返す。
func (c *Cache) Get(id string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	return e, ok
}

// Has はidがログイン中かどうかを返す。
func (c *Cache) Has(id string) bool {
	_, ok := c.Get(id)
	return ok
}

// UpdateAccess はidのアクセストークン情報だけを差し替える。
// idがキャッシュに無い場合はfalseを返す。
func (c *Cache) UpdateAccess(id string, a Access) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return false
	}
	e.Access = a
	c.entries[id] = e
	return true
}

// Delete はidのEntryを削除する。存在しない場合は何もしない。
func (c *Cache) Delete(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Len はキャッシュされているユーザー数を返す。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
