package spotify

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// stateIssuer はstateトークンの発行者。
	stateIssuer = "spotisearch"
	// StateTTL はstateトークンの有効期間。認可画面での操作時間を見込む。
	StateTTL = 10 * time.Minute
)

// ErrInvalidState はコールバックのstateが検証できない場合のエラー。
var ErrInvalidState = errors.New("spotify: stateパラメータが不正です")

// StateSigner はOAuth2のstateパラメータをHS256署名のJWTとして発行・検証する。
// 署名は改ざんと期限切れを検出するだけで、ログインを始めたブラウザとの結び付けは呼び出し側で行う。
type StateSigner struct {
	secret []byte
	now    func() time.Time
}

// NewStateSigner はsecretで署名するStateSignerを生成する。
func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{secret: []byte(secret), now: time.Now}
}

// Generate は新しいstateトークンを発行する。
func (s *StateSigner) Generate() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Issuer:    stateIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(StateTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("stateトークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verify はstateトークンの署名・発行者・有効期限を検証する。
func (s *StateSigner) Verify(state string) error {
	if state == "" {
		return ErrInvalidState
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}
