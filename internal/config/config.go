// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`

	// 外部認証プロバイダー
	AuthProviderURL string `env:"AUTH_PROVIDER_URL,required"`
	AuthProviderKey string `env:"AUTH_PROVIDER_KEY,required"`

	// 署名フォールバック用シークレット。コアのロジックでは使用しない
	// ブートストラップパラメータとして保持する。
	SecretKey string `env:"SECRET_KEY" envDefault:"fallback-secret-key"`

	// Rate Limit（req/min/subject）
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8000"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return cfg, nil
}
