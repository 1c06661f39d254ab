package database

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// マイグレーションSQLはバイナリに埋め込む。
// 実行環境にファイルを配布する必要がなく、ビルドとスキーマが常に一致する。
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations は埋め込まれた未適用マイグレーションを順番にすべて適用する。
// スキーマがすでに最新の場合は何もせず正常終了する。
func RunMigrations(databaseURL string) error {
	m, err := newMigrator(migrationsFS, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// newMigrator は指定されたファイルシステムのmigrations/ディレクトリを
// ソースとするmigrateインスタンスを組み立てる。
func newMigrator(fsys fs.FS, databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}
