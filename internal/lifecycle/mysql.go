package lifecycle

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/waste3d/anvil/internal/settings"
)

// MySQLExecutor выполняет условные DROP/CREATE через соединение уровня
// сервера (без выбранной схемы). Повторных попыток нет: любая ошибка
// сервера немедленно фатальна для запуска.
type MySQLExecutor struct {
	logger *slog.Logger
}

func NewMySQLExecutor(logger *slog.Logger) *MySQLExecutor {
	return &MySQLExecutor{logger: logger}
}

func (e *MySQLExecutor) DropDatabase(ctx context.Context, spec settings.DatabaseSpec) error {
	return e.exec(ctx, spec, fmt.Sprintf("DROP DATABASE IF EXISTS %s", quoteIdent(spec.Name)))
}

func (e *MySQLExecutor) CreateDatabase(ctx context.Context, spec settings.DatabaseSpec) error {
	return e.exec(ctx, spec, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", quoteIdent(spec.Name)))
}

func (e *MySQLExecutor) exec(ctx context.Context, spec settings.DatabaseSpec, query string) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/", spec.User, spec.Password, spec.Host, spec.Port)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("не удалось открыть соединение с сервером MySQL: %w", err)
	}
	defer db.Close()

	e.logger.Debug("выполнение запроса", "host", spec.Host, "port", spec.Port, "query", query)
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка выполнения '%s' на %s:%d: %w", query, spec.Host, spec.Port, err)
	}
	return nil
}

// quoteIdent экранирует имя схемы как идентификатор MySQL.
func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
