package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/waste3d/anvil/internal/settings"
)

// Операции жизненного цикла базы данных.
const (
	OpReset  = "reset"
	OpCreate = "create"
)

// Request — флаги запрошенного развертывания. Сброс подразумевает создание.
type Request struct {
	CreateDatabase bool
	ResetDatabase  bool
	Verbose        bool
}

// ErrAborted возвращается, когда оператор отказался от удаления существующего
// файла базы. Это осознанный отказ, а не ошибка: дальнейшие шаги не
// выполняются, код выхода остаётся успешным.
var ErrAborted = errors.New("развертывание прервано оператором")

// UnsupportedOperationError — запрошенное действие не автоматизируется для
// данного бэкенда; оператору нужно выполнить его вручную (см. anvil report).
type UnsupportedOperationError struct {
	Operation string
	Engine    settings.Engine
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("операция '%s' не поддерживается для движка '%s'; выполните её вручную (anvil report)", e.Operation, e.Engine)
}

// Executor выполняет вызовы к внешнему серверу баз данных.
type Executor interface {
	DropDatabase(ctx context.Context, spec settings.DatabaseSpec) error
	CreateDatabase(ctx context.Context, spec settings.DatabaseSpec) error
}

// Prompter задаёт оператору вопрос и возвращает его решение.
type Prompter interface {
	Confirm(question string) (bool, error)
}

// Migrator запускает внешний инструмент миграции схемы.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Orchestrator применяет запрошенные операции к каждой записи строго
// в порядке объявления. Параллельной обработки нет: разрушительные действия
// не должны гоняться с зависящими от них созданиями в том же запуске.
type Orchestrator struct {
	executor Executor
	prompter Prompter
	migrator Migrator
	logger   *slog.Logger
}

func New(executor Executor, prompter Prompter, migrator Migrator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		executor: executor,
		prompter: prompter,
		migrator: migrator,
		logger:   logger,
	}
}

// Run выполняет запрошенные операции над всеми записями, после чего ровно
// один раз вызывает миграцию схемы. Любая ошибка фатальна и останавливает
// обработку на текущем шаге; уже выполненные действия не откатываются.
func (o *Orchestrator) Run(ctx context.Context, specs []settings.DatabaseSpec, req Request) error {
	if req.ResetDatabase {
		for _, spec := range specs {
			if err := o.reset(ctx, spec); err != nil {
				return err
			}
		}
	}

	if req.CreateDatabase || req.ResetDatabase {
		for _, spec := range specs {
			if err := o.create(ctx, spec); err != nil {
				return err
			}
		}
	}

	// Миграция движко-независима и выполняется один раз на всё развертывание.
	o.logger.Info("запуск миграции схемы")
	if err := o.migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("ошибка миграции схемы: %w", err)
	}
	return nil
}

func (o *Orchestrator) reset(ctx context.Context, spec settings.DatabaseSpec) error {
	o.logger.Info("сброс базы данных", "name", spec.Name, "engine", spec.Engine)

	switch spec.Engine {
	case settings.EngineSQLite3:
		if _, err := os.Stat(spec.Name); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("не удалось проверить файл базы '%s': %w", spec.Name, err)
		}
		ok, err := o.prompter.Confirm(fmt.Sprintf("Файл базы данных '%s' уже существует. Удалить его?", spec.Name))
		if err != nil {
			return fmt.Errorf("не удалось получить подтверждение оператора: %w", err)
		}
		if !ok {
			return ErrAborted
		}
		if err := os.Remove(spec.Name); err != nil {
			return fmt.Errorf("не удалось удалить файл базы '%s': %w", spec.Name, err)
		}
		o.logger.Info("файл базы удалён", "name", spec.Name)
		return nil

	case settings.EngineMySQL:
		return o.executor.DropDatabase(ctx, spec)

	case settings.EnginePostgreSQL:
		return &UnsupportedOperationError{Operation: OpReset, Engine: spec.Engine}
	}

	return &UnsupportedOperationError{Operation: OpReset, Engine: spec.Engine}
}

func (o *Orchestrator) create(ctx context.Context, spec settings.DatabaseSpec) error {
	switch spec.Engine {
	case settings.EngineSQLite3:
		// Файл sqlite создаётся приложением при первой записи.
		o.logger.Debug("создание для sqlite3 не требуется", "name", spec.Name)
		return nil

	case settings.EngineMySQL:
		o.logger.Info("создание базы данных", "name", spec.Name, "host", spec.Host, "port", spec.Port)
		return o.executor.CreateDatabase(ctx, spec)

	case settings.EnginePostgreSQL:
		return &UnsupportedOperationError{Operation: OpCreate, Engine: spec.Engine}
	}

	return &UnsupportedOperationError{Operation: OpCreate, Engine: spec.Engine}
}
