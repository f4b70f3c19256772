package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/waste3d/anvil/internal/settings"
)

// fakeExecutor записывает вызовы к серверу БД вместо их выполнения.
type fakeExecutor struct {
	calls []string
	fail  error
}

func (f *fakeExecutor) DropDatabase(ctx context.Context, spec settings.DatabaseSpec) error {
	f.calls = append(f.calls, fmt.Sprintf("drop %s@%s:%d user=%s password=%s", spec.Name, spec.Host, spec.Port, spec.User, spec.Password))
	return f.fail
}

func (f *fakeExecutor) CreateDatabase(ctx context.Context, spec settings.DatabaseSpec) error {
	f.calls = append(f.calls, fmt.Sprintf("create %s@%s:%d user=%s password=%s", spec.Name, spec.Host, spec.Port, spec.User, spec.Password))
	return f.fail
}

type fakePrompter struct {
	answer bool
	asked  int
}

func (f *fakePrompter) Confirm(question string) (bool, error) {
	f.asked++
	return f.answer, nil
}

type fakeMigrator struct {
	called int
}

func (f *fakeMigrator) Migrate(ctx context.Context) error {
	f.called++
	return nil
}

func newTestOrchestrator(exec *fakeExecutor, prompt *fakePrompter, migrate *fakeMigrator) *Orchestrator {
	return New(exec, prompt, migrate, slog.New(slog.DiscardHandler))
}

func TestRunResetCreateScenario(t *testing.T) {
	// Сценарий из двух баз: mysql с учётными данными и sqlite3 с существующим
	// файлом. Ожидается условный DROP, затем CREATE для mysql и удаление
	// файла sqlite после подтверждения; для sqlite3 никаких create-действий.
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "cache.db")
	if err := os.WriteFile(dbFile, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	specs := []settings.DatabaseSpec{
		{Engine: settings.EngineMySQL, Name: "app_db", Host: "localhost", Port: 3306, User: "u", Password: "p"},
		{Engine: settings.EngineSQLite3, Name: dbFile},
	}

	exec := &fakeExecutor{}
	prompt := &fakePrompter{answer: true}
	migrate := &fakeMigrator{}

	err := newTestOrchestrator(exec, prompt, migrate).Run(context.Background(), specs, Request{ResetDatabase: true})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	expected := []string{
		"drop app_db@localhost:3306 user=u password=p",
		"create app_db@localhost:3306 user=u password=p",
	}
	if !reflect.DeepEqual(exec.calls, expected) {
		t.Errorf("Неправильная последовательность вызовов.\nОжидалось: %v\nПолучено:  %v", expected, exec.calls)
	}
	if prompt.asked != 1 {
		t.Errorf("Ожидался ровно один вопрос оператору, получено %d", prompt.asked)
	}
	if _, err := os.Stat(dbFile); !os.IsNotExist(err) {
		t.Errorf("Файл sqlite должен быть удалён")
	}
	if migrate.called != 1 {
		t.Errorf("Миграция должна вызываться ровно один раз, вызвана %d", migrate.called)
	}
}

func TestRunResetDeclined(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "db.sqlite3")
	if err := os.WriteFile(dbFile, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	specs := []settings.DatabaseSpec{
		{Engine: settings.EngineSQLite3, Name: dbFile},
		{Engine: settings.EngineMySQL, Name: "app_db", Host: "localhost", Port: 3306, User: "u", Password: "p"},
	}

	exec := &fakeExecutor{}
	migrate := &fakeMigrator{}

	err := newTestOrchestrator(exec, &fakePrompter{answer: false}, migrate).Run(context.Background(), specs, Request{ResetDatabase: true})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("Ожидалась ErrAborted, получено %v", err)
	}

	// Отказ закрывает весь запуск: следующие записи не обрабатываются,
	// миграция не запускается, файл остаётся на месте.
	if len(exec.calls) != 0 {
		t.Errorf("После отказа не должно быть вызовов к серверу, получено %v", exec.calls)
	}
	if migrate.called != 0 {
		t.Errorf("Миграция не должна запускаться после отказа")
	}
	if _, err := os.Stat(dbFile); err != nil {
		t.Errorf("Файл базы не должен быть удалён: %v", err)
	}
}

func TestRunResetMissingSQLiteFile(t *testing.T) {
	specs := []settings.DatabaseSpec{
		{Engine: settings.EngineSQLite3, Name: filepath.Join(t.TempDir(), "нет-такого.db")},
	}

	prompt := &fakePrompter{answer: true}
	migrate := &fakeMigrator{}

	err := newTestOrchestrator(&fakeExecutor{}, prompt, migrate).Run(context.Background(), specs, Request{ResetDatabase: true})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if prompt.asked != 0 {
		t.Errorf("Вопрос не должен задаваться, если файла нет")
	}
	if migrate.called != 1 {
		t.Errorf("Миграция должна выполняться")
	}
}

func TestRunUnsupportedPostgreSQL(t *testing.T) {
	testCases := []struct {
		name      string
		req       Request
		operation string
	}{
		{"Сброс postgresql не автоматизируется", Request{ResetDatabase: true}, OpReset},
		{"Создание postgresql не автоматизируется", Request{CreateDatabase: true}, OpCreate},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			specs := []settings.DatabaseSpec{
				{Engine: settings.EnginePostgreSQL, Name: "big_db", Host: "localhost", Port: 5432, User: "u", Password: "p"},
			}

			exec := &fakeExecutor{}
			migrate := &fakeMigrator{}

			err := newTestOrchestrator(exec, &fakePrompter{answer: true}, migrate).Run(context.Background(), specs, tc.req)

			var unsupported *UnsupportedOperationError
			if !errors.As(err, &unsupported) {
				t.Fatalf("Ожидалась UnsupportedOperationError, получено %v", err)
			}
			if unsupported.Operation != tc.operation || unsupported.Engine != settings.EnginePostgreSQL {
				t.Errorf("Неправильная ошибка: %+v", unsupported)
			}
			if len(exec.calls) != 0 {
				t.Errorf("Не должно быть вызовов к серверу, получено %v", exec.calls)
			}
			if migrate.called != 0 {
				t.Errorf("Миграция не должна запускаться после фатальной ошибки")
			}
		})
	}
}

func TestRunCreateOnly(t *testing.T) {
	specs := []settings.DatabaseSpec{
		{Engine: settings.EngineMySQL, Name: "app_db", Host: "db.internal", Port: 3307, User: "u", Password: "p"},
		{Engine: settings.EngineSQLite3, Name: "cache.db"},
	}

	exec := &fakeExecutor{}
	migrate := &fakeMigrator{}

	err := newTestOrchestrator(exec, &fakePrompter{}, migrate).Run(context.Background(), specs, Request{CreateDatabase: true})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	// Для sqlite3 создание — no-op, единственный вызов — create для mysql.
	expected := []string{"create app_db@db.internal:3307 user=u password=p"}
	if !reflect.DeepEqual(exec.calls, expected) {
		t.Errorf("Неправильные вызовы.\nОжидалось: %v\nПолучено:  %v", expected, exec.calls)
	}
}

func TestRunMigrateOnly(t *testing.T) {
	// Без флагов жизненного цикла выполняется только миграция.
	exec := &fakeExecutor{}
	migrate := &fakeMigrator{}

	err := newTestOrchestrator(exec, &fakePrompter{}, migrate).Run(context.Background(), nil, Request{})
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(exec.calls) != 0 {
		t.Errorf("Не должно быть вызовов к серверу")
	}
	if migrate.called != 1 {
		t.Errorf("Миграция должна вызываться ровно один раз")
	}
}

func TestTerminalPrompter(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Ответ y — согласие", "y\n", true},
		{"Ответ yes — согласие", "yes\n", true},
		{"Ответ да — согласие", "да\n", true},
		{"Ответ n — отказ", "n\n", false},
		{"Пустой ответ — отказ", "\n", false},
		{"EOF — отказ", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var out strings.Builder
			p := &TerminalPrompter{In: strings.NewReader(tc.input), Out: &out}
			got, err := p.Confirm("Удалить?")
			if err != nil {
				t.Fatalf("Неожиданная ошибка: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Ожидалось %v, получено %v", tc.expected, got)
			}
			if !strings.Contains(out.String(), "Удалить?") {
				t.Errorf("Вопрос должен быть напечатан, получено '%s'", out.String())
			}
		})
	}
}
