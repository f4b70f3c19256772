package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Итоги запуска развертывания.
const (
	OutcomeOK      = "ok"
	OutcomeAborted = "aborted"
	OutcomeFailed  = "failed"
)

// Run — одна запись истории развертываний.
type Run struct {
	ID         string
	Project    string
	Operations string
	Outcome    string
	CreatedAt  time.Time
}

type Manager struct {
	db *sql.DB
}

func NewManager() (*Manager, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("не удалось определить домашнюю директорию: %w", err)
	}
	dbPath := filepath.Join(home, ".anvil")
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для базы данных: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbPath, "anvil.db"))
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть базу данных: %w", err)
	}

	m := &Manager{db: db}

	if err := m.createTables(); err != nil {
		return nil, fmt.Errorf("не удалось создать таблицы: %w", err)
	}
	return m, nil
}

func (m *Manager) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER primary key autoincrement,
		run_id text not null,
		project text not null,
		operations text not null, -- "reset,create,migrate" и т.п.
		outcome text not null,    -- "ok", "aborted", "failed"
		created_at datetime default current_timestamp
	);
	`

	_, err := m.db.Exec(query)
	return err
}

// AddRun записывает итог одного запуска и возвращает его идентификатор.
func (m *Manager) AddRun(project, operations, outcome string) (string, error) {
	runID := uuid.New().String()
	query := `insert into runs (run_id, project, operations, outcome) values (?, ?, ?, ?)`
	if _, err := m.db.Exec(query, runID, project, operations, outcome); err != nil {
		return "", fmt.Errorf("не удалось записать историю запуска: %w", err)
	}
	return runID, nil
}

// Runs возвращает историю запусков, новые первыми.
func (m *Manager) Runs() ([]Run, error) {
	query := "SELECT run_id, project, operations, outcome, created_at FROM runs ORDER BY created_at DESC, id DESC"
	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить историю запусков: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Project, &r.Operations, &r.Outcome, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки истории: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, nil
}

// RunsByProject возвращает историю запусков одного проекта.
func (m *Manager) RunsByProject(project string) ([]Run, error) {
	query := "SELECT run_id, project, operations, outcome, created_at FROM runs WHERE project = ? ORDER BY created_at DESC, id DESC"
	rows, err := m.db.Query(query, project)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить историю запусков: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Project, &r.Operations, &r.Outcome, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки истории: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, nil
}

func (m *Manager) Close() {
	m.db.Close()
}
