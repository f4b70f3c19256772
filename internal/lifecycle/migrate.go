package lifecycle

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
)

// ManageMigrator вызывает manage.py внутри virtualenv проекта.
type ManageMigrator struct {
	ProjectDir   string
	Python       string // путь к интерпретатору внутри virtualenv
	LoadTestData bool
	logger       *slog.Logger
}

func NewManageMigrator(projectDir, python string, loadTestData bool, logger *slog.Logger) *ManageMigrator {
	return &ManageMigrator{
		ProjectDir:   projectDir,
		Python:       python,
		LoadTestData: loadTestData,
		logger:       logger,
	}
}

// Migrate запускает миграцию схемы, а затем, если включено в конфигурации,
// загрузку тестовых данных.
func (m *ManageMigrator) Migrate(ctx context.Context) error {
	if err := m.manage(ctx, "migrate", "--noinput"); err != nil {
		return err
	}
	if m.LoadTestData {
		return m.manage(ctx, "loaddata", "test_data")
	}
	return nil
}

func (m *ManageMigrator) manage(ctx context.Context, args ...string) error {
	cmdArgs := append([]string{"manage.py"}, args...)
	cmd := exec.CommandContext(ctx, m.Python, cmdArgs...)
	cmd.Dir = m.ProjectDir

	m.logger.Info("вызов manage.py", "args", strings.Join(args, " "), "dir", m.ProjectDir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("manage.py %s завершился с ошибкой: %w, вывод: %s", strings.Join(args, " "), err, string(output))
	}
	m.logger.Debug("manage.py завершён", "output", strings.TrimSpace(string(output)))
	return nil
}

// TerminalPrompter получает подтверждение оператора из терминала.
// Ответами "да" считаются y/yes/да; всё остальное — отказ.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/N]: ", question)

	reader := bufio.NewReader(p.In)
	text, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(text)) {
	case "y", "yes", "да":
		return true, nil
	}
	return false, nil
}
