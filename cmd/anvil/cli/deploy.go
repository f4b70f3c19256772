package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/waste3d/anvil/cmd/anvil/cli/helpers"
	"github.com/waste3d/anvil/internal/lifecycle"
	"github.com/waste3d/anvil/internal/state"
	"github.com/waste3d/anvil/internal/templates"
	"github.com/waste3d/anvil/pkg/config"
)

var (
	deploySettingsPath string
	deployProjectDir   string
	deployTemplatesDir string
	deployOutDir       string
	createDatabase     bool
	resetDatabase      bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Выполняет развертывание: базы данных, конфигурация, миграции",
	Long: `Команда 'deploy' разрешает подключения к базам из settings.py,
выполняет запрошенные операции жизненного цикла (--reset-db, --create-db),
генерирует конфигурацию веб-сервера и один раз запускает миграции схемы.`,
	Run: runDeploy,
}

func init() {
	deployCmd.Flags().StringVar(&deploySettingsPath, "settings", "", "Путь к сгенерированному settings.py (по умолчанию выводится из конфигурации)")
	deployCmd.Flags().StringVar(&deployProjectDir, "project-dir", ".", "Корневая директория проекта (BASE_DIR)")
	deployCmd.Flags().StringVar(&deployTemplatesDir, "templates", "templates", "Корневая директория шаблонов конфигурации")
	deployCmd.Flags().StringVar(&deployOutDir, "out", "generated", "Директория для сгенерированных файлов")
	deployCmd.Flags().BoolVar(&createDatabase, "create-db", false, "Создать базы данных перед миграцией")
	deployCmd.Flags().BoolVar(&resetDatabase, "reset-db", false, "Сбросить базы данных (подразумевает создание)")

	rootCmd.AddCommand(deployCmd)
}

func runDeploy(cmd *cobra.Command, args []string) {
	err := runDeployLogic(cmd.Context())
	if errors.Is(err, lifecycle.ErrAborted) {
		// Осознанный отказ оператора: не ошибка, но и не полное развертывание.
		infoLog("\nРазвертывание прервано оператором.\n")
		os.Exit(exitCodeFor(nil))
	}
	if err != nil {
		errorLog(os.Stderr, "\n❌ Ошибка выполнения 'deploy': %v\n", err)
		os.Exit(exitCodeFor(err))
	}
	successLog("\n✅ Развертывание успешно завершено.\n")
}

func runDeployLogic(ctx context.Context) error {
	logger := newLogger()

	d, err := helpers.Load(configPath)
	if err != nil {
		return err
	}
	logger = logger.With("project", d.ProjectName)

	settingsPath := d.SettingsPath(deploySettingsPath, deployProjectDir)
	infoLog("Чтение настроек из %s...\n", settingsPath)
	specs, err := d.LoadSpecs(settingsPath, deployProjectDir)
	if err != nil {
		return err
	}
	logger.Debug("базы данных разрешены", "count", len(specs))

	req := lifecycle.Request{
		CreateDatabase: createDatabase,
		ResetDatabase:  resetDatabase,
		Verbose:        verbose,
	}

	migrator := &spinnerMigrator{
		inner: lifecycle.NewManageMigrator(
			deployProjectDir,
			d.VenvPython(deployProjectDir),
			d.Config.Bool(config.KeyLoadTestData),
			logger,
		),
	}
	prompter := &lifecycle.TerminalPrompter{In: os.Stdin, Out: os.Stdout}
	orchestrator := lifecycle.New(lifecycle.NewMySQLExecutor(logger), prompter, migrator, logger)

	runErr := orchestrator.Run(ctx, specs, req)
	recordRun(d.ProjectName, req, runErr, logger)
	if runErr != nil {
		return runErr
	}

	infoLog("Генерация конфигурации веб-сервера...\n")
	renderer := templates.NewRenderer(logger)
	written, err := renderer.Render(d.TemplateDir(deployTemplatesDir), deployOutDir, d.Placeholders())
	if err != nil {
		return err
	}
	for _, file := range written {
		infoLog("  %s\n", file)
	}

	return nil
}

// recordRun сохраняет итог запуска в истории. Недоступность истории не
// должна ломать развертывание, поэтому ошибки только логируются.
func recordRun(project string, req lifecycle.Request, runErr error, logger *slog.Logger) {
	manager, err := state.NewManager()
	if err != nil {
		logger.Warn("история развертываний недоступна", "error", err)
		return
	}
	defer manager.Close()

	var ops []string
	if req.ResetDatabase {
		ops = append(ops, "reset")
	}
	if req.CreateDatabase || req.ResetDatabase {
		ops = append(ops, "create")
	}
	ops = append(ops, "migrate")

	outcome := state.OutcomeOK
	switch {
	case errors.Is(runErr, lifecycle.ErrAborted):
		outcome = state.OutcomeAborted
	case runErr != nil:
		outcome = state.OutcomeFailed
	}

	if _, err := manager.AddRun(project, strings.Join(ops, ","), outcome); err != nil {
		logger.Warn("не удалось записать историю запуска", "error", err)
	}
}

// spinnerMigrator показывает индикатор выполнения на время миграции.
type spinnerMigrator struct {
	inner lifecycle.Migrator
}

func (s *spinnerMigrator) Migrate(ctx context.Context) error {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = " Выполняю миграции схемы... (может занять до минуты)"
	sp.Start()
	defer sp.Stop()
	return s.inner.Migrate(ctx)
}
