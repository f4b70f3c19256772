package cli

import (
	"errors"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/waste3d/anvil/cmd/anvil/cli/helpers"
	"github.com/waste3d/anvil/internal/exitcode"
	"github.com/waste3d/anvil/internal/lifecycle"
	"github.com/waste3d/anvil/internal/settings"
	"github.com/waste3d/anvil/pkg/config"
)

const version = "v0.1.0"

var (
	infoLog    = color.New(color.FgYellow).Printf
	successLog = color.New(color.FgGreen).Printf
	errorLog   = color.New(color.FgRed).Fprintf
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "anvil",
	Short: "Anvil - развертывание Django-проектов",
	Long: `Anvil читает anvil.yaml и сгенерированный settings.py проекта,
разрешает подключения к базам данных, выполняет их жизненный цикл
и генерирует конфигурацию веб-сервера из шаблонов.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "anvil.yaml", "Путь к файлу конфигурации")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Подробный вывод")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitCodeFor отображает ошибку на фиксированный код выхода. Внешние
// скрипты различают причины завершения по числовым значениям.
func exitCodeFor(err error) int {
	if err == nil {
		return exitcode.OK
	}

	var missingKey *config.MissingKeyError
	if errors.As(err, &missingKey) {
		switch missingKey.Key {
		case config.KeyServerName:
			return exitcode.MissingServerName
		case config.KeyServerAdmin:
			return exitcode.MissingServerAdmin
		case config.KeyAMIType:
			return exitcode.MissingAMIType
		case config.KeyProjectName:
			return exitcode.MissingProjectName
		case config.KeyPythonVersion:
			return exitcode.MissingPythonVersion
		}
		return exitcode.Usage
	}

	var unknownAMI *config.UnknownAMITypeError
	if errors.As(err, &unknownAMI) {
		return exitcode.UnknownAMIType
	}

	var missingField *settings.MissingFieldError
	if errors.As(err, &missingField) {
		switch missingField.Field {
		case settings.FieldEngine:
			return exitcode.SettingsNoEngine
		case settings.FieldName:
			return exitcode.SettingsNoName
		case settings.FieldUser:
			return exitcode.SettingsNoUser
		case settings.FieldPassword:
			return exitcode.SettingsNoPassword
		}
		return exitcode.Usage
	}

	var unknownEngine *settings.UnknownEngineError
	var portInference *settings.PortInferenceError
	if errors.As(err, &unknownEngine) || errors.As(err, &portInference) {
		return exitcode.UnknownDatabaseEngine
	}

	var unsupported *lifecycle.UnsupportedOperationError
	if errors.As(err, &unsupported) {
		if unsupported.Operation == lifecycle.OpReset {
			return exitcode.UnsupportedReset
		}
		return exitcode.UnsupportedCreate
	}

	var settingsRead *helpers.SettingsReadError
	if errors.As(err, &settingsRead) {
		return exitcode.MissingArgument
	}

	if errors.Is(err, os.ErrNotExist) {
		return exitcode.ConfigNotFound
	}

	return exitcode.Usage
}
