package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/waste3d/anvil/cmd/anvil/cli/helpers"
	"github.com/waste3d/anvil/internal/cloud"
	"github.com/waste3d/anvil/internal/report"
	"github.com/waste3d/anvil/pkg/config"
)

var (
	reportSettingsPath string
	reportProjectDir   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Показывает ручные шаги развертывания",
	Long: `Собирает отчёт о шагах, которые anvil не выполняет автоматически:
базы postgresql, virtualenv, перезапуск веб-сервера, запуск машины.
Если в конфигурации задан aws.region, идентификатор свежего образа AMI
запрашивается у EC2.`,
	Run: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportSettingsPath, "settings", "", "Путь к сгенерированному settings.py (по умолчанию выводится из конфигурации)")
	reportCmd.Flags().StringVar(&reportProjectDir, "project-dir", ".", "Корневая директория проекта (BASE_DIR)")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) {
	if err := runReportLogic(cmd.Context()); err != nil {
		errorLog(os.Stderr, "\n❌ Ошибка выполнения 'report': %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func runReportLogic(ctx context.Context) error {
	logger := newLogger()

	d, err := helpers.Load(configPath)
	if err != nil {
		return err
	}

	settingsPath := d.SettingsPath(reportSettingsPath, reportProjectDir)
	specs, err := d.LoadSpecs(settingsPath, reportProjectDir)
	if err != nil {
		return err
	}

	in := report.Input{
		ProjectName:   d.ProjectName,
		PythonVersion: d.PythonVersion,
		ServerName:    d.ServerName,
		Profile:       d.Profile,
		Specs:         specs,
	}

	// Образ AMI — необязательное украшение отчёта: без региона или при
	// недоступности EC2 отчёт просто называет семейство.
	if region, ok := d.Config.Get(config.KeyAWSRegion); ok {
		resolver, err := cloud.New(ctx, region)
		if err != nil {
			logger.Warn("не удалось создать клиента EC2", "error", err)
		} else if imageID, err := resolver.LatestImage(ctx, d.AMIType); err != nil {
			logger.Warn("не удалось разрешить образ AMI", "error", err)
		} else {
			in.ImageID = imageID
		}
	}

	report.Print(report.Build(in))
	return nil
}
