package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/waste3d/anvil/cmd/anvil/cli/helpers"
	"github.com/waste3d/anvil/internal/templates"
)

var (
	renderTemplatesDir string
	renderOutDir       string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Генерирует конфигурацию веб-сервера из шаблонов",
	Long:  "Раскрывает подстановки во всех шаблонах выбранного типа AMI без каких-либо операций над базами данных.",
	Run:   runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderTemplatesDir, "templates", "templates", "Корневая директория шаблонов конфигурации")
	renderCmd.Flags().StringVar(&renderOutDir, "out", "generated", "Директория для сгенерированных файлов")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) {
	if err := runRenderLogic(); err != nil {
		errorLog(os.Stderr, "\n❌ Ошибка выполнения 'render': %v\n", err)
		os.Exit(exitCodeFor(err))
	}
	successLog("\n✅ Конфигурация сгенерирована.\n")
}

func runRenderLogic() error {
	d, err := helpers.Load(configPath)
	if err != nil {
		return err
	}

	renderer := templates.NewRenderer(newLogger())
	written, err := renderer.Render(d.TemplateDir(renderTemplatesDir), renderOutDir, d.Placeholders())
	if err != nil {
		return err
	}

	for _, file := range written {
		infoLog("  %s\n", file)
	}
	return nil
}
