package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/waste3d/anvil/internal/settings"
	"github.com/waste3d/anvil/internal/templates"
)

// Input — всё, что нужно для отчёта о ручных шагах развертывания.
type Input struct {
	ProjectName   string
	PythonVersion string
	ServerName    string
	Profile       templates.AMIProfile
	Specs         []settings.DatabaseSpec
	ImageID       string // идентификатор образа AMI, пусто если не разрешён
}

// Build собирает markdown-отчёт о шагах, которые инструмент не выполняет
// автоматически: базы postgresql, virtualenv, перезапуск веб-сервера и
// запуск машины.
func Build(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Ручные шаги развертывания: %s\n\n", in.ProjectName)

	if in.ImageID != "" {
		fmt.Fprintf(&b, "## Машина\n\nЗапустите инстанс из образа `%s` (семейство %s).\n\n", in.ImageID, in.Profile.Name)
	} else {
		fmt.Fprintf(&b, "## Машина\n\nЗапустите инстанс из свежего образа семейства %s.\n\n", in.Profile.Name)
	}

	postgres := make([]settings.DatabaseSpec, 0, len(in.Specs))
	for _, spec := range in.Specs {
		if spec.Engine == settings.EnginePostgreSQL {
			postgres = append(postgres, spec)
		}
	}
	if len(postgres) > 0 {
		b.WriteString("## Базы PostgreSQL\n\nАвтоматический сброс и создание для postgresql не выполняются. Выполните вручную:\n\n")
		for _, spec := range postgres {
			fmt.Fprintf(&b, "```sql\n-- на %s:%d от имени %s\nCREATE DATABASE %s;\n```\n\n", spec.Host, spec.Port, spec.User, spec.Name)
		}
	}

	fmt.Fprintf(&b, "## Окружение Python\n\n")
	fmt.Fprintf(&b, "```sh\nsudo -u %s python%s -m venv /home/%s/%s/venv\n", in.Profile.User, in.PythonVersion, in.Profile.User, in.ProjectName)
	fmt.Fprintf(&b, "/home/%s/%s/venv/bin/pip install -r requirements.txt\n```\n\n", in.Profile.User, in.ProjectName)

	fmt.Fprintf(&b, "## Веб-сервер\n\n")
	fmt.Fprintf(&b, "Скопируйте сгенерированные конфигурационные файлы и перезапустите службу:\n\n")
	fmt.Fprintf(&b, "```sh\nsudo systemctl restart %s\n```\n\n", in.Profile.Service)
	fmt.Fprintf(&b, "После перезапуска сайт должен отвечать на https://%s/\n", in.ServerName)

	return b.String()
}

// Print выводит отчёт в терминал через glamour; при ошибке рендера
// печатает сырой markdown.
func Print(markdown string) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Println(markdown)
		return
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		fmt.Println(markdown)
	} else {
		fmt.Print(out)
	}
}
