package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Renderer раскрывает подстановки во всех файлах директории шаблонов
// и пишет результат в выходную директорию.
type Renderer struct {
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render обрабатывает каждый файл templateDir и кладёт одноимённый результат
// в outDir. Выходная директория пересоздаётся целиком, чтобы от прошлых
// запусков не оставалось устаревших файлов. Возвращает список записанных
// файлов в порядке обработки.
func (r *Renderer) Render(templateDir, outDir string, set PlaceholderSet) ([]string, error) {
	entries, err := os.ReadDir(templateDir)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать директорию шаблонов %s: %w", templateDir, err)
	}

	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("не удалось очистить выходную директорию %s: %w", outDir, err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать выходную директорию %s: %w", outDir, err)
	}

	var written []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		src := filepath.Join(templateDir, entry.Name())
		content, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать шаблон %s: %w", src, err)
		}

		dst := filepath.Join(outDir, entry.Name())
		if err := os.WriteFile(dst, []byte(set.Apply(string(content))), 0644); err != nil {
			return nil, fmt.Errorf("не удалось записать файл %s: %w", dst, err)
		}

		r.logger.Debug("шаблон обработан", "template", src, "output", dst)
		written = append(written, dst)
	}

	return written, nil
}
