package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/waste3d/anvil/internal/settings"
	"github.com/waste3d/anvil/internal/templates"
	"github.com/waste3d/anvil/pkg/config"
)

// Deployment — конфигурация текущего запуска с проверенными обязательными
// значениями и профилем целевой машины.
type Deployment struct {
	Config        *config.Config
	ServerName    string
	ServerAdmin   string
	ProjectName   string
	PythonVersion string
	AMIType       string
	Profile       templates.AMIProfile
}

// Load читает anvil.yaml и проверяет обязательные значения. Любое
// отсутствующее значение — отдельная ошибка со своим кодом выхода.
func Load(configPath string) (*Deployment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	d := &Deployment{Config: cfg}

	if d.ServerName, err = cfg.Require(config.KeyServerName); err != nil {
		return nil, err
	}
	if d.ServerAdmin, err = cfg.Require(config.KeyServerAdmin); err != nil {
		return nil, err
	}
	if d.ProjectName, err = cfg.Require(config.KeyProjectName); err != nil {
		return nil, err
	}
	if d.PythonVersion, err = cfg.Require(config.KeyPythonVersion); err != nil {
		return nil, err
	}
	if d.AMIType, err = cfg.AMIType(); err != nil {
		return nil, err
	}
	if d.Profile, err = templates.ProfileFor(d.AMIType); err != nil {
		return nil, err
	}
	return d, nil
}

// SettingsPath возвращает путь к сгенерированному settings.py. Явный путь
// имеет приоритет; иначе путь выводится из django.settings_module, а при
// его отсутствии — из имени проекта.
func (d *Deployment) SettingsPath(explicit, projectDir string) string {
	if explicit != "" {
		return explicit
	}
	if module, ok := d.Config.Get(config.KeySettingsModule); ok {
		return filepath.Join(projectDir, strings.ReplaceAll(module, ".", string(filepath.Separator))+".py")
	}
	return filepath.Join(projectDir, d.ProjectName, "settings.py")
}

// SettingsReadError — файл настроек не удалось прочитать. Отличается от
// отсутствия файла конфигурации: у этих случаев разные коды выхода.
type SettingsReadError struct {
	Path string
	Err  error
}

func (e *SettingsReadError) Error() string {
	return fmt.Sprintf("не удалось прочитать файл настроек %s: %v", e.Path, e.Err)
}

func (e *SettingsReadError) Unwrap() error { return e.Err }

// LoadSpecs читает settings.py и разрешает полный список баз данных.
func (d *Deployment) LoadSpecs(settingsPath, projectDir string) ([]settings.DatabaseSpec, error) {
	content, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, &SettingsReadError{Path: settingsPath, Err: err}
	}

	records, err := settings.Extract(string(content), projectDir)
	if err != nil {
		return nil, err
	}
	return settings.Resolve(records)
}

// Placeholders строит набор подстановок текущего запуска.
func (d *Deployment) Placeholders() templates.PlaceholderSet {
	return templates.NewPlaceholderSet(d.ServerName, d.ServerAdmin, d.ProjectName, d.Profile)
}

// TemplateDir возвращает директорию шаблонов для выбранного типа AMI.
func (d *Deployment) TemplateDir(root string) string {
	return filepath.Join(root, d.AMIType)
}

// VenvPython возвращает путь к интерпретатору внутри virtualenv проекта.
func (d *Deployment) VenvPython(projectDir string) string {
	return filepath.Join(projectDir, "venv", "bin", "python")
}
