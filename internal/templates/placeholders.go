package templates

import (
	"fmt"
	"path"
	"regexp"
)

// Имена подстановок, которые распознаются в шаблонах.
const (
	PlaceholderServerName     = "SERVER_NAME"
	PlaceholderServerAdmin    = "SERVER_ADMIN"
	PlaceholderProjectName    = "PROJECT_NAME"
	PlaceholderProjectHome    = "PROJECT_HOME"
	PlaceholderVirtualenvHome = "VIRTUALENV_HOME"
)

// AMIProfile — параметры целевой машины, зависящие от семейства образа:
// системный пользователь, имя службы веб-сервера и поддиректория шаблонов.
type AMIProfile struct {
	Name    string
	User    string
	Service string
}

var amiProfiles = map[string]AMIProfile{
	"amazon-linux": {Name: "amazon-linux", User: "ec2-user", Service: "httpd"},
	"ubuntu":       {Name: "ubuntu", User: "ubuntu", Service: "apache2"},
}

// ProfileFor возвращает профиль для типа AMI.
func ProfileFor(amiType string) (AMIProfile, error) {
	profile, ok := amiProfiles[amiType]
	if !ok {
		return AMIProfile{}, fmt.Errorf("неизвестный тип AMI '%s'", amiType)
	}
	return profile, nil
}

// placeholder — одна подстановка с заранее скомпилированным маркером.
type placeholder struct {
	name    string
	value   string
	pattern *regexp.Regexp
}

// PlaceholderSet — неизменяемый набор подстановок текущего развертывания.
// Порядок применения фиксирован; имена подстановок не пересекаются, поэтому
// результат совпадает с одновременной заменой всех маркеров.
type PlaceholderSet struct {
	placeholders []placeholder
}

// NewPlaceholderSet строит набор подстановок из значений конфигурации
// и профиля AMI. Домашняя директория проекта и virtualenv выводятся из
// системного пользователя профиля.
func NewPlaceholderSet(serverName, serverAdmin, projectName string, profile AMIProfile) PlaceholderSet {
	projectHome := path.Join("/home", profile.User, projectName)
	values := []struct{ name, value string }{
		{PlaceholderServerName, serverName},
		{PlaceholderServerAdmin, serverAdmin},
		{PlaceholderProjectName, projectName},
		{PlaceholderProjectHome, projectHome},
		{PlaceholderVirtualenvHome, path.Join(projectHome, "venv")},
	}

	set := PlaceholderSet{placeholders: make([]placeholder, 0, len(values))}
	for _, v := range values {
		set.placeholders = append(set.placeholders, placeholder{
			name:    v.name,
			value:   v.value,
			pattern: markerPattern(v.name),
		})
	}
	return set
}

// markerPattern распознаёт маркер вида {{ NAME }} с произвольными
// пробелами внутри скобок.
func markerPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(name) + `\s*\}\}`)
}

// Apply заменяет в тексте все маркеры известных подстановок. Нераспознанные
// маркеры остаются как есть: шаблон может содержать собственный текст,
// похожий на синтаксис маркера.
func (s PlaceholderSet) Apply(text string) string {
	for _, p := range s.placeholders {
		text = p.pattern.ReplaceAllLiteralString(text, p.value)
	}
	return text
}

// Value возвращает значение подстановки по имени.
func (s PlaceholderSet) Value(name string) (string, bool) {
	for _, p := range s.placeholders {
		if p.name == name {
			return p.value, true
		}
	}
	return "", false
}
