package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ключи конфигурации anvil.yaml в плоском виде "секция.имя".
const (
	KeyServerName     = "apache.server_name"
	KeyServerAdmin    = "apache.server_admin"
	KeyAMIType        = "aws.ami_type"
	KeyAWSRegion      = "aws.region"
	KeyProjectName    = "django.project_name"
	KeySettingsModule = "django.settings_module"
	KeyPythonVersion  = "misc.python_version"
	KeyLoadTestData   = "misc.load_test_data"
)

// Допустимые значения aws.ami_type.
const (
	AMIAmazonLinux = "amazon-linux"
	AMIUbuntu      = "ubuntu"
)

// MissingKeyError — обязательное значение отсутствует в конфигурации.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("обязательное значение '%s' не задано в конфигурации", e.Key)
}

// UnknownAMITypeError — значение aws.ami_type вне допустимого набора.
type UnknownAMITypeError struct {
	Value string
}

func (e *UnknownAMITypeError) Error() string {
	return fmt.Sprintf("неизвестный тип AMI '%s' (допустимо: %s, %s)", e.Value, AMIAmazonLinux, AMIUbuntu)
}

// Config — плоское пространство имён ключ/значение, полученное из anvil.yaml.
// После загрузки не изменяется.
type Config struct {
	values map[string]string
}

// Load читает и разбирает файл конфигурации.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
	}
	return Parse(content)
}

// Parse разбирает YAML и разворачивает вложенные секции в плоские ключи
// вида "apache.server_name".
func Parse(content []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("конфигурация пуста")
	}

	values := make(map[string]string)
	flatten("", raw, values)
	return &Config{values: values}, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(full, v, out)
		case nil:
			out[full] = ""
		default:
			out[full] = fmt.Sprint(v)
		}
	}
}

// Get возвращает значение ключа; пустая строка считается отсутствием.
func (c *Config) Get(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Require возвращает значение обязательного ключа.
func (c *Config) Require(key string) (string, error) {
	v, ok := c.Get(key)
	if !ok {
		return "", &MissingKeyError{Key: key}
	}
	return v, nil
}

// Bool трактует значение как булево в духе shell-скриптов: "yes", "true"
// и "1" — истина, всё остальное (включая отсутствие ключа) — ложь.
func (c *Config) Bool(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	switch strings.ToLower(v) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// AMIType возвращает проверенный тип AMI.
func (c *Config) AMIType() (string, error) {
	v, err := c.Require(KeyAMIType)
	if err != nil {
		return "", err
	}
	if v != AMIAmazonLinux && v != AMIUbuntu {
		return "", &UnknownAMITypeError{Value: v}
	}
	return v, nil
}

// Keys возвращает отсортированный список известных ключей. Используется
// в отладочном выводе.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
