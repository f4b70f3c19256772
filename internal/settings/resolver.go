package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// Engine — конкретный бэкенд базы данных.
type Engine string

const (
	EngineSQLite3    Engine = "sqlite3"
	EngineMySQL      Engine = "mysql"
	EnginePostgreSQL Engine = "postgresql"
)

// Networked сообщает, требует ли бэкенд сетевого подключения.
// Для sqlite3 host/port/user/password не имеют смысла.
func (e Engine) Networked() bool {
	return e != EngineSQLite3
}

// Значения по умолчанию для сетевых бэкендов.
const (
	DefaultMySQLPort      = 3306
	DefaultPostgreSQLPort = 5432
	DefaultHost           = "localhost"
)

// DatabaseSpec — полностью разрешённое описание одной настроенной базы.
// После построения запись не изменяется.
type DatabaseSpec struct {
	Engine   Engine
	Name     string
	Host     string
	Port     int
	User     string
	Password string
}

// UnknownEngineError — бэкенд из настроек не входит в поддерживаемый набор.
type UnknownEngineError struct {
	Value string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("неизвестный движок базы данных '%s'", e.Value)
}

// PortInferenceError — порт не задан, а для движка записи нет значения
// по умолчанию.
type PortInferenceError struct {
	Name string
}

func (e *PortInferenceError) Error() string {
	return fmt.Sprintf("не удалось определить порт по умолчанию для базы '%s'", e.Name)
}

// ParseEngine отображает путь Django-бэкенда (django.db.backends.mysql)
// либо короткое имя на значение перечисления.
func ParseEngine(value string) (Engine, error) {
	short := value
	if i := strings.LastIndex(value, "."); i >= 0 {
		short = value[i+1:]
	}
	switch Engine(short) {
	case EngineSQLite3, EngineMySQL, EnginePostgreSQL:
		return Engine(short), nil
	}
	return "", &UnknownEngineError{Value: value}
}

// Resolve превращает сырые записи в последовательность DatabaseSpec.
// Порядок объявления сохраняется, дубликаты не удаляются. Любая ошибка
// фатальна: либо возвращается полная последовательность, либо ничего.
func Resolve(records []RawRecord) ([]DatabaseSpec, error) {
	specs := make([]DatabaseSpec, 0, len(records))

	for _, rec := range records {
		engine, err := ParseEngine(rec.Engine)
		if err != nil {
			return nil, err
		}

		spec := DatabaseSpec{
			Engine: engine,
			Name:   rec.Name,
		}

		if engine.Networked() {
			if rec.User == "" {
				return nil, &MissingFieldError{Field: FieldUser}
			}
			if rec.Password == "" {
				return nil, &MissingFieldError{Field: FieldPassword}
			}
			spec.User = rec.User
			spec.Password = rec.Password

			spec.Host = rec.Host
			if spec.Host == "" {
				spec.Host = DefaultHost
			}

			if rec.Port == "" {
				spec.Port, err = inferPort(engine, rec.Name)
				if err != nil {
					return nil, err
				}
			} else {
				spec.Port, err = strconv.Atoi(rec.Port)
				if err != nil {
					return nil, fmt.Errorf("некорректное значение порта '%s' для базы '%s': %w", rec.Port, rec.Name, err)
				}
			}
		}

		specs = append(specs, spec)
	}
	return specs, nil
}

func inferPort(engine Engine, name string) (int, error) {
	switch engine {
	case EngineMySQL:
		return DefaultMySQLPort, nil
	case EnginePostgreSQL:
		return DefaultPostgreSQLPort, nil
	}
	return 0, &PortInferenceError{Name: name}
}
