package settings

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Маркеры полей в сгенерированном settings.py.
const (
	FieldEngine   = "ENGINE"
	FieldName     = "NAME"
	FieldUser     = "USER"
	FieldPassword = "PASSWORD"
	FieldHost     = "HOST"
	FieldPort     = "PORT"
)

// MissingFieldError — обязательный маркер не найден в тексте настроек.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("в файле настроек не найдено значение '%s'", e.Field)
}

// RawRecord — сырые значения одного блока базы данных, как они записаны
// в тексте настроек. Выравниванием и значениями по умолчанию занимается
// Resolve.
type RawRecord struct {
	Engine   string
	Name     string
	User     string
	Password string
	Host     string
	Port     string
}

var (
	// 'NAME': os.path.join(BASE_DIR, 'db.sqlite3')  либо  'NAME': BASE_DIR / 'db.sqlite3'
	reJoinName = regexp.MustCompile(`['"]NAME['"]\s*:\s*(?:os\.path\.join\(\s*BASE_DIR\s*,\s*['"]([^'"]+)['"]\s*\)|BASE_DIR\s*/\s*['"]([^'"]+)['"])`)

	// Обычная запись поля: 'ENGINE': 'django.db.backends.mysql'
	reField = regexp.MustCompile(`['"](ENGINE|NAME|USER|PASSWORD|HOST|PORT)['"]\s*:\s*['"]([^'"]*)['"]`)

	// Порт без кавычек: 'PORT': 3306
	rePortBare = regexp.MustCompile(`['"]PORT['"]\s*:\s*(\d+)`)
)

// Extract за один проход по тексту настроек собирает упорядоченный список
// сырых записей баз данных. Каждый маркер ENGINE открывает новую запись,
// последующие поля до следующего ENGINE относятся к ней — поля одного
// блока не могут разъехаться по индексам. baseDir подставляется вместо
// BASE_DIR в путях sqlite.
//
// Значения, принадлежащие библиотечным константам (валидаторы паролей из
// django.contrib.auth записываются под тем же маркером 'NAME'),
// отбрасываются. Запись без имени фатальна.
func Extract(text, baseDir string) ([]RawRecord, error) {
	var records []RawRecord
	cur := -1

	for _, line := range strings.Split(text, "\n") {
		if m := reJoinName.FindStringSubmatch(line); m != nil {
			if cur < 0 {
				continue
			}
			rel := m[1]
			if rel == "" {
				rel = m[2]
			}
			if records[cur].Name == "" {
				records[cur].Name = filepath.Join(baseDir, rel)
			}
			continue
		}

		if m := reField.FindStringSubmatch(line); m != nil {
			field, value := m[1], strings.TrimSpace(m[2])

			if field == FieldEngine {
				records = append(records, RawRecord{Engine: value})
				cur++
				continue
			}
			if cur < 0 {
				// Значение вне блоков баз данных.
				continue
			}
			if value == "" {
				// Пустые литералы ('HOST': '') означают "не задано".
				continue
			}
			if field == FieldName && strings.HasPrefix(value, "django.") {
				// Библиотечная константа, к базам отношения не имеет.
				continue
			}

			rec := &records[cur]
			switch field {
			case FieldName:
				if rec.Name == "" {
					rec.Name = value
				}
			case FieldUser:
				rec.User = value
			case FieldPassword:
				rec.Password = value
			case FieldHost:
				rec.Host = value
			case FieldPort:
				rec.Port = value
			}
			continue
		}

		if m := rePortBare.FindStringSubmatch(line); m != nil && cur >= 0 {
			records[cur].Port = m[1]
		}
	}

	if len(records) == 0 {
		return nil, &MissingFieldError{Field: FieldEngine}
	}
	for _, rec := range records {
		if rec.Name == "" {
			return nil, &MissingFieldError{Field: FieldName}
		}
	}
	return records, nil
}
