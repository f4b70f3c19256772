package templates

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testSet() PlaceholderSet {
	profile, _ := ProfileFor("ubuntu")
	return NewPlaceholderSet("example.com", "admin@example.com", "mysite", profile)
}

func TestApply(t *testing.T) {
	set := testSet()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Обычный маркер",
			input:    "ServerName {{ SERVER_NAME }}",
			expected: "ServerName example.com",
		},
		{
			name:     "Произвольные пробелы внутри маркера",
			input:    "ServerName {{SERVER_NAME}} и {{   SERVER_NAME   }}",
			expected: "ServerName example.com и example.com",
		},
		{
			name:     "Нераспознанный маркер остаётся как есть",
			input:    "{{ UNKNOWN }} {{ SERVER_ADMIN }}",
			expected: "{{ UNKNOWN }} admin@example.com",
		},
		{
			name:     "Производные пути проекта",
			input:    "WSGIDaemonProcess {{ PROJECT_NAME }} python-home={{ VIRTUALENV_HOME }} home={{ PROJECT_HOME }}",
			expected: "WSGIDaemonProcess mysite python-home=/home/ubuntu/mysite/venv home=/home/ubuntu/mysite",
		},
		{
			name:     "Текст без маркеров не изменяется",
			input:    "# обычный комментарий { не маркер }",
			expected: "# обычный комментарий { не маркер }",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := set.Apply(tc.input)
			if got != tc.expected {
				t.Errorf("Ожидалось:\n%s\nПолучено:\n%s", tc.expected, got)
			}
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	set := testSet()
	input := "ServerName {{ SERVER_NAME }}\nServerAdmin {{ SERVER_ADMIN }}\n"

	once := set.Apply(input)
	twice := set.Apply(once)
	if once != twice {
		t.Errorf("Повторное применение изменило результат:\n%s\n!=\n%s", once, twice)
	}
}

func TestRender(t *testing.T) {
	templateDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "generated")

	vhost := "ServerName {{ SERVER_NAME }}\nServerAdmin {{ SERVER_ADMIN }}\n"
	if err := os.WriteFile(filepath.Join(templateDir, "vhost.conf"), []byte(vhost), 0644); err != nil {
		t.Fatal(err)
	}
	// В выходной директории лежит устаревший файл от прошлого запуска.
	if err := os.MkdirAll(outDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "stale.conf"), []byte("старый артефакт"), 0644); err != nil {
		t.Fatal(err)
	}

	renderer := NewRenderer(slog.New(slog.DiscardHandler))
	written, err := renderer.Render(templateDir, outDir, testSet())
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("Ожидался 1 записанный файл, получено %d", len(written))
	}

	content, err := os.ReadFile(filepath.Join(outDir, "vhost.conf"))
	if err != nil {
		t.Fatal(err)
	}
	expected := "ServerName example.com\nServerAdmin admin@example.com\n"
	if string(content) != expected {
		t.Errorf("Ожидалось:\n%s\nПолучено:\n%s", expected, content)
	}

	if _, err := os.Stat(filepath.Join(outDir, "stale.conf")); !os.IsNotExist(err) {
		t.Errorf("Устаревший файл должен быть удалён при пересоздании директории")
	}
}

func TestProfileFor(t *testing.T) {
	testCases := []struct {
		amiType   string
		user      string
		service   string
		expectErr bool
	}{
		{"amazon-linux", "ec2-user", "httpd", false},
		{"ubuntu", "ubuntu", "apache2", false},
		{"debian", "", "", true},
	}

	for _, tc := range testCases {
		profile, err := ProfileFor(tc.amiType)
		if tc.expectErr {
			if err == nil {
				t.Errorf("ProfileFor(%q): ожидалась ошибка", tc.amiType)
			}
			continue
		}
		if err != nil {
			t.Errorf("ProfileFor(%q): неожиданная ошибка %v", tc.amiType, err)
			continue
		}
		if profile.User != tc.user || profile.Service != tc.service {
			t.Errorf("ProfileFor(%q): неправильный профиль %+v", tc.amiType, profile)
		}
	}
}
