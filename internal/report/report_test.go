package report

import (
	"strings"
	"testing"

	"github.com/waste3d/anvil/internal/settings"
	"github.com/waste3d/anvil/internal/templates"
)

func TestBuild(t *testing.T) {
	profile, err := templates.ProfileFor("ubuntu")
	if err != nil {
		t.Fatal(err)
	}

	in := Input{
		ProjectName:   "mysite",
		PythonVersion: "3.11",
		ServerName:    "example.com",
		Profile:       profile,
		ImageID:       "ami-12345678",
		Specs: []settings.DatabaseSpec{
			{Engine: settings.EnginePostgreSQL, Name: "big_db", Host: "localhost", Port: 5432, User: "pg_user", Password: "p"},
			{Engine: settings.EngineMySQL, Name: "app_db", Host: "localhost", Port: 3306, User: "u", Password: "p"},
		},
	}

	md := Build(in)

	for _, fragment := range []string{
		"ami-12345678",
		"CREATE DATABASE big_db;",
		"localhost:5432",
		"python3.11 -m venv",
		"systemctl restart apache2",
		"https://example.com/",
	} {
		if !strings.Contains(md, fragment) {
			t.Errorf("В отчёте не найден фрагмент '%s'", fragment)
		}
	}

	// mysql обрабатывается автоматически и в ручные шаги не попадает.
	if strings.Contains(md, "CREATE DATABASE app_db") {
		t.Errorf("База mysql не должна попадать в ручные шаги")
	}
	// Пароли в отчёт не выводятся.
	if strings.Contains(md, "'p'") {
		t.Errorf("Пароль не должен попадать в отчёт")
	}
}

func TestBuildWithoutImageID(t *testing.T) {
	profile, err := templates.ProfileFor("amazon-linux")
	if err != nil {
		t.Fatal(err)
	}

	md := Build(Input{
		ProjectName:   "mysite",
		PythonVersion: "3.11",
		ServerName:    "example.com",
		Profile:       profile,
	})

	if !strings.Contains(md, "семейства amazon-linux") {
		t.Errorf("Без разрешённого образа отчёт должен называть семейство")
	}
	if !strings.Contains(md, "systemctl restart httpd") {
		t.Errorf("Для amazon-linux служба — httpd")
	}
}
