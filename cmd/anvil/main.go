package main

import (
	"os"

	"github.com/waste3d/anvil/cmd/anvil/cli"
	"github.com/waste3d/anvil/internal/exitcode"
)

func main() {
	// Команды сами завершают процесс со своими кодами; сюда ошибка доходит
	// только от cobra (неизвестная команда, неправильные аргументы).
	if err := cli.Execute(); err != nil {
		os.Exit(exitcode.Usage)
	}
}
