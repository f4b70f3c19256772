package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/waste3d/anvil/internal/state"
)

var historyCmd = &cobra.Command{
	Use:   "history [project]",
	Short: "Показывает историю развертываний",
	Long:  "Показывает прошлые запуски развертывания. Если указан проект, история ограничивается им.",
	Args:  cobra.RangeArgs(0, 1),
	Run:   runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	var project string
	if len(args) > 0 {
		project = args[0]
	}

	if err := runHistoryLogic(project); err != nil {
		errorLog(os.Stderr, "\n❌ Ошибка выполнения 'history': %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

func runHistoryLogic(project string) error {
	manager, err := state.NewManager()
	if err != nil {
		return fmt.Errorf("не удалось открыть историю развертываний: %w", err)
	}
	defer manager.Close()

	var runs []state.Run
	if project != "" {
		runs, err = manager.RunsByProject(project)
	} else {
		runs, err = manager.Runs()
	}
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		infoLog("История развертываний пуста.\n")
		return nil
	}

	// Используем tabwriter для красивого форматирования таблицы
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "RUN\tPROJECT\tOPERATIONS\tOUTCOME\tDATE")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID[:8], r.Project, r.Operations, r.Outcome, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
