package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kyc-onboard/internal/core/domain"
)

var tasksLimit int

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage scheduled upkeep tasks",
	Long: `Lists the scheduled tasks that run alongside 'kyc watch' and the review
console: the screening list refresh and the batch pattern scan.`,
	Args: cobra.NoArgs,
	RunE: runTasksList,
}

var tasksRunCmd = &cobra.Command{
	Use:   "run TASK_ID",
	Short: "Run a task now",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksRun,
}

var tasksHistoryCmd = &cobra.Command{
	Use:   "history TASK_ID",
	Short: "Show recent runs of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksHistory,
}

func init() {
	tasksHistoryCmd.Flags().IntVarP(&tasksLimit, "limit", "n", 10, "maximum number of runs")
	tasksCmd.AddCommand(tasksRunCmd)
	tasksCmd.AddCommand(tasksHistoryCmd)
	rootCmd.AddCommand(tasksCmd)
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	ids := make([]string, 0, len(schedulerConfig.TaskConfigs))
	for id := range schedulerConfig.TaskConfigs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if len(ids) == 0 {
		cmd.Println("No tasks configured.")
		return nil
	}

	state := "enabled"
	if !schedulerConfig.Enabled {
		state = "disabled"
	}
	cmd.Printf("Scheduler: %s\n\n", state)
	for _, id := range ids {
		tc := schedulerConfig.GetTaskConfig(id)
		status := "on"
		if !tc.Enabled {
			status = "off"
		}
		cmd.Printf("  %-20s every %-8s %s\n", id, tc.Interval, status)
	}
	return nil
}

func runTasksRun(cmd *cobra.Command, args []string) error {
	if err := requireService("scheduler", scheduler != nil); err != nil {
		return err
	}

	run, err := scheduler.RunNow(cmd.Context(), args[0])
	if run.TaskID != "" {
		printTaskRun(cmd, run)
	}
	if err != nil {
		return fmt.Errorf("task %s: %w", args[0], err)
	}
	return nil
}

func runTasksHistory(cmd *cobra.Command, args []string) error {
	if err := requireService("scheduler", scheduler != nil); err != nil {
		return err
	}

	runs, err := scheduler.History(cmd.Context(), args[0], tasksLimit)
	if err != nil {
		return fmt.Errorf("task history: %w", err)
	}
	if len(runs) == 0 {
		cmd.Printf("No runs recorded for %s.\n", args[0])
		return nil
	}
	for _, run := range runs {
		printTaskRun(cmd, run)
	}
	return nil
}

func printTaskRun(cmd *cobra.Command, run domain.TaskRun) {
	result := "ok"
	if !run.Success {
		result = "FAILED: " + run.Error
	}
	cmd.Printf("%s  %-20s %6s  items=%d  %s\n",
		run.StartedAt.UTC().Format(time.RFC3339),
		run.TaskID,
		run.EndedAt.Sub(run.StartedAt).Round(time.Millisecond),
		run.ItemsProcessed,
		result)
}
