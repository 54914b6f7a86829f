package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/inbox"
	"github.com/custodia-labs/kyc-onboard/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/kyc-onboard/internal/core/ports/driving"
	"github.com/custodia-labs/kyc-onboard/internal/logger"
)

var (
	watchExisting bool
	watchResume   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Run due diligence for client files dropped into a folder",
	Long: `Watches DIR and runs the pipeline for every client file (.json, .yaml)
created or rewritten in it. Runs are sequential. Each case pauses for review
as with 'kyc run'.

Scheduled upkeep (screening list refresh and batch pattern scans) runs while
the folder is watched. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also run files already in the folder")
	watchCmd.Flags().BoolVar(&watchResume, "resume", false, "resume from checkpoints when present")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireService("pipeline", pipelineService != nil); err != nil {
		return err
	}

	ctx := cmd.Context()
	stop := startScheduler(ctx)
	defer stop()

	cmd.Printf("Watching %s for client files (Ctrl+C to stop)\n", args[0])
	return watchInbox(ctx, cmd, inbox.New(args[0]), watchExisting)
}

// fileStamp identifies one version of a file so repeated write events for
// the same content do not trigger another run.
type fileStamp struct {
	size    int64
	modTime time.Time
}

// watchInbox runs the pipeline for each client file until ctx is done.
func watchInbox(ctx context.Context, cmd *cobra.Command, w *inbox.Watcher, existing bool) error {
	paths, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]fileStamp)
	if existing {
		current, err := w.Existing()
		if err != nil {
			return err
		}
		for _, path := range current {
			processClientFile(ctx, cmd, path, seen)
		}
	}

	for path := range paths {
		processClientFile(ctx, cmd, path, seen)
	}
	return nil
}

func processClientFile(ctx context.Context, cmd *cobra.Command, path string, seen map[string]fileStamp) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	stamp := fileStamp{size: info.Size(), modTime: info.ModTime()}
	if prev, ok := seen[path]; ok && prev == stamp {
		return
	}

	client, err := file.LoadClient(path)
	if err != nil {
		// Partially written files fail here and are retried on the next write.
		logger.Debug("Skipping %s: %v", path, err)
		return
	}
	seen[path] = stamp

	out, err := pipelineService.Run(ctx, client, driving.RunOptions{Resume: watchResume})
	if err != nil {
		logger.Warn("Run failed for %s: %v", path, err)
		return
	}

	line := fmt.Sprintf("%s: %s", out.ClientID, out.Status)
	if rec := out.Recommendation; rec != nil {
		line += fmt.Sprintf(", recommended %s", rec.Decision)
	}
	if risk := out.FinalRisk(); risk != nil {
		line += fmt.Sprintf(", risk %s", risk.RiskLevel)
	}
	cmd.Println(line)
}
