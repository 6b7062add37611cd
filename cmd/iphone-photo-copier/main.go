package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/8emezzo/iphone-photo-copier/internal/config"
	"github.com/8emezzo/iphone-photo-copier/internal/db"
	"github.com/8emezzo/iphone-photo-copier/internal/device"
	"github.com/8emezzo/iphone-photo-copier/internal/sync"
	"github.com/8emezzo/iphone-photo-copier/pkg/models"
	"github.com/8emezzo/iphone-photo-copier/pkg/utils"
	"github.com/8emezzo/iphone-photo-copier/pkg/version"
)

const historyFileName = "copier-history.db"

func main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "print the version",
	}

	app := &cli.App{
		Name:                 "iphone-photo-copier",
		Usage:                "Incremental photo and video copier for MTP-mounted devices",
		Version:              version.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: "Print detailed version information",
				Action: func(c *cli.Context) error {
					fmt.Printf("Version:    %s\n", version.Version)
					fmt.Printf("Git commit: %s\n", version.GitCommit)
					fmt.Printf("Built:      %s\n", version.BuildTime)
					return nil
				},
			},
			{
				Name:  "copy",
				Usage: "Copy new photos and videos from the device",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the JSON configuration file",
						Value: "config.json",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Destination root, overrides the configuration file",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Mount point of the device (its DCIM directory)",
					},
					&cli.StringFlag{
						Name:  "minio-endpoint",
						Usage: "Read staged media from a MinIO endpoint instead of a mount",
					},
					&cli.StringFlag{
						Name:  "minio-bucket",
						Usage: "MinIO bucket holding the staged media",
					},
					&cli.StringFlag{
						Name:  "minio-prefix",
						Usage: "Prefix inside the bucket",
					},
					&cli.StringFlag{
						Name:    "minio-access-key",
						Usage:   "MinIO access key",
						EnvVars: []string{"MINIO_ACCESS_KEY"},
					},
					&cli.StringFlag{
						Name:    "minio-secret-key",
						Usage:   "MinIO secret key",
						EnvVars: []string{"MINIO_SECRET_KEY"},
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Print one line per file instead of a progress bar",
					},
				},
				Action: runCopy,
			},
			{
				Name:  "status",
				Usage: "Show results of previous copy sessions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to the JSON configuration file",
						Value: "config.json",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Destination root, overrides the configuration file",
					},
					&cli.IntFlag{
						Name:  "sessions",
						Usage: "Number of past sessions to list",
						Value: 5,
					},
				},
				Action: showStatus,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func resolveDestRoot(c *cli.Context) (string, error) {
	if dest := c.String("dest"); dest != "" {
		return dest, nil
	}
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return "", err
	}
	return cfg.DestinationRoot()
}

func newSource(c *cli.Context) (device.Source, error) {
	if endpoint := c.String("minio-endpoint"); endpoint != "" {
		return device.NewMinioSource(device.MinioConfig{
			Endpoint:  endpoint,
			Bucket:    c.String("minio-bucket"),
			Prefix:    c.String("minio-prefix"),
			AccessKey: c.String("minio-access-key"),
			SecretKey: c.String("minio-secret-key"),
		}), nil
	}
	if mount := c.String("source"); mount != "" {
		return device.NewDirSource(mount), nil
	}
	return nil, fmt.Errorf("either --source or --minio-endpoint is required")
}

func runCopy(c *cli.Context) error {
	destRoot, err := resolveDestRoot(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return fmt.Errorf("creating destination root: %v", err)
	}

	source, err := newSource(c)
	if err != nil {
		return err
	}

	history, err := db.New(filepath.Join(destRoot, historyFileName))
	if err != nil {
		return fmt.Errorf("failed to open history database: %v", err)
	}
	defer history.Close()

	recorder, err := db.NewRecorder(history)
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}

	// Per-file console lines and a live progress bar fight over the
	// terminal, so only one of the two runs: verbose mode prints lines,
	// the default drives the bar and keeps the ETA inside its template.
	// The sqlite recorder gets the events either way.
	var sink sync.EventSink = recorder
	var onProgress sync.SnapshotFunc
	var bar *pb.ProgressBar

	if c.Bool("verbose") {
		sink = multiSink{consoleSink{}, recorder}
		onProgress = func(s models.Snapshot) {
			if s.ETAKnown && s.FilesProcessed%25 == 0 {
				log.Printf("Estimated time remaining: %s", etaText(s))
			}
		}
	} else {
		bar = pb.New64(0)
		bar.Set(pb.Bytes, true)
		bar.SetTemplate(`{{counters . }} {{bar . }} {{percent . }} {{speed . }} {{string . "eta"}}`)
		bar.Start()
		onProgress = func(s models.Snapshot) {
			bar.SetTotal(s.BytesTotalKnown)
			bar.SetCurrent(s.BytesTransferred)
			if s.ETAKnown {
				bar.Set("eta", "ETA "+etaText(s))
			}
		}
	}

	syncer := sync.NewSyncer(source, sync.SyncerConfig{
		DestRoot:   destRoot,
		Sink:       sink,
		OnProgress: onProgress,
		Verbose:    c.Bool("verbose"),
	})

	stats, err := syncer.Run(context.Background())
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("copy session failed: %v", err)
	}

	printSummary(stats)
	return nil
}

// etaText renders a snapshot's ETA, marking it while totals can still
// grow because not every folder has been scanned yet.
func etaText(s models.Snapshot) string {
	text := utils.FormatETA(s.ETA)
	if s.Approximate {
		text += " (approx)"
	}
	return text
}

func printSummary(stats models.SessionStats) {
	fmt.Printf("\nCopy session finished in %s:\n", utils.FormatDuration(stats.Elapsed))
	fmt.Printf("- Copied:  %d files (%s) at %s average\n",
		stats.FilesCopied, utils.FormatSize(stats.BytesCopied), utils.FormatSpeed(stats.AverageSpeed))
	fmt.Printf("- Skipped: %d files\n", stats.FilesSkipped)
	fmt.Printf("- Failed:  %d files\n", stats.FilesFailed)
	fmt.Printf("- Folders: %d copied, %d already complete, %d with errors\n",
		stats.RollsCompleted, stats.RollsAlreadyComplete, stats.RollsWithErrors)
	if stats.RollsFailed > 0 {
		fmt.Printf("- Folders that could not be listed: %v\n", stats.FailedRolls)
	}
	if stats.FilesFailed > 0 || stats.RollsFailed > 0 {
		fmt.Println("Some items failed; run the copy again to retry them.")
	}
}

func showStatus(c *cli.Context) error {
	destRoot, err := resolveDestRoot(c)
	if err != nil {
		return err
	}

	history, err := db.New(filepath.Join(destRoot, historyFileName))
	if err != nil {
		return fmt.Errorf("failed to open history database: %v", err)
	}
	defer history.Close()

	sessions, err := history.RecentSessions(c.Int("sessions"))
	if err != nil {
		return fmt.Errorf("failed to read sessions: %v", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No completed copy sessions recorded.")
		return nil
	}

	fmt.Printf("Destination: %s\n\n", destRoot)
	for _, s := range sessions {
		fmt.Printf("Session #%d (%s)\n", s.ID, humanize.Time(s.StartedAt))
		fmt.Printf("  Copied: %d files (%s), Skipped: %d, Failed: %d, Duration: %s\n",
			s.FilesCopied, humanize.Bytes(uint64(s.BytesCopied)), s.FilesSkipped, s.FilesFailed,
			utils.FormatDuration(s.Elapsed))
		if s.FilesFailed > 0 {
			failed, err := history.FailedFiles(s.ID)
			if err != nil {
				return err
			}
			for _, e := range failed {
				fmt.Printf("  FAILED %s/%s: %s\n", e.RollName, e.FileName, e.Reason)
			}
		}
	}
	return nil
}

// consoleSink prints one timestamped line per file.
type consoleSink struct{}

func (consoleSink) FileEvent(e models.Event) {
	switch e.Outcome {
	case models.OutcomeSkipped:
		log.Printf("File already exists: %s/%s", e.RollName, e.FileName)
	case models.OutcomeCopied:
		log.Printf("Copied: %s/%s (%s in %dms)", e.RollName, e.FileName, utils.FormatSize(e.Bytes), e.DurationMs)
	case models.OutcomeFailed:
		log.Printf("Failed: %s/%s: %s", e.RollName, e.FileName, e.Reason)
	}
}

func (consoleSink) Summary(models.SessionStats) {}

// multiSink fans events out to several sinks.
type multiSink []sync.EventSink

func (m multiSink) FileEvent(e models.Event) {
	for _, s := range m {
		s.FileEvent(e)
	}
}

func (m multiSink) Summary(stats models.SessionStats) {
	for _, s := range m {
		s.Summary(stats)
	}
}
