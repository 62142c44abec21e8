package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/croki-app/croki/internal/alarm"
	"github.com/croki-app/croki/internal/app"
	"github.com/croki-app/croki/internal/codec"
	"github.com/croki-app/croki/internal/logging"
	"github.com/croki-app/croki/internal/notify"
	"github.com/croki-app/croki/internal/store"
	"github.com/spf13/cobra"
)

// openStore resolves the data directory and opens the record store with
// a file logger. The returned closer flushes the log file.
func openStore(cmd *cobra.Command) (*store.Store, *log.Logger, io.Closer, error) {
	dir, err := resolveDataDir(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve data dir: %w", err)
	}
	logger, closer := logging.Open(dir)
	st, err := store.Open(dir, codec.New(codec.DeriveKey()), logger)
	if err != nil {
		closer.Close()
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}
	return st, logger, closer, nil
}

// runApp opens the store, starts the alarm scheduler, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	st, logger, closer, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	notifier := notify.Guarded(&notify.LogNotifier{Logger: logger}, 3*time.Second)
	sched := alarm.NewScheduler(notifier, logger)
	sched.SetRules(st.LoadAlarms())
	go sched.Run(ctx)

	return app.Run(st)
}
