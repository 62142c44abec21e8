package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/croki-app/croki/internal/selfupdate"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update croki to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		checker := selfupdate.NewChecker(
			selfupdate.WithTimeout(2*time.Minute),
			selfupdate.WithLogger(logger),
		)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		err = checker.Update(ctx, version, "", func(msg string) {
			fmt.Println(msg)
		})

		if err == nil {
			return nil
		}

		if errors.Is(err, selfupdate.ErrDevBuild) {
			fmt.Println("Cannot update a development build. Install a release build first.")
			return nil
		}
		if errors.Is(err, selfupdate.ErrAlreadyLatest) {
			fmt.Println("Already running the latest version.")
			return nil
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w\n\nTry running: sudo croki update", err)
		}

		return err
	},
}
