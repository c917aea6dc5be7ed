package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jackwu/callview/api"
	"github.com/jackwu/callview/config"
	"github.com/jackwu/callview/metrics"
	"github.com/jackwu/callview/player"
	"github.com/jackwu/callview/query"
	"github.com/jackwu/callview/store"
	"github.com/jackwu/callview/tui"
	"github.com/jackwu/callview/version"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	args := os.Args[1:]
	interactive := len(args) == 0 || (args[0] != "--list" && args[0] != "--record")
	if interactive {
		cfg.InteractiveLogging()
	}
	closeLog, err := cfg.ApplyLogging(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	logger.WithFields(logrus.Fields{
		"version":  version.Version,
		"base_url": cfg.API.BaseURL,
	}).Info("Starting callview")

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	rowOpts := tui.RowOptions{
		SuppressFirstHeader: cfg.View.SuppressFirstHeader,
		DefaultAvatar:       cfg.View.DefaultAvatar,
	}

	switch {
	// --list: print the default call list as plain text (for testing / scripting)
	case len(args) > 0 && args[0] == "--list":
		if err := printList(client, rowOpts); err != nil {
			logger.WithError(err).Error("List failed")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return

	case len(args) > 0 && args[0] == "--record":
		if len(args) != 4 {
			fmt.Fprintln(os.Stderr, "usage: callview --record <record> <partnership_id> <file>")
			os.Exit(2)
		}
		if err := saveRecord(client, args[1], args[2], args[3]); err != nil {
			logger.WithError(err).Error("Record download failed")
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var runner player.Runner
	if argv, err := player.BuildCommand(cfg.Player, nil); err != nil {
		logger.WithError(err).Warn("Playback disabled")
	} else {
		logger.WithField("player", argv[0]).Debug("Using audio player")
		runner = player.ExecRunner{Argv: argv}
	}

	if srv := metrics.Serve(cfg.Metrics.Addr, logger); srv != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	m := tui.NewModel(tui.Options{
		Source: client,
		Runner: runner,
		Logger: logger,
		Rows:   rowOpts,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.WithError(err).Error("TUI exited with error")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// printList fetches the calls of the default filter and prints them grouped
// by day.
func printList(client *api.Client, opts tui.RowOptions) error {
	params, err := query.Build(query.Filter{}, query.Sort{}, time.Now())
	if err != nil {
		return err
	}
	resp, err := client.ListCalls(context.Background(), params)
	if err != nil {
		return err
	}

	groups := store.GroupByDate(resp.Results)
	if groups.Total() == 0 {
		fmt.Println("No calls found.")
		return nil
	}
	for _, r := range tui.BuildRows(groups, opts) {
		fmt.Println(tui.PlainRow(r, opts))
	}
	fmt.Printf("total: %d\n", int(resp.TotalRows))
	return nil
}

func saveRecord(client *api.Client, record, partnershipID, path string) error {
	audio, err := client.FetchRecord(context.Background(), record, partnershipID)
	if err != nil {
		return err
	}
	return os.WriteFile(path, audio, 0o644)
}
