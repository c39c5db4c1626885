package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"beacon/internal/config"
	"beacon/internal/journal"
)

func newJournalCommand(configFlag *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the persistent event journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newJournalListCommand(configFlag))
	cmd.AddCommand(newJournalStatsCommand(configFlag))
	return cmd
}

func newJournalListCommand(configFlag *string) *cobra.Command {
	var topic string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent journaled events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), topic, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "journal is empty")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(entry.Seq, 10),
					entry.Record.PublishedAt.Format("2006-01-02 15:04:05"),
					entry.Record.Topic,
					entry.Record.Message,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"SEQ", "PUBLISHED", "TOPIC", "MESSAGE"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Only show events for this topic")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events to show")
	return cmd
}

func newJournalStatsCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-topic journal counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg.JournalPath())
			if err != nil {
				return err
			}
			defer store.Close()

			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			counts, err := store.TopicCounts(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(counts))
			for _, tc := range counts {
				rows = append(rows, []string{tc.Topic, strconv.FormatInt(tc.Count, 10)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"TOPIC", "EVENTS"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d events at %s\n", total, store.Path())
			return nil
		},
	}
}
