package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"beacon/hub"
	"beacon/internal/config"
	"beacon/internal/event"
	"beacon/internal/journal"
	"beacon/internal/logging"
	"beacon/internal/stream"
)

func newDemoCommand(configFlag *string) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Publish sample events through a fully wired hub",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			return runDemo(cmd.Context(), cfg, count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 6, "Number of sample events to publish")
	return cmd
}

func runDemo(ctx context.Context, cfg *config.Config, count int) error {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	opts := []hub.Option{hub.WithLogger(logger), hub.WithName("hub")}
	if cfg.Hub.Replay {
		opts = append(opts, hub.WithReplay())
	}
	h := hub.New[event.Record](opts...)

	console := logger.With("component", "console")
	h.Register(hub.Func(func(_ context.Context, rec event.Record) error {
		console.Info(rec.Message, "topic", rec.Topic, "event_id", rec.ID)
		return nil
	}))

	buffer := stream.NewBuffer(cfg.Stream.Capacity)
	h.Register(buffer)

	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.JournalPath())
		if err != nil {
			return err
		}
		defer store.Close()
		h.Register(store)
	}

	// Alert subscriber: sees error events before anyone else.
	alerts := logger.With("component", "alerts")
	h.RegisterWith(hub.Func(func(_ context.Context, rec event.Record) error {
		alerts.Warn("alerting on event", "topic", rec.Topic, "event_id", rec.ID)
		return nil
	}), hub.Registration[event.Record]{
		Priority: 10,
		Filter:   func(rec event.Record) bool { return rec.Matches("demo.error.*") },
	})

	var failed int
	for _, rec := range demoRecords(count) {
		receipt, err := h.Publish(ctx, rec)
		if err != nil {
			logger.Warn("publish reported failures", "topic", rec.Topic, "error", err)
			failed += len(receipt.Failures)
		}
	}

	if cfg.Hub.Replay {
		h.Register(hub.Func(func(_ context.Context, rec event.Record) error {
			console.Info("late subscriber caught up via replay", "topic", rec.Topic)
			return nil
		}))
	}

	entries, _ := buffer.Tail(count)
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			strconv.FormatUint(entry.Sequence, 10),
			entry.Record.Topic,
			entry.Record.Message,
		})
	}
	fmt.Println(renderTable([]string{"SEQ", "TOPIC", "MESSAGE"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))

	logger.Info("demo complete",
		slog.Int("published", count),
		slog.Int("delivery_failures", failed),
		slog.Int("subscribers", h.Len()))
	return nil
}

// demoRecords builds a small script of sample events, including one on an
// error topic so the prioritized alert subscriber has something to match.
func demoRecords(count int) []event.Record {
	if count <= 0 {
		count = 1
	}
	topics := []struct {
		topic   string
		message string
	}{
		{"demo.queue.started", "queue processing started"},
		{"demo.item.progress", "item moved a stage forward"},
		{"demo.item.completed", "item finished cleanly"},
		{"demo.error.delivery", "simulated delivery problem"},
	}

	records := make([]event.Record, 0, count)
	for i := 0; i < count; i++ {
		tpl := topics[i%len(topics)]
		rec := event.New(tpl.topic, tpl.message).WithField("n", strconv.Itoa(i+1))
		records = append(records, rec)
	}
	return records
}
