// Package journal persists published events to a SQLite database.
//
// A Store implements hub.Subscriber[event.Record], so attaching durable
// persistence to a hub is a single Register call. The store takes an advisory
// file lock on open so two processes never write the same journal, and keeps
// queries simple: append, recent window, and per-topic counts for the CLI.
package journal
