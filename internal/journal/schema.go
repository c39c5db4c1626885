package journal

const schema = `
CREATE TABLE IF NOT EXISTS journal_events (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT NOT NULL UNIQUE,
    topic TEXT NOT NULL,
    message TEXT NOT NULL,
    fields_json TEXT,
    published_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journal_events_topic ON journal_events(topic);
CREATE INDEX IF NOT EXISTS idx_journal_events_published_at ON journal_events(published_at);
`
