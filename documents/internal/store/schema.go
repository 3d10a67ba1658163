package store

// Schema is the complete workflow schema. Timestamps are unix millis.
const Schema = `
-- Workflow participants. HODs (heads of department) review submissions.
CREATE TABLE IF NOT EXISTS users (
    id             TEXT PRIMARY KEY,
    username       TEXT NOT NULL UNIQUE,
    display_name   TEXT NOT NULL DEFAULT '',
    is_hod         INTEGER NOT NULL DEFAULT 0,
    signature_path TEXT NOT NULL DEFAULT '',
    created_at     INTEGER NOT NULL
);

-- Uploaded DOCX templates.
CREATE TABLE IF NOT EXISTS templates (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    file_path   TEXT NOT NULL,
    uploaded_by TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL
);

-- Placeholder catalog, populated at template upload. The uniqueness
-- tuple makes re-extraction idempotent; example is NOT NULL so the
-- tuple compares by value (SQLite treats NULLs as distinct in UNIQUE).
CREATE TABLE IF NOT EXISTS placeholders (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    token       TEXT NOT NULL,
    type        TEXT NOT NULL DEFAULT 'text',
    example     TEXT NOT NULL DEFAULT '',
    UNIQUE(template_id, name, token, type, example)
);
CREATE INDEX IF NOT EXISTS idx_placeholders_template ON placeholders(template_id);

-- Documents generated from a template with filled-in values.
CREATE TABLE IF NOT EXISTS generated_documents (
    id          TEXT PRIMARY KEY,
    template_id TEXT NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
    created_by  TEXT NOT NULL REFERENCES users(id),
    format      TEXT NOT NULL,
    file_path   TEXT NOT NULL,
    values_json TEXT NOT NULL DEFAULT '{}',
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_generated_user ON generated_documents(created_by, created_at DESC);

-- PDFs submitted for HOD review.
CREATE TABLE IF NOT EXISTS submissions (
    id               TEXT PRIMARY KEY,
    template_id      TEXT NOT NULL REFERENCES templates(id),
    submitted_by     TEXT NOT NULL REFERENCES users(id),
    file_path        TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT 'pending'
                     CHECK (status IN ('pending', 'approved', 'rejected')),
    rejection_reason TEXT NOT NULL DEFAULT '',
    reviewed_by      TEXT NOT NULL DEFAULT '',
    submitted_at     INTEGER NOT NULL,
    reviewed_at      INTEGER
);
CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, submitted_at DESC);
CREATE INDEX IF NOT EXISTS idx_submissions_user ON submissions(submitted_by, submitted_at DESC);

-- Signed PDFs produced by an approval. One per submission.
CREATE TABLE IF NOT EXISTS approved_documents (
    id            TEXT PRIMARY KEY,
    submission_id TEXT NOT NULL UNIQUE REFERENCES submissions(id) ON DELETE CASCADE,
    file_path     TEXT NOT NULL,
    signed_by     TEXT NOT NULL,
    created_at    INTEGER NOT NULL
);

-- Per-user notifications about workflow events.
CREATE TABLE IF NOT EXISTS notifications (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    sender      TEXT NOT NULL DEFAULT '',
    message     TEXT NOT NULL,
    entity_kind TEXT NOT NULL DEFAULT '',
    entity_id   TEXT NOT NULL DEFAULT '',
    is_read     INTEGER NOT NULL DEFAULT 0,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, is_read, created_at DESC);
`
