package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/okian/swingcoach/internal/domain/model"
)

const (
	defaultBusyRetries = 5
	busyInitialBackoff = 10 * time.Millisecond
	busyMaxBackoff     = 200 * time.Millisecond
	memoryPath         = ":memory:"
	lockSuffix         = ".lock"
)

var migrations = []string{ //nolint:gochecknoglobals // schema
	`CREATE TABLE IF NOT EXISTS history_entries (
        signature    TEXT    NOT NULL,
        position     INTEGER NOT NULL,
        analyzed_at  TEXT    NOT NULL,
        overall      INTEGER NOT NULL,
        metrics_json TEXT    NOT NULL,
        PRIMARY KEY (signature, position)
    )`,
	`CREATE TABLE IF NOT EXISTS analysis_feedback (
        id              TEXT PRIMARY KEY,
        analysis_id     TEXT    NOT NULL,
        user_id         TEXT    NOT NULL DEFAULT '',
        overall_verdict TEXT    NOT NULL,
        skill_level     TEXT    NOT NULL DEFAULT '',
        confidence      INTEGER NOT NULL,
        priority        TEXT    NOT NULL DEFAULT '',
        note            TEXT    NOT NULL DEFAULT '',
        model_version   TEXT    NOT NULL DEFAULT '',
        video_signature TEXT    NOT NULL DEFAULT '',
        created_at      TEXT    NOT NULL
    )`,
	`DROP INDEX IF EXISTS idx_analysis_feedback_once`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_analysis_feedback_user_once
        ON analysis_feedback (analysis_id, user_id) WHERE user_id <> ''`,
	`CREATE TABLE IF NOT EXISTS metric_feedback (
        feedback_id TEXT NOT NULL REFERENCES analysis_feedback(id) ON DELETE CASCADE,
        analysis_id TEXT NOT NULL,
        metric      TEXT NOT NULL,
        verdict     TEXT NOT NULL,
        confidence  INTEGER NOT NULL,
        created_at  TEXT NOT NULL,
        PRIMARY KEY (feedback_id, metric)
    )`,
	`CREATE TABLE IF NOT EXISTS adjustment_factors (
        id           INTEGER PRIMARY KEY CHECK (id = 1),
        overall      INTEGER NOT NULL,
        metrics_json TEXT    NOT NULL,
        samples      INTEGER NOT NULL,
        updated_at   TEXT    NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
        user_id     TEXT PRIMARY KEY,
        priority    TEXT NOT NULL,
        skill_level TEXT NOT NULL DEFAULT '',
        updated_at  TEXT NOT NULL
    )`,
	`CREATE TABLE IF NOT EXISTS reference_models (
        metric               TEXT PRIMARY KEY,
        technical_guidelines TEXT NOT NULL,
        ideal_form           TEXT NOT NULL,
        common_mistakes      TEXT NOT NULL,
        coaching_cues        TEXT NOT NULL,
        scoring_rubric       TEXT NOT NULL DEFAULT '',
        updated_at           TEXT NOT NULL
    )`,
}

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db          *sql.DB
	path        string
	lock        *flock.Flock
	now         func() time.Time
	busyRetries int
}

var _ Store = (*SQLiteStore)(nil)

// Open connects to the database at path, creating it and its schema if needed.
// A file-backed database is guarded by an exclusive lock file next to it so
// two processes never share one store; ":memory:" skips the lock.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	var lock *flock.Flock
	if path != memoryPath {
		lock = flock.New(path + lockSuffix)
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire db lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
	}
	release := func() {
		if lock != nil {
			_ = lock.Unlock()
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		release()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			release()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	s := &SQLiteStore{db: db, path: path, lock: lock, now: time.Now, busyRetries: defaultBusyRetries}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		release()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	return nil
}

// Close closes the database connection and releases the file lock.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	if s.lock != nil {
		if uerr := s.lock.Unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("release db lock: %w", uerr)
		}
	}
	return err
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *SQLiteStore) retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyInitialBackoff
	var lastErr error
	for attempt := 0; attempt < s.busyRetries; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isBusy(lastErr) || attempt == s.busyRetries-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func wrapWrite(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isPermission(err):
		return fmt.Errorf("%s: %w: %w", op, ErrStoragePermission, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// GetList returns the history for signature, oldest first.
func (s *SQLiteStore) GetList(ctx context.Context, signature string) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT analyzed_at, overall, metrics_json FROM history_entries
         WHERE signature = ? ORDER BY position`, signature)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var at, metricsJSON string
		var e model.HistoryEntry
		if err := rows.Scan(&at, &e.Overall, &metricsJSON); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parse history time: %w", err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &e.Metrics); err != nil {
			return nil, fmt.Errorf("decode history metrics: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PutList replaces the history for signature.
func (s *SQLiteStore) PutList(ctx context.Context, signature string, entries []model.HistoryEntry) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries WHERE signature = ?`, signature); err != nil {
			return err
		}
		for i, e := range entries {
			metricsJSON, err := json.Marshal(e.Metrics)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO history_entries (signature, position, analyzed_at, overall, metrics_json)
                 VALUES (?, ?, ?, ?, ?)`,
				signature, i, e.At.UTC().Format(time.RFC3339Nano), e.Overall, string(metricsJSON)); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapWrite("put history", err)
}

// InsertFeedback appends rec and its per-metric verdicts. Preferences carried
// on the record are stored for the user.
func (s *SQLiteStore) InsertFeedback(ctx context.Context, rec model.FeedbackRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	ts := created.UTC().Format(time.RFC3339Nano)

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO analysis_feedback (
                id, analysis_id, user_id, overall_verdict, skill_level, confidence,
                priority, note, model_version, video_signature, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.AnalysisID, rec.UserID, string(rec.OverallVerdict), string(rec.SkillLevel),
			rec.Confidence, string(rec.Priority), rec.Note, rec.ModelVersion, rec.Signature, ts); err != nil {
			return err
		}
		for k, v := range rec.MetricVerdicts {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO metric_feedback (feedback_id, analysis_id, metric, verdict, confidence, created_at)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				rec.ID, rec.AnalysisID, k, string(v), rec.Confidence, ts); err != nil {
				return err
			}
		}
		if rec.UserID != "" && (rec.Priority != "" || rec.SkillLevel != "") {
			return upsertPreferences(ctx, tx, rec.UserID, model.Preferences{
				Priority:   rec.Priority,
				SkillLevel: rec.SkillLevel,
			}, s.timestamp())
		}
		return nil
	})
	if isConstraint(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateFeedback, rec.DedupeKey())
	}
	return wrapWrite("insert feedback", err)
}

// ListFeedback returns every stored record with its metric verdicts.
func (s *SQLiteStore) ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, analysis_id, user_id, overall_verdict, skill_level, confidence,
                priority, note, model_version, video_signature, created_at
         FROM analysis_feedback ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}

	var out []model.FeedbackRecord
	index := make(map[string]int)
	for rows.Next() {
		var r model.FeedbackRecord
		var verdict, skill, priority, created string
		if err := rows.Scan(&r.ID, &r.AnalysisID, &r.UserID, &verdict, &skill, &r.Confidence,
			&priority, &r.Note, &r.ModelVersion, &r.Signature, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		r.OverallVerdict = model.Verdict(verdict)
		r.SkillLevel = model.SkillLevel(skill)
		r.Priority = model.AdjustmentPriority(priority)
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse feedback time: %w", err)
		}
		index[r.ID] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	mrows, err := s.db.QueryContext(ctx, `SELECT feedback_id, metric, verdict FROM metric_feedback`)
	if err != nil {
		return nil, fmt.Errorf("query metric feedback: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var id, key, verdict string
		if err := mrows.Scan(&id, &key, &verdict); err != nil {
			return nil, fmt.Errorf("scan metric feedback: %w", err)
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if out[i].MetricVerdicts == nil {
			out[i].MetricVerdicts = make(map[string]model.Verdict)
		}
		out[i].MetricVerdicts[key] = model.Verdict(verdict)
	}
	return out, mrows.Err()
}

// FeedbackKeys returns analysisID|userID for every stored record with a user.
func (s *SQLiteStore) FeedbackKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT analysis_id, user_id FROM analysis_feedback WHERE user_id <> '' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query feedback keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var r model.FeedbackRecord
		if err := rows.Scan(&r.AnalysisID, &r.UserID); err != nil {
			return nil, fmt.Errorf("scan feedback key: %w", err)
		}
		keys = append(keys, r.DedupeKey())
	}
	return keys, rows.Err()
}

// CountFeedback returns the number of stored records.
func (s *SQLiteStore) CountFeedback(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_feedback`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return n, nil
}

// GetFactors returns the stored factors, or zero factors when none exist.
func (s *SQLiteStore) GetFactors(ctx context.Context) (model.AdjustmentFactors, error) {
	var f model.AdjustmentFactors
	var metricsJSON, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT overall, metrics_json, samples, updated_at FROM adjustment_factors WHERE id = 1`).
		Scan(&f.Overall, &metricsJSON, &f.Samples, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AdjustmentFactors{}, nil
	}
	if err != nil {
		return f, fmt.Errorf("query factors: %w", err)
	}
	if err := json.Unmarshal([]byte(metricsJSON), &f.Metrics); err != nil {
		return f, fmt.Errorf("decode factors: %w", err)
	}
	if f.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return f, fmt.Errorf("parse factors time: %w", err)
	}
	return f, nil
}

// PutFactors replaces the global factors.
func (s *SQLiteStore) PutFactors(ctx context.Context, f model.AdjustmentFactors) error {
	metricsJSON, err := json.Marshal(f.Metrics)
	if err != nil {
		return fmt.Errorf("encode factors: %w", err)
	}
	updated := f.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}
	err = s.retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO adjustment_factors (id, overall, metrics_json, samples, updated_at)
             VALUES (1, ?, ?, ?, ?)
             ON CONFLICT(id) DO UPDATE SET
                overall = excluded.overall,
                metrics_json = excluded.metrics_json,
                samples = excluded.samples,
                updated_at = excluded.updated_at`,
			f.Overall, string(metricsJSON), f.Samples, updated.UTC().Format(time.RFC3339Nano))
		return execErr
	})
	return wrapWrite("put factors", err)
}

// GetPreferences returns the stored preferences for userID.
func (s *SQLiteStore) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	var priority, skill string
	err := s.db.QueryRowContext(ctx,
		`SELECT priority, skill_level FROM user_preferences WHERE user_id = ?`, userID).Scan(&priority, &skill)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preferences{}, ErrNotFound
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("query preferences: %w", err)
	}
	return model.Preferences{Priority: model.AdjustmentPriority(priority), SkillLevel: model.SkillLevel(skill)}, nil
}

// PutPreferences merges p into the stored preferences; empty fields keep their previous value.
func (s *SQLiteStore) PutPreferences(ctx context.Context, userID string, p model.Preferences) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return upsertPreferences(ctx, tx, userID, p, s.timestamp())
	})
	return wrapWrite("put preferences", err)
}

func upsertPreferences(ctx context.Context, tx *sql.Tx, userID string, p model.Preferences, ts string) error {
	priority := p.Priority
	if priority == "" {
		priority = model.PriorityAsNeeded
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, priority, skill_level, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(user_id) DO UPDATE SET
            priority = CASE WHEN ? = '' THEN priority ELSE excluded.priority END,
            skill_level = CASE WHEN excluded.skill_level = '' THEN skill_level ELSE excluded.skill_level END,
            updated_at = excluded.updated_at`,
		userID, string(priority), string(p.SkillLevel), ts, string(p.Priority))
	return err
}

// ReferenceModels returns every stored reference model ordered by metric.
func (s *SQLiteStore) ReferenceModels(ctx context.Context) ([]model.ReferenceModel, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT metric, technical_guidelines, ideal_form, common_mistakes, coaching_cues, scoring_rubric
         FROM reference_models ORDER BY metric`)
	if err != nil {
		return nil, fmt.Errorf("query reference models: %w", err)
	}
	defer rows.Close()

	var out []model.ReferenceModel
	for rows.Next() {
		var r model.ReferenceModel
		var tg, ideal, mistakes, cues string
		if err := rows.Scan(&r.Metric, &tg, &ideal, &mistakes, &cues, &r.ScoringRubric); err != nil {
			return nil, fmt.Errorf("scan reference model: %w", err)
		}
		for _, f := range []struct {
			raw string
			dst *[]string
		}{{tg, &r.TechnicalGuidelines}, {ideal, &r.IdealForm}, {mistakes, &r.CommonMistakes}, {cues, &r.CoachingCues}} {
			if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
				return nil, fmt.Errorf("decode reference model %s: %w", r.Metric, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PutReferenceModel inserts or replaces the reference model for r.Metric.
func (s *SQLiteStore) PutReferenceModel(ctx context.Context, r model.ReferenceModel) error {
	enc := func(v []string) string {
		if v == nil {
			v = []string{}
		}
		b, _ := json.Marshal(v)
		return string(b)
	}
	err := s.retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO reference_models (
                metric, technical_guidelines, ideal_form, common_mistakes, coaching_cues, scoring_rubric, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?)
            ON CONFLICT(metric) DO UPDATE SET
                technical_guidelines = excluded.technical_guidelines,
                ideal_form = excluded.ideal_form,
                common_mistakes = excluded.common_mistakes,
                coaching_cues = excluded.coaching_cues,
                scoring_rubric = excluded.scoring_rubric,
                updated_at = excluded.updated_at`,
			r.Metric, enc(r.TechnicalGuidelines), enc(r.IdealForm), enc(r.CommonMistakes),
			enc(r.CoachingCues), r.ScoringRubric, s.timestamp())
		return execErr
	})
	return wrapWrite("put reference model", err)
}
