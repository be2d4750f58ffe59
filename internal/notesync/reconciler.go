// Package notesync reconciles batches of offline-authored notes against the
// server copy, one farmer at a time.
package notesync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mango-sync-backend/internal/apperr"
	"mango-sync-backend/internal/logging"
	"mango-sync-backend/internal/model"
	"mango-sync-backend/internal/parse"
	"mango-sync-backend/internal/store"
)

// Upload is one note as sent by a device. Timestamps are parsed per item so
// a malformed one fails only that item.
type Upload struct {
	ClientID  string `json:"client_id"`
	FarmID    int64  `json:"farm_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	IsDeleted bool   `json:"is_deleted"`
}

// Config bounds a sync call.
type Config struct {
	MaxBatchSize    int
	MaxContentBytes int
	MaxTitleLength  int
}

// Recorder receives one observation per finished sync call.
type Recorder interface {
	ObserveBatch(result string, created, updated, skipped, errored int, elapsed time.Duration)
}

// Reconciler applies sync batches. It is safe for concurrent use; calls for
// the same farmer run one at a time.
type Reconciler struct {
	store    store.Store
	cfg      Config
	locks    *farmerLocks
	recorder Recorder
	logger   *zap.Logger
}

// NewReconciler creates a Reconciler. recorder and logger may be nil.
func NewReconciler(s store.Store, cfg Config, recorder Recorder, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		store:    s,
		cfg:      cfg,
		locks:    newFarmerLocks(),
		recorder: recorder,
		logger:   logging.OrNop(logger).Named("sync"),
	}
}

// Sync reconciles batch for farmerID in input order and commits every
// successful item in one transaction. Per-item failures are reported in the
// returned Report; an error return means nothing was committed.
func (r *Reconciler) Sync(ctx context.Context, farmerID int64, batch []Upload, now time.Time) (*Report, error) {
	if r.cfg.MaxBatchSize > 0 && len(batch) > r.cfg.MaxBatchSize {
		return nil, apperr.New(apperr.ErrBatchTooLarge, "BATCH_TOO_LARGE",
			fmt.Sprintf("batch of %d notes exceeds the limit of %d", len(batch), r.cfg.MaxBatchSize))
	}

	start := time.Now()
	unlock, err := r.locks.acquire(ctx, farmerID)
	if err != nil {
		return nil, fmt.Errorf("waiting for sync of farmer %d: %w", farmerID, err)
	}
	defer unlock()

	now = now.UTC().Truncate(time.Second)
	var report *Report
	err = r.store.WithTx(ctx, func(tx store.Store) error {
		report = newReport(len(batch), now)
		touched := make(map[int64]struct{})
		for i, item := range batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := r.reconcile(ctx, tx, farmerID, i, item, now)
			report.add(out)
			if out.Kind == Created || out.Kind == Updated {
				touched[out.FarmID] = struct{}{}
			}
		}
		return tx.MarkFarmsSynced(ctx, sortedKeys(touched), now)
	})
	if err != nil {
		r.observe("failed", &Report{}, start)
		r.logger.Error("note sync failed",
			zap.Int64("farmer_id", farmerID),
			zap.Int("total_received", len(batch)),
			zap.Error(err))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if errors.Is(err, apperr.ErrStorage) {
			return nil, err
		}
		return nil, apperr.Wrap(err, apperr.ErrStorage, "SYNC_FAILED", "note sync failed")
	}

	r.observe("ok", report, start)
	r.logger.Info("note sync complete",
		zap.Int64("farmer_id", farmerID),
		zap.Int("total_received", report.TotalReceived),
		zap.Int("created", report.CreatedCount),
		zap.Int("updated", report.UpdatedCount),
		zap.Int("skipped", report.SkippedCount),
		zap.Int("errors", report.ErrorCount),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

func (r *Reconciler) observe(result string, rep *Report, start time.Time) {
	if r.recorder == nil {
		return
	}
	r.recorder.ObserveBatch(result, rep.CreatedCount, rep.UpdatedCount, rep.SkippedCount, rep.ErrorCount, time.Since(start))
}

// reconcile decides and applies the outcome of one item. It never returns
// an error: every failure becomes a Failed outcome.
func (r *Reconciler) reconcile(ctx context.Context, tx store.Store, farmerID int64, index int, item Upload, now time.Time) (out Outcome) {
	out = Outcome{Index: index, ClientID: item.ClientID, FarmID: item.FarmID}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic while reconciling note", zap.Int("index", index), zap.Any("panic", p))
			out = out.failed("unexpected error processing note")
		}
	}()

	fields, err := r.validate(item)
	if err != nil {
		return out.failed(apperr.Message(err))
	}

	farm, err := tx.FarmByID(ctx, fields.FarmID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return out.skipped(ReasonOwnership, 0)
	case err != nil:
		return out.failed(apperr.Message(err))
	case !farm.OwnedBy(farmerID):
		r.logger.Warn("note references a farm of another farmer",
			zap.Int64("farmer_id", farmerID),
			zap.Int64("farm_id", fields.FarmID),
			zap.Int("index", index))
		return out.skipped(ReasonOwnership, 0)
	}

	res, err := r.apply(ctx, tx, farmerID, fields, out, now)
	var ce *createError
	if errors.As(err, &ce) {
		// Lost an insert race on the note key. The row now exists, so the
		// second attempt takes the update path.
		r.logger.Debug("retrying note after insert failure", zap.String("client_id", fields.ClientID), zap.Error(ce.err))
		res, err = r.apply(ctx, tx, farmerID, fields, out, now)
	}
	if err != nil {
		return out.failed(apperr.Message(err))
	}
	return res
}

type createError struct{ err error }

func (e *createError) Error() string { return e.err.Error() }
func (e *createError) Unwrap() error { return e.err }

// apply runs the dedup lookup and the write inside a savepoint so a failure
// leaves no trace of this item.
func (r *Reconciler) apply(ctx context.Context, tx store.Store, farmerID int64, f model.NoteFields, out Outcome, now time.Time) (Outcome, error) {
	var res Outcome
	err := tx.WithTx(ctx, func(itx store.Store) error {
		existing, err := itx.NoteByClientID(ctx, farmerID, f.ClientID)
		if errors.Is(err, apperr.ErrNotFound) {
			note := model.NewNote(farmerID, f, now)
			if err := itx.CreateNote(ctx, &note); err != nil {
				return &createError{err: err}
			}
			res = out.created(note.ID)
			return nil
		}
		if err != nil {
			return err
		}

		if existing.FarmID != f.FarmID {
			return apperr.New(apperr.ErrItemProcessing, "NOTE_FARM_MISMATCH",
				fmt.Sprintf("note %s belongs to farm %d", f.ClientID, existing.FarmID))
		}
		if f.UpdatedAt.Before(existing.UpdatedAt) {
			res = out.skipped(ReasonStale, existing.ID)
			return nil
		}
		if f.UpdatedAt.Equal(existing.UpdatedAt) && f.Content == existing.Content {
			res = out.skipped(ReasonDuplicate, existing.ID)
			return nil
		}

		existing.Title = f.Title
		existing.Content = f.Content
		existing.IsDeleted = f.IsDeleted
		existing.UpdatedAt = f.UpdatedAt
		existing.SyncedAt = now
		if err := itx.UpdateNote(ctx, existing); err != nil {
			return err
		}
		res = out.updated(existing.ID)
		return nil
	})
	return res, err
}

func (r *Reconciler) validate(u Upload) (model.NoteFields, error) {
	invalid := func(format string, args ...any) (model.NoteFields, error) {
		return model.NoteFields{}, apperr.New(apperr.ErrValidation, "VALIDATION_ERROR", fmt.Sprintf(format, args...))
	}

	clientID := strings.TrimSpace(u.ClientID)
	if clientID == "" {
		return invalid("client_id is required")
	}
	if _, err := uuid.Parse(clientID); err != nil {
		return invalid("client_id must be a UUID")
	}
	if u.FarmID <= 0 {
		return invalid("farm_id is required")
	}
	title := strings.TrimSpace(u.Title)
	if title == "" {
		return invalid("title is required")
	}
	if r.cfg.MaxTitleLength > 0 && utf8.RuneCountInString(title) > r.cfg.MaxTitleLength {
		return invalid("title may not be longer than %d characters", r.cfg.MaxTitleLength)
	}
	if u.Content == "" {
		return invalid("content is required")
	}
	if r.cfg.MaxContentBytes > 0 && len(u.Content) > r.cfg.MaxContentBytes {
		return invalid("content may not be larger than %d bytes", r.cfg.MaxContentBytes)
	}
	createdAt, err := parse.Timestamp(u.CreatedAt)
	if err != nil {
		return invalid("created_at: %v", err)
	}
	updatedAt, err := parse.Timestamp(u.UpdatedAt)
	if err != nil {
		return invalid("updated_at: %v", err)
	}

	return model.NoteFields{
		ClientID:  clientID,
		FarmID:    u.FarmID,
		Title:     title,
		Content:   u.Content,
		IsDeleted: u.IsDeleted,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func sortedKeys(m map[int64]struct{}) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
