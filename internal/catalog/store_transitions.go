package catalog

import (
	"context"
	"fmt"
	"time"
)

// BeginStage atomically flips a stage to processing, but only when its
// current status is one of the allowed prior statuses. The single conditional
// UPDATE is what enforces the at-most-one-concurrent-run-per-stage invariant:
// two racing starts cannot both observe an eligible status and both win. The
// returned bool reports whether this caller performed the flip.
func (s *Store) BeginStage(ctx context.Context, id int64, stage Stage, from ...StageStatus) (bool, error) {
	statusCol, ok := stage.statusColumn()
	if !ok {
		return false, fmt.Errorf("unknown stage %q", stage)
	}
	errorCol, _ := stage.errorColumn()
	if len(from) == 0 {
		from = []StageStatus{StatusPending, StatusFailed}
	}

	args := make([]any, 0, len(from)+3)
	args = append(args, StatusProcessing, time.Now().UTC().Format(time.RFC3339Nano), id)
	for _, status := range from {
		args = append(args, status)
	}

	query := `UPDATE videos SET ` + statusCol + ` = ?, ` + errorCol + ` = NULL, updated_at = ?
        WHERE id = ? AND ` + statusCol + ` IN (` + makePlaceholders(len(from)) + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("begin %s stage: %w", stage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// FinishStage writes a stage's terminal status. The error message is stored
// only for failed outcomes and cleared otherwise.
func (s *Store) FinishStage(ctx context.Context, id int64, stage Stage, status StageStatus, errMsg string) error {
	statusCol, ok := stage.statusColumn()
	if !ok {
		return fmt.Errorf("unknown stage %q", stage)
	}
	errorCol, _ := stage.errorColumn()

	if status != StatusFailed {
		errMsg = ""
	}
	query := `UPDATE videos SET ` + statusCol + ` = ?, ` + errorCol + ` = ?, updated_at = ? WHERE id = ?`
	res, err := s.execWithRetry(
		ctx,
		query,
		status,
		nullableString(errMsg),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish %s stage: %w", stage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish %s stage: video %d gone", stage, id)
	}
	return nil
}

// ResetStuckProcessing returns stages stuck in processing back to pending.
// Used on daemon startup after an unclean shutdown.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE videos SET
            transcription_status = CASE transcription_status WHEN ? THEN ? ELSE transcription_status END,
            vision_status = CASE vision_status WHEN ? THEN ? ELSE vision_status END,
            updated_at = ?
         WHERE transcription_status = ? OR vision_status = ?`,
		StatusProcessing, StatusPending,
		StatusProcessing, StatusPending,
		now,
		StatusProcessing,
		StatusProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck processing: %w", err)
	}
	return res.RowsAffected()
}
