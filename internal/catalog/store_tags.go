package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReplaceTags swaps a video's full tag set in one transaction. Vision runs
// always replace, never merge, so stale annotations from a prior analysis
// cannot survive a re-run.
func (s *Store) ReplaceTags(ctx context.Context, videoID int64, tags []Tag) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tags tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE video_id = ?`, videoID); err != nil {
			return fmt.Errorf("clear tags: %w", err)
		}

		timestamp := time.Now().UTC().Format(time.RFC3339Nano)
		for _, tag := range tags {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO tags (video_id, label, type, confidence, timestamp, created_at)
                 VALUES (?, ?, ?, ?, ?, ?)`,
				videoID,
				tag.Label,
				tag.Type,
				nullableFloat(tag.Confidence),
				nullableFloat(tag.Timestamp),
				timestamp,
			); err != nil {
				return fmt.Errorf("insert tag %q: %w", tag.Label, err)
			}
		}
		return tx.Commit()
	})
}

// TagsForVideo returns a video's tags ordered by descending confidence, with
// unscored tags sorted at their neutral default position.
func (s *Store) TagsForVideo(ctx context.Context, videoID int64) ([]Tag, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+tagColumns+` FROM tags WHERE video_id = ?
         ORDER BY COALESCE(confidence, ?) DESC, label`,
		videoID,
		DefaultConfidence,
	)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

// TagCount returns the number of tags stored for a video.
func (s *Store) TagCount(ctx context.Context, videoID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tags WHERE video_id = ?`, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return count, nil
}

const tagColumns = "id, video_id, label, type, confidence, timestamp, created_at"

func collectTags(rows *sql.Rows) ([]Tag, error) {
	var tags []Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func scanTag(scanner interface{ Scan(dest ...any) error }) (Tag, error) {
	var (
		id         int64
		videoID    int64
		label      string
		tagType    string
		confidence sql.NullFloat64
		timestamp  sql.NullFloat64
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &videoID, &label, &tagType, &confidence, &timestamp, &createdRaw); err != nil {
		return Tag{}, err
	}

	tag := Tag{
		ID:      id,
		VideoID: videoID,
		Label:   label,
		Type:    tagType,
	}
	if confidence.Valid {
		value := confidence.Float64
		tag.Confidence = &value
	}
	if timestamp.Valid {
		value := timestamp.Float64
		tag.Timestamp = &value
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		tag.CreatedAt = created
	}
	return tag, nil
}
