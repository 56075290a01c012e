package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// NewVideo inserts a freshly uploaded video with both stages pending.
func (s *Store) NewVideo(ctx context.Context, ownerID, title, description, mediaURL string) (*Video, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return nil, errors.New("media url is required")
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO videos (
            owner_id, title, description, media_url,
            transcription_status, vision_status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ownerID,
		strings.TrimSpace(title),
		nullableString(strings.TrimSpace(description)),
		mediaURL,
		StatusPending,
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetVideo(ctx, id)
}

// GetVideo fetches a video by identifier. Returns nil when absent.
func (s *Store) GetVideo(ctx context.Context, id int64) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// VideosByOwner returns an owner's videos ordered by newest upload first.
func (s *Store) VideosByOwner(ctx context.Context, ownerID string) ([]*Video, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+videoColumns+` FROM videos WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query videos by owner: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	return videos, rows.Err()
}

// RemoveVideo deletes a video; its transcript and tags cascade away with it.
func (s *Store) RemoveVideo(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Health aggregates per-stage status counts for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT transcription_status, vision_status, COUNT(1)
         FROM videos GROUP BY transcription_status, vision_status`,
	)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("catalog health: %w", err)
	}
	defer rows.Close()

	health := HealthSummary{
		Transcription: make(map[StageStatus]int),
		Vision:        make(map[StageStatus]int),
	}
	for rows.Next() {
		var (
			transcription string
			vision        string
			count         int
		)
		if err := rows.Scan(&transcription, &vision, &count); err != nil {
			return HealthSummary{}, err
		}
		health.Total += count
		health.Transcription[StageStatus(transcription)] += count
		health.Vision[StageStatus(vision)] += count
	}
	return health, rows.Err()
}

const videoColumns = "id, owner_id, title, description, media_url, transcription_status, vision_status, transcription_error, vision_error, created_at, updated_at"

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		id                 int64
		ownerID            string
		title              sql.NullString
		description        sql.NullString
		mediaURL           string
		transcription      string
		vision             string
		transcriptionError sql.NullString
		visionError        sql.NullString
		createdRaw         sql.NullString
		updatedRaw         sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&ownerID,
		&title,
		&description,
		&mediaURL,
		&transcription,
		&vision,
		&transcriptionError,
		&visionError,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	video := &Video{
		ID:                  id,
		OwnerID:             ownerID,
		Title:               title.String,
		Description:         description.String,
		MediaURL:            mediaURL,
		TranscriptionStatus: StageStatus(transcription),
		VisionStatus:        StageStatus(vision),
		TranscriptionError:  transcriptionError.String,
		VisionError:         visionError.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		video.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		video.UpdatedAt = updated
	}
	return video, nil
}
