package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// TranscriptForVideo fetches a video's transcript. Returns nil when absent.
func (s *Store) TranscriptForVideo(ctx context.Context, videoID int64) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transcriptColumns+` FROM transcripts WHERE video_id = ?`, videoID)
	transcript, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return transcript, nil
}

// HasTranscript reports transcript presence without materializing the row.
func (s *Store) HasTranscript(ctx context.Context, videoID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM transcripts WHERE video_id = ?`, videoID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count transcripts: %w", err)
	}
	return count > 0, nil
}

// SaveSingleTranscript stores a single-language transcript, replacing any
// prior row for the video regardless of its representation. The language is
// recorded so a later re-run can tell whether it targets something new.
func (s *Store) SaveSingleTranscript(ctx context.Context, videoID int64, language, text string, segments []Segment) error {
	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	languagesJSON := sql.NullString{}
	if language != "" {
		encoded, err := json.Marshal([]string{language})
		if err != nil {
			return fmt.Errorf("marshal language: %w", err)
		}
		languagesJSON = sql.NullString{String: string(encoded), Valid: true}
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = s.execWithRetry(
		ctx,
		`INSERT INTO transcripts (
            video_id, kind, body_text, segments_json, results_json,
            processed_languages_json, processing_status, search_text, created_at, updated_at
        ) VALUES (?, ?, ?, ?, NULL, ?, NULL, ?, ?, ?)
        ON CONFLICT (video_id) DO UPDATE SET
            kind = excluded.kind,
            body_text = excluded.body_text,
            segments_json = excluded.segments_json,
            results_json = NULL,
            processed_languages_json = excluded.processed_languages_json,
            processing_status = NULL,
            search_text = excluded.search_text,
            updated_at = excluded.updated_at`,
		videoID,
		TranscriptSingle,
		text,
		string(segmentsJSON),
		languagesJSON,
		text,
		timestamp,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// MergeMultilingualTranscript upserts per-language results into a video's
// multilingual transcript. Existing language entries not present in results
// are preserved, so a second run with additional languages extends the row.
// A prior single-language row is replaced outright.
func (s *Store) MergeMultilingualTranscript(ctx context.Context, videoID int64, results map[string]LanguageResult, status StageStatus) error {
	if len(results) == 0 {
		return errors.New("no language results to merge")
	}

	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transcript tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		merged := make(map[string]LanguageResult, len(results))
		row := tx.QueryRowContext(ctx, `SELECT kind, results_json FROM transcripts WHERE video_id = ?`, videoID)
		var (
			kind        sql.NullString
			resultsJSON sql.NullString
		)
		scanErr := row.Scan(&kind, &resultsJSON)
		if scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
			return fmt.Errorf("read transcript: %w", scanErr)
		}
		if scanErr == nil && TranscriptKind(kind.String) == TranscriptMultilingual && resultsJSON.Valid {
			if err := json.Unmarshal([]byte(resultsJSON.String), &merged); err != nil {
				return fmt.Errorf("decode stored results: %w", err)
			}
		}
		for lang, result := range results {
			merged[lang] = result
		}

		languages := make([]string, 0, len(merged))
		for lang := range merged {
			languages = append(languages, lang)
		}
		sort.Strings(languages)

		mergedJSON, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("marshal results: %w", err)
		}
		languagesJSON, err := json.Marshal(languages)
		if err != nil {
			return fmt.Errorf("marshal languages: %w", err)
		}
		searchText := (&Transcript{Kind: TranscriptMultilingual, Results: merged}).PlainText()
		timestamp := time.Now().UTC().Format(time.RFC3339Nano)

		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO transcripts (
                video_id, kind, body_text, segments_json, results_json,
                processed_languages_json, processing_status, search_text, created_at, updated_at
            ) VALUES (?, ?, NULL, NULL, ?, ?, ?, ?, ?, ?)
            ON CONFLICT (video_id) DO UPDATE SET
                kind = excluded.kind,
                body_text = NULL,
                segments_json = NULL,
                results_json = excluded.results_json,
                processed_languages_json = excluded.processed_languages_json,
                processing_status = excluded.processing_status,
                search_text = excluded.search_text,
                updated_at = excluded.updated_at`,
			videoID,
			TranscriptMultilingual,
			string(mergedJSON),
			string(languagesJSON),
			status,
			searchText,
			timestamp,
			timestamp,
		)
		if err != nil {
			return fmt.Errorf("merge transcript: %w", err)
		}
		return tx.Commit()
	})
}

// RemoveTranscript discards a video's transcript row, if any.
func (s *Store) RemoveTranscript(ctx context.Context, videoID int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM transcripts WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}

const transcriptColumns = "id, video_id, kind, body_text, segments_json, results_json, processed_languages_json, processing_status, created_at, updated_at"

func scanTranscript(scanner interface{ Scan(dest ...any) error }) (*Transcript, error) {
	var (
		id            int64
		videoID       int64
		kind          string
		bodyText      sql.NullString
		segmentsJSON  sql.NullString
		resultsJSON   sql.NullString
		languagesJSON sql.NullString
		procStatus    sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&kind,
		&bodyText,
		&segmentsJSON,
		&resultsJSON,
		&languagesJSON,
		&procStatus,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	transcript := &Transcript{
		ID:      id,
		VideoID: videoID,
		Kind:    TranscriptKind(kind),
		Text:    bodyText.String,
	}
	if segmentsJSON.Valid && segmentsJSON.String != "" {
		if err := json.Unmarshal([]byte(segmentsJSON.String), &transcript.Segments); err != nil {
			return nil, fmt.Errorf("decode segments: %w", err)
		}
	}
	if resultsJSON.Valid && resultsJSON.String != "" {
		if err := json.Unmarshal([]byte(resultsJSON.String), &transcript.Results); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
	}
	if languagesJSON.Valid && languagesJSON.String != "" {
		if err := json.Unmarshal([]byte(languagesJSON.String), &transcript.ProcessedLanguages); err != nil {
			return nil, fmt.Errorf("decode processed languages: %w", err)
		}
	}
	if procStatus.Valid {
		transcript.ProcessingStatus = StageStatus(procStatus.String)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		transcript.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		transcript.UpdatedAt = updated
	}
	return transcript, nil
}
