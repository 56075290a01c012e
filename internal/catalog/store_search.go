package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// TranscriptMatch pairs a transcript-text hit with its owning video.
type TranscriptMatch struct {
	Video      *Video
	Transcript *Transcript
}

// SearchTranscripts performs a case-insensitive substring match over stored
// transcript text and returns matches joined with owning-video metadata.
// Ownership filtering is the caller's concern.
func (s *Store) SearchTranscripts(ctx context.Context, query string) ([]TranscriptMatch, error) {
	pattern, err := likePattern(query)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+prefixedVideoColumns("v")+`
         FROM transcripts t
         JOIN videos v ON v.id = t.video_id
         WHERE lower(t.search_text) LIKE ? ESCAPE '\'
         ORDER BY v.created_at DESC`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search transcripts: %w", err)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	matches := make([]TranscriptMatch, 0, len(videos))
	for _, video := range videos {
		transcript, err := s.TranscriptForVideo(ctx, video.ID)
		if err != nil {
			return nil, err
		}
		matches = append(matches, TranscriptMatch{Video: video, Transcript: transcript})
	}
	return matches, nil
}

// SearchCandidate is the raw material the query surface scores: a matching
// video with its flattened transcript text and full tag set.
type SearchCandidate struct {
	Video          *Video
	TranscriptText string
	Tags           []Tag
}

// SearchCandidates returns an owner's videos matching the query across title,
// description, transcript text, and tag labels. When tagType is non-empty the
// match is restricted to tags of that type only; title, description, and
// transcript hits are deliberately excluded (a filtered search is a tag
// search). Scoring happens in the query package, not here.
func (s *Store) SearchCandidates(ctx context.Context, ownerID, query, tagType string) ([]SearchCandidate, error) {
	pattern, err := likePattern(query)
	if err != nil {
		return nil, err
	}

	var (
		rowsQuery string
		args      []any
	)
	if tagType != "" {
		rowsQuery = `SELECT ` + prefixedVideoColumns("v") + `, COALESCE(t.search_text, '')
            FROM videos v
            LEFT JOIN transcripts t ON t.video_id = v.id
            WHERE v.owner_id = ?
              AND EXISTS (
                SELECT 1 FROM tags g
                WHERE g.video_id = v.id AND g.type = ? AND lower(g.label) LIKE ? ESCAPE '\'
              )
            ORDER BY v.created_at DESC`
		args = []any{ownerID, tagType, pattern}
	} else {
		rowsQuery = `SELECT ` + prefixedVideoColumns("v") + `, COALESCE(t.search_text, '')
            FROM videos v
            LEFT JOIN transcripts t ON t.video_id = v.id
            WHERE v.owner_id = ?
              AND (
                lower(v.title) LIKE ? ESCAPE '\'
                OR lower(COALESCE(v.description, '')) LIKE ? ESCAPE '\'
                OR lower(COALESCE(t.search_text, '')) LIKE ? ESCAPE '\'
                OR EXISTS (
                  SELECT 1 FROM tags g
                  WHERE g.video_id = v.id AND lower(g.label) LIKE ? ESCAPE '\'
                )
              )
            ORDER BY v.created_at DESC`
		args = []any{ownerID, pattern, pattern, pattern, pattern}
	}

	rows, err := s.db.QueryContext(ctx, rowsQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	defer rows.Close()

	var candidates []SearchCandidate
	for rows.Next() {
		video, searchText, err := scanVideoWithText(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, SearchCandidate{Video: video, TranscriptText: searchText})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range candidates {
		tags, err := s.TagsForVideo(ctx, candidates[i].Video.ID)
		if err != nil {
			return nil, err
		}
		candidates[i].Tags = tags
	}
	return candidates, nil
}

func likePattern(query string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(query))
	if trimmed == "" {
		return "", fmt.Errorf("search query is empty")
	}
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(trimmed) + "%", nil
}

func prefixedVideoColumns(alias string) string {
	parts := strings.Split(videoColumns, ", ")
	for i, part := range parts {
		parts[i] = alias + "." + part
	}
	return strings.Join(parts, ", ")
}

func scanVideoWithText(scanner interface{ Scan(dest ...any) error }) (*Video, string, error) {
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
		searchText         string
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
		&searchText,
	); err != nil {
		return nil, "", err
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
	return video, searchText, nil
}

