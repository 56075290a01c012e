package catalog

import (
	"sort"
	"strings"
	"time"
)

// StageStatus represents the lifecycle of one processing stage for a video.
type StageStatus string

const (
	StatusPending    StageStatus = "pending"
	StatusProcessing StageStatus = "processing"
	StatusCompleted  StageStatus = "completed"
	StatusFailed     StageStatus = "failed"
)

var allStatuses = []StageStatus{
	StatusPending,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[StageStatus]struct{} {
	set := make(map[StageStatus]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known stage statuses.
func AllStatuses() []StageStatus {
	cp := make([]StageStatus, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known StageStatus.
func ParseStatus(value string) (StageStatus, bool) {
	normalized := StageStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Stage identifies which of a video's two independent processing stages a
// store operation targets.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageVision        Stage = "vision"
)

// statusColumn maps a stage to its status column. Callers must only build SQL
// from this value, never from raw input.
func (s Stage) statusColumn() (string, bool) {
	switch s {
	case StageTranscription:
		return "transcription_status", true
	case StageVision:
		return "vision_status", true
	default:
		return "", false
	}
}

func (s Stage) errorColumn() (string, bool) {
	switch s {
	case StageTranscription:
		return "transcription_error", true
	case StageVision:
		return "vision_error", true
	default:
		return "", false
	}
}

// Video is the aggregate root persisted per upload. Its two stage statuses
// are independent; transcripts and tags hang off it and cascade on delete.
type Video struct {
	ID                  int64
	OwnerID             string
	Title               string
	Description         string
	MediaURL            string
	TranscriptionStatus StageStatus
	VisionStatus        StageStatus
	TranscriptionError  string
	VisionError         string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// StageStatus returns the status of the requested stage.
func (v *Video) StageStatus(stage Stage) StageStatus {
	if stage == StageVision {
		return v.VisionStatus
	}
	return v.TranscriptionStatus
}

// IsProcessing reports whether either stage is currently running.
func (v *Video) IsProcessing() bool {
	return v.TranscriptionStatus == StatusProcessing || v.VisionStatus == StatusProcessing
}

// IsCompleted reports whether both stages finished successfully.
func (v *Video) IsCompleted() bool {
	return v.TranscriptionStatus == StatusCompleted && v.VisionStatus == StatusCompleted
}

// TranscriptKind distinguishes the two stored transcript representations.
type TranscriptKind string

const (
	// TranscriptSingle holds one flat text body with timestamped segments.
	TranscriptSingle TranscriptKind = "single"
	// TranscriptMultilingual holds per-language results keyed by language code.
	TranscriptMultilingual TranscriptKind = "multilingual"
)

// Segment is a timestamped slice of transcribed speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// LanguageResult is one language's transcript within a multilingual row.
type LanguageResult struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
}

// Transcript is the at-most-one-per-video transcription result. Kind selects
// which representation is populated; a representation switch replaces the row.
type Transcript struct {
	ID      int64
	VideoID int64
	Kind    TranscriptKind

	// Populated when Kind == TranscriptSingle.
	Text     string
	Segments []Segment

	// Populated when Kind == TranscriptMultilingual.
	Results            map[string]LanguageResult
	ProcessedLanguages []string
	ProcessingStatus   StageStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlainText flattens the transcript into searchable text regardless of kind.
func (t *Transcript) PlainText() string {
	if t == nil {
		return ""
	}
	if t.Kind == TranscriptSingle {
		return t.Text
	}
	langs := make([]string, 0, len(t.Results))
	for lang := range t.Results {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	parts := make([]string, 0, len(langs))
	for _, lang := range langs {
		if text := strings.TrimSpace(t.Results[lang].Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// Languages returns the sorted set of language codes stored on the transcript.
func (t *Transcript) Languages() []string {
	if t == nil {
		return nil
	}
	langs := make([]string, len(t.ProcessedLanguages))
	copy(langs, t.ProcessedLanguages)
	sort.Strings(langs)
	return langs
}

// DefaultConfidence is the neutral score used when a tag carries no
// confidence. Absent is never treated as zero.
const DefaultConfidence = 0.5

// Tag is one vision-analysis annotation on a video.
type Tag struct {
	ID         int64
	VideoID    int64
	Label      string
	Type       string
	Confidence *float64
	Timestamp  *float64
	CreatedAt  time.Time
}

// Score returns the confidence used by relevance scoring, applying the
// neutral default when confidence is absent.
func (t Tag) Score() float64 {
	if t.Confidence == nil {
		return DefaultConfidence
	}
	return *t.Confidence
}

// HealthSummary describes aggregated per-stage status counts.
type HealthSummary struct {
	Total         int                 `json:"total"`
	Transcription map[StageStatus]int `json:"transcription"`
	Vision        map[StageStatus]int `json:"vision"`
}
