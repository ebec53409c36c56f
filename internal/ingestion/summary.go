package ingestion

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Counts tallies row outcomes.
type Counts struct {
	Accepted         int `json:"accepted" yaml:"accepted"`
	SkippedStale     int `json:"skipped_stale" yaml:"skipped_stale"`
	SkippedMalformed int `json:"skipped_malformed" yaml:"skipped_malformed"`
	SkippedDuplicate int `json:"skipped_duplicate" yaml:"skipped_duplicate"`
}

func (c *Counts) add(o Outcome) {
	switch o {
	case OutcomeAccept:
		c.Accepted++
	case OutcomeSkipStale:
		c.SkippedStale++
	case OutcomeSkipMalformed:
		c.SkippedMalformed++
	case OutcomeSkipDuplicate:
		c.SkippedDuplicate++
	}
}

func (c *Counts) merge(other Counts) {
	c.Accepted += other.Accepted
	c.SkippedStale += other.SkippedStale
	c.SkippedMalformed += other.SkippedMalformed
	c.SkippedDuplicate += other.SkippedDuplicate
}

// Rows is the number of rows that reached a terminal state.
func (c Counts) Rows() int {
	return c.Accepted + c.SkippedStale + c.SkippedMalformed + c.SkippedDuplicate
}

// FileStatus is the per-file outcome.
type FileStatus string

const (
	FileProcessed          FileStatus = "processed"
	FilePartial            FileStatus = "partial"
	FileSkippedUnsupported FileStatus = "skipped_unsupported"
	FileSkippedUnreadable  FileStatus = "skipped_unreadable"
	FileAborted            FileStatus = "aborted"
)

// FileSummary reports one input file.
type FileSummary struct {
	Path   string     `json:"path" yaml:"path"`
	Status FileStatus `json:"status" yaml:"status"`
	Error  string     `json:"error,omitempty" yaml:"error,omitempty"`

	Counts `yaml:",inline"`
}

// RunSummary is produced once per run and never persisted in the store.
type RunSummary struct {
	RunID      string    `json:"run_id" yaml:"run_id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`

	Counts `yaml:",inline"`

	Files []FileSummary `json:"files" yaml:"files"`
}

func (s *RunSummary) addFile(fs FileSummary) {
	s.Files = append(s.Files, fs)
	s.Counts.merge(fs.Counts)
}

// Report formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ParseFormat maps a config or flag value to a report format. Empty means yaml.
func ParseFormat(format string) (string, error) {
	switch format {
	case "", FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q", format)
	}
}

// WriteReport renders the summary in the given format.
func WriteReport(w io.Writer, s *RunSummary, format string) error {
	switch format {
	case "", FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml report: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json report: %w", err)
		}
		b = append(b, '\n')
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
