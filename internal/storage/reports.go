// Package storage archives completed interview reports.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/AhmedIzaan/ai-interview-coach/internal/models"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrInvalidReportID = errors.New("invalid report id")
	ErrUnknownFormat   = errors.New("unknown report format")
)

const filePrefix = "interview_"

// Format is the on-disk encoding of a report.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Report is a completed interview.
type Report struct {
	SessionID   string                `json:"session_id" yaml:"session_id"`
	Role        string                `json:"role" yaml:"role"`
	Tone        models.Tone           `json:"tone" yaml:"tone"`
	CompletedAt time.Time             `json:"completed_at" yaml:"completed_at"`
	Feedback    models.FeedbackRecord `json:"feedback" yaml:"feedback"`
}

// ReportStore keeps one file per session under a directory: interview_<id>.<format>.
type ReportStore struct {
	fs     afero.Fs
	dir    string
	format Format
}

// NewReportStore creates a store writing format ("json" or "yaml") files under dir.
func NewReportStore(fs afero.Fs, dir string, format string) (*ReportStore, error) {
	f := Format(strings.ToLower(format))
	if f == "" {
		f = FormatJSON
	}
	if f != FormatJSON && f != FormatYAML {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return &ReportStore{fs: fs, dir: dir, format: f}, nil
}

// Dir returns the archive directory.
func (s *ReportStore) Dir() string { return s.dir }

// Save writes r, replacing any earlier report for the same session.
func (s *ReportStore) Save(r Report) (string, error) {
	if err := validateID(r.SessionID); err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir %s: %w", s.dir, err)
	}

	data, err := encode(s.format, r)
	if err != nil {
		return "", fmt.Errorf("encode report %s: %w", r.SessionID, err)
	}

	path := s.path(r.SessionID, s.format)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}

// Load reads the report for sessionID in either format.
func (s *ReportStore) Load(sessionID string) (*Report, error) {
	if err := validateID(sessionID); err != nil {
		return nil, err
	}

	for _, f := range s.lookupOrder() {
		path := s.path(sessionID, f)
		data, err := afero.ReadFile(s.fs, path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read report %s: %w", path, err)
		}
		var r Report
		if err := decode(f, data, &r); err != nil {
			return nil, fmt.Errorf("decode report %s: %w", path, err)
		}
		return &r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrReportNotFound, sessionID)
}

// List returns the ids of all archived sessions, sorted.
func (s *ReportStore) List() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read report dir %s: %w", s.dir, err)
	}

	seen := make(map[string]bool)
	ids := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".json" && ext != ".yaml" {
			continue
		}
		if !strings.HasPrefix(name, filePrefix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ext)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *ReportStore) path(id string, f Format) string {
	return filepath.Join(s.dir, filePrefix+id+"."+string(f))
}

func (s *ReportStore) lookupOrder() []Format {
	if s.format == FormatYAML {
		return []Format{FormatYAML, FormatJSON}
	}
	return []Format{FormatJSON, FormatYAML}
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidReportID, id)
	}
	return nil
}

func encode(f Format, r Report) ([]byte, error) {
	if f == FormatYAML {
		return yaml.Marshal(r)
	}
	return json.MarshalIndent(r, "", "  ")
}

func decode(f Format, data []byte, r *Report) error {
	if f == FormatYAML {
		return yaml.Unmarshal(data, r)
	}
	return json.Unmarshal(data, r)
}
