package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/newsprowl/newsprowl/internal/types"
)

// --- JSON Storage ---

// JSONStorage buffers records and writes them as one JSON array on Close.
type JSONStorage struct {
	path    string
	records []types.ArticleRecord
	mu      sync.Mutex
	logger  *slog.Logger
}

// NewJSONStorage creates a new JSON file storage.
func NewJSONStorage(outputPath string, logger *slog.Logger) (*JSONStorage, error) {
	path := outputPath
	if filepath.Ext(path) == "" {
		path = filepath.Join(path, "articles.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &types.StorageError{Backend: "json", Err: err}
	}

	return &JSONStorage{
		path:   path,
		logger: logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(records []types.ArticleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	s.logger.Debug("records buffered", "count", len(records), "total", len(s.records))
	return nil
}

func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return &types.StorageError{Backend: "json", Err: err}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.records); err != nil {
		return &types.StorageError{Backend: "json", Err: err}
	}

	s.logger.Info("JSON written", "path", s.path, "articles", len(s.records))
	return nil
}

// --- JSONL Storage ---

// JSONLStorage streams records as newline-delimited JSON, one object per
// line, written as they arrive.
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage.
func NewJSONLStorage(outputPath string, logger *slog.Logger) (*JSONLStorage, error) {
	path := outputPath
	if filepath.Ext(path) == "" {
		path = filepath.Join(path, "articles.jsonl")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &types.StorageError{Backend: "jsonl", Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, &types.StorageError{Backend: "jsonl", Err: err}
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)

	return &JSONLStorage{
		path:   path,
		file:   f,
		enc:    enc,
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(records []types.ArticleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if err := s.enc.Encode(r); err != nil {
			return &types.StorageError{Backend: "jsonl", Err: err}
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("JSONL written", "path", s.path, "articles", s.count)
	return s.file.Close()
}

// --- Per-Article File Storage ---

// FileStorage writes each article to its own JSON file, named
// <slug>_<YYYYMMDD>_<NNN>.json from the title, publish date, and a running
// sequence number.
type FileStorage struct {
	dir    string
	mu     sync.Mutex
	seq    int
	logger *slog.Logger
}

// NewFileStorage creates a per-article file storage rooted at dir.
func NewFileStorage(dir string, logger *slog.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.StorageError{Backend: "files", Err: err}
	}
	return &FileStorage{
		dir:    dir,
		logger: logger.With("component", "file_storage"),
	}, nil
}

func (s *FileStorage) Name() string { return "files" }

func (s *FileStorage) Store(records []types.ArticleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range records {
		r := &records[i]
		s.seq++
		name := fmt.Sprintf("%s_%s_%03d.json", Slug(r.Title), NormalizeDate(r.PublishDateRaw), s.seq)
		path := filepath.Join(s.dir, name)

		data, err := r.ToJSON()
		if err != nil {
			return &types.StorageError{Backend: "files", Err: err}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return &types.StorageError{Backend: "files", Err: err}
		}
		s.logger.Debug("article written", "path", path)
	}
	return nil
}

func (s *FileStorage) Close() error {
	s.logger.Info("file storage closing", "articles", s.seq, "dir", s.dir)
	return nil
}
