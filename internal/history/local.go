package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// LocalStore writes one directory per run under a base directory, named
// <timestamp>_<product-slug>, containing record.json and the final script
// as plain text for quick inspection.
type LocalStore struct {
	baseDir string
}

var _ Store = (*LocalStore)(nil)

func NewLocalStore(baseDir string) *LocalStore {
	if baseDir == "" {
		baseDir = "./reels"
	}
	return &LocalStore{baseDir: baseDir}
}

func (s *LocalStore) Record(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	dir := filepath.Join(s.baseDir, runDirName(rec.CreatedAt, rec.Request.ProductName))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create run dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "record.json"), data, 0644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	if rec.Script != nil && rec.Script.FinalScript != "" {
		if err := os.WriteFile(filepath.Join(dir, "script.txt"), []byte(rec.Script.FinalScript), 0644); err != nil {
			return fmt.Errorf("write script: %w", err)
		}
	}

	return nil
}

func runDirName(at time.Time, productName string) string {
	slug := sanitizeForPath(productName)
	if slug == "" {
		slug = "untitled"
	}
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return fmt.Sprintf("%s_%s", at.Format("20060102_150405"), slug)
}

func sanitizeForPath(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
