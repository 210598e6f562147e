// Package seed loads book datasets into the books collection.
package seed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"

	"github.com/bookworm-ai/bookworm/internal/models"
)

// Record is one row of a book dataset file.
type Record struct {
	ID            string   `json:"id" parquet:"id"`
	Title         string   `json:"title" parquet:"title"`
	Author        string   `json:"author" parquet:"author"`
	Publisher     string   `json:"publisher" parquet:"publisher"`
	PublishedDate string   `json:"published_date" parquet:"published_date"`
	Description   string   `json:"description" parquet:"description"`
	Thumbnail     string   `json:"thumbnail" parquet:"thumbnail"`
	Categories    []string `json:"categories" parquet:"categories,list"`
	Price         string   `json:"price" parquet:"price"`
}

// Book converts the record to a catalog book, assigning an id if the
// dataset has none.
func (r Record) Book() models.Book {
	id := r.ID
	if id == "" {
		id = uuid.NewString()
	}
	return models.Book{
		ID:            id,
		Title:         r.Title,
		Author:        r.Author,
		Publisher:     r.Publisher,
		PublishedDate: r.PublishedDate,
		Description:   r.Description,
		Thumbnail:     r.Thumbnail,
		Categories:    r.Categories,
		Price:         r.Price,
	}
}

// ItemWriter is the books-collection write surface.
type ItemWriter interface {
	PutItem(ctx context.Context, book models.Book) error
}

// Loader reads book records from a dataset file (JSONL or Parquet).
type Loader struct {
	path string
}

// NewLoader creates a loader for the given dataset file.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads up to limit records; limit <= 0 means all.
func (l *Loader) Load(limit int) ([]Record, error) {
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".parquet":
		return l.loadParquet(limit)
	case ".jsonl", ".json":
		return l.loadJSONL(limit)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .parquet, .jsonl)", ext)
	}
}

func (l *Loader) loadJSONL(limit int) ([]Record, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)

	const maxCapacity = 1024 * 1024 // 1MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit > 0 && len(records) >= limit {
			break
		}
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			// Skip malformed lines but continue
			slog.Warn("Skipping malformed dataset line", "line", lineNum, "err", err)
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL dataset", "total_records", len(records), "total_lines", lineNum)
	return records, nil
}

func (l *Loader) loadParquet(limit int) ([]Record, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	var records []Record
	rows := make([]Record, 128) // Read in batches

	for {
		if limit > 0 && len(records) >= limit {
			break
		}
		n, err := reader.Read(rows)
		if n > 0 {
			if limit > 0 && len(records)+n > limit {
				n = limit - len(records)
			}
			records = append(records, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading Parquet dataset", "total_records", len(records))
	return records, nil
}

// Import loads the dataset and upserts every record into the books
// collection. Records without a title are skipped.
func Import(ctx context.Context, writer ItemWriter, path string, limit int) (int, error) {
	records, err := NewLoader(path).Load(limit)
	if err != nil {
		return 0, err
	}

	imported := 0
	for _, record := range records {
		if record.Title == "" {
			continue
		}
		if err := writer.PutItem(ctx, record.Book()); err != nil {
			return imported, fmt.Errorf("import %q: %w", record.Title, err)
		}
		imported++
	}

	slog.Info("Dataset imported", "path", path, "records", imported)
	return imported, nil
}
