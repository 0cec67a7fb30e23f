package ops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/hpungsan/promptbase/internal/errors"
	"github.com/hpungsan/promptbase/internal/prompt"
)

// maxImportLine bounds a single JSONL line; bufio's default of 64 KiB is too
// small for long prompt bodies.
const maxImportLine = 4 * 1024 * 1024

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string `json:"path"` // required
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import reads a JSONL export and inserts every record as a new prompt.
// Ids in the file are ignored; created_at and favorite state are kept.
// Bad lines are skipped and reported; good lines are still imported.
// A store failure or cancellation stops the import: the counts so far are
// returned together with the error, and lines already inserted stay.
func Import(ctx context.Context, store Store, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.As(err) != nil {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	out := &ImportOutput{Errors: make([]ImportError, 0)}
	skip := func(line int, code, msg string) {
		out.Skipped++
		out.Errors = append(out.Errors, ImportError{Line: line, Code: code, Message: msg})
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if err := ctx.Err(); err != nil {
			return out, errors.NewInvalidRequest("import cancelled")
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record prompt.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			skip(lineNum, "PARSE_ERROR", fmt.Sprintf("invalid JSON: %v", err))
			continue
		}
		if record.PromptbaseExport {
			continue
		}

		if _, err := prompt.Validate(record.Title, record.Body); err != nil {
			skip(lineNum, string(errors.ErrValidation), err.Error())
			continue
		}

		p := record.ToPrompt()
		now := nowFunc().Unix()
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}
		if p.UpdatedAt < p.CreatedAt {
			p.UpdatedAt = p.CreatedAt
		}

		if err := store.Insert(ctx, p); err != nil {
			return out, err
		}
		out.Imported++
	}

	if err := scanner.Err(); err != nil {
		skip(lineNum+1, "READ_ERROR", fmt.Sprintf("failed to read file: %v", err))
	}

	return out, nil
}
