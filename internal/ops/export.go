package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hpungsan/reelcraft/internal/content"
	"github.com/hpungsan/reelcraft/internal/errors"
)

// RenderInput contains parameters for the Render operation.
type RenderInput struct {
	ID     string   // required
	Format string   // json (default) or csv
	Fields []string // optional subset, default: every field with a value
}

// Rendered is an encoded export held in memory.
type Rendered struct {
	Data     []byte          `json:"-"`
	Format   content.Format  `json:"format"`
	Fields   []content.Field `json:"fields"`
	Filename string          `json:"filename"`
}

// Render encodes a session's current content without touching the disk. The
// CLI uses it for --stdout and the web layer for downloads.
func (s *Service) Render(ctx context.Context, input RenderInput) (*Rendered, error) {
	format, ok := content.ParseFormat(input.Format)
	if !ok {
		return nil, errors.NewValidation("format must be json or csv")
	}
	fields, err := content.ParseFields(input.Fields)
	if err != nil {
		return nil, err
	}

	ls, err := s.live(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	state := ls.ctrl.Snapshot()
	if state.Current == nil {
		return nil, errors.NewValidation("session has no content to export")
	}

	selected := content.Selected(state.Current, fields)
	if len(selected) == 0 {
		return nil, errors.NewValidation("none of the requested fields hold a value")
	}
	data, err := content.Encode(state.Current, selected, format)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &Rendered{
		Data:     data,
		Format:   format,
		Fields:   selected,
		Filename: exportFilename(state.Form.Topic, format, time.Now()),
	}, nil
}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID     string   // required
	Format string   // json (default) or csv
	Fields []string // optional subset
	Path   string   // optional, default: ~/.reelcraft/exports/<topic>-<timestamp>.<ext>
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string          `json:"path"`
	Format     content.Format  `json:"format"`
	Fields     []content.Field `json:"fields"`
	Bytes      int             `json:"bytes"`
	ExportedAt int64           `json:"exported_at"`
}

// Export writes a session's current content to a file. The file is written
// to a temp name and renamed into place so an existing export survives a
// failed write.
func (s *Service) Export(ctx context.Context, input ExportInput) (*ExportOutput, error) {
	rendered, err := s.Render(ctx, RenderInput{ID: input.ID, Format: input.Format, Fields: input.Fields})
	if err != nil {
		return nil, err
	}
	now := time.Now()

	exportPath := strings.TrimSpace(input.Path)
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, rendered.Filename)
	}

	// Default paths are checked too: the topic is user text
	if err := ValidatePath(exportPath, PathCheckWrite, s.cfg); err != nil {
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(exportPath)); ext != rendered.Format.Extension() {
		return nil, errors.NewValidation(fmt.Sprintf("path extension %s does not match format %s", ext, rendered.Format))
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}
	if err := writeAtomic(ctx, exportPath, rendered.Data); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("session", input.ID).Str("path", exportPath).Msg("session exported")
	return &ExportOutput{
		Path:       exportPath,
		Format:     rendered.Format,
		Fields:     rendered.Fields,
		Bytes:      len(rendered.Data),
		ExportedAt: now.Unix(),
	}, nil
}

// writeAtomic writes data to a temp file beside path and renames it over path.
func writeAtomic(ctx context.Context, path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if ctx.Err() != nil {
		return errors.NewCancelled("export")
	}

	// os.Rename would follow a symlinked destination
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewValidation("export path is a symlink")
	}

	// Windows refuses to rename over an existing file. The existing export is
	// kept rather than risking a delete followed by a failed rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewValidation("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}

// exportFilename builds <topic>-<timestamp>.<ext> from a sanitized topic.
func exportFilename(topic string, format content.Format, now time.Time) string {
	name := SanitizeForFilename(content.Normalize(topic))
	return name + "-" + now.Format("2006-01-02T150405") + format.Extension()
}
