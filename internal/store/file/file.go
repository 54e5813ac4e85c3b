// Package file saves the loan record as JSON and the rendered schedule as
// text inside a configured directory.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"loanschedule/internal/core"
	applog "loanschedule/internal/log"
	"loanschedule/internal/report"
	"loanschedule/internal/store"
)

const (
	DetailsFile  = store.RecordKey + ".json"
	ScheduleFile = "repayment_schedule.txt"
)

type Store struct {
	dir    string
	logger *applog.Logger
}

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Store{dir: dir, logger: logger.WithComponent(applog.ComponentStorage)}
}

// Paths returns the schedule and details file paths.
func (s *Store) Paths() (schedulePath, detailsPath string) {
	return filepath.Join(s.dir, ScheduleFile), filepath.Join(s.dir, DetailsFile)
}

// Save writes both files to temporary names first and only then renames
// them into place, details before schedule, so a failed save leaves the
// previous record untouched.
func (s *Store) Save(ctx context.Context, r store.Record, sched core.Schedule) error {
	logger := applog.FromContext(ctx, s.logger).WithComponent(applog.ComponentStorage)
	if err := r.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create save directory: %w", err)
	}

	schedulePath, detailsPath := s.Paths()

	details, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode loan details: %w", err)
	}
	var text bytes.Buffer
	if err := report.WriteFile(&text, sched); err != nil {
		return fmt.Errorf("render schedule: %w", err)
	}

	detailsTmp, err := stageFile(detailsPath, details)
	if err != nil {
		return fmt.Errorf("write loan details: %w", err)
	}
	defer os.Remove(detailsTmp)
	scheduleTmp, err := stageFile(schedulePath, text.Bytes())
	if err != nil {
		return fmt.Errorf("write schedule file: %w", err)
	}
	defer os.Remove(scheduleTmp)

	if err := os.Rename(detailsTmp, detailsPath); err != nil {
		fields := applog.NewFields().WithOperation(applog.OpSave).WithError(err)
		logger.WarnContext(ctx, "Loan details not replaced", fields.ToSlice()...)
		return fmt.Errorf("write loan details: %w", err)
	}
	if err := os.Rename(scheduleTmp, schedulePath); err != nil {
		return fmt.Errorf("write schedule file: %w", err)
	}

	logger.InfoContext(ctx, "Loan details saved",
		applog.FieldOperation, applog.OpSave,
		applog.FieldPath, detailsPath,
		"schedule_path", schedulePath,
		applog.FieldRows, len(sched.Rows))
	return nil
}

func (s *Store) Load(ctx context.Context) (store.Record, error) {
	_, detailsPath := s.Paths()
	data, err := os.ReadFile(detailsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return store.Record{}, store.ErrNotFound
	}
	if err != nil {
		return store.Record{}, fmt.Errorf("read loan details: %w", err)
	}

	var r store.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return store.Record{}, fmt.Errorf("decode loan details %s: %w", detailsPath, err)
	}
	if err := r.Validate(); err != nil {
		return store.Record{}, err
	}

	applog.FromContext(ctx, s.logger).WithComponent(applog.ComponentStorage).
		DebugContext(ctx, "Loan details loaded", applog.FieldOperation, applog.OpLoad, applog.FieldPath, detailsPath)
	return r, nil
}

func (s *Store) Close() error {
	return nil
}

// stageFile writes data to a temporary file next to path and returns its
// name. The caller renames it into place or removes it.
func stageFile(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}
