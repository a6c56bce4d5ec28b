// Package backup exports the database collections as timestamped JSON
// snapshots, the same flat-file shape the desk used before the move to
// Postgres, so data stays portable and restorable by hand.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/config"
	"github.com/flexfit/gymdesk/pkg/logctx"
)

const namePrefix = "backup_"
const nameLayout = "2006-01-02_15-04-05"

// Info describes one snapshot directory.
type Info struct {
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	FileCount int    `json:"file_count"`
	SizeKB    int64  `json:"size_kb"`
}

type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	dir   string
	keep  int
	now   func() time.Time
}

func New(st store.Store, cfg *config.Config, log *zap.SugaredLogger) *Service {
	keep := cfg.Backup.Keep
	if keep <= 0 {
		keep = 7
	}
	return &Service{store: st, log: log, dir: cfg.Backup.Dir, keep: keep, now: time.Now}
}

// Create writes one JSON file per collection into a timestamped directory
// and drops the oldest snapshots beyond the retention limit.
func (s *Service) Create(ctx context.Context) (*Info, error) {
	name := namePrefix + s.now().Format(nameLayout)
	path := filepath.Join(s.dir, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup dir: %w", err)
	}

	collections, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}

	var size int64
	for filename, data := range collections {
		encoded, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", filename, err)
		}
		if err := os.WriteFile(filepath.Join(path, filename), encoded, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", filename, err)
		}
		size += int64(len(encoded))
	}

	if err := s.rotate(); err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("backup created",
		"name", name, "files", len(collections), "size_kb", size/1024)
	return &Info{
		Name:      name,
		CreatedAt: s.now().Format(time.DateTime),
		FileCount: len(collections),
		SizeKB:    size / 1024,
	}, nil
}

func (s *Service) collections(ctx context.Context) (map[string]any, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	memberships, err := s.store.ListMemberships(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := s.store.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	trainers, err := s.store.ListTrainers(ctx)
	if err != nil {
		return nil, err
	}
	attendance, err := s.store.ListAttendance(ctx)
	if err != nil {
		return nil, err
	}
	visitors, err := s.store.ListVisitors(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"members.json":            members,
		"membership_history.json": memberships,
		"payments_log.json":       payments,
		"plans.json":              plans,
		"trainers.json":           trainers,
		"attendance_log.json":     attendance,
		"visitors_log.json":       visitors,
	}, nil
}

// List returns snapshot metadata, newest first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), namePrefix) {
			continue
		}

		createdAt := "unknown"
		if ts, err := time.Parse(nameLayout, strings.TrimPrefix(entry.Name(), namePrefix)); err == nil {
			createdAt = ts.Format(time.DateTime)
		}

		var count int
		var size int64
		files, err := os.ReadDir(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if filepath.Ext(f.Name()) != ".json" {
				continue
			}
			count++
			if info, err := f.Info(); err == nil {
				size += info.Size()
			}
		}

		backups = append(backups, Info{
			Name:      entry.Name(),
			CreatedAt: createdAt,
			FileCount: count,
			SizeKB:    size / 1024,
		})
	}

	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

// Delete removes one snapshot directory.
func (s *Service) Delete(name string) error {
	if !strings.HasPrefix(name, namePrefix) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid backup name %q", name)
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup not found: %w", err)
	}
	return os.RemoveAll(path)
}

// rotate drops the oldest snapshots beyond the retention limit.
func (s *Service) rotate() error {
	backups, err := s.List()
	if err != nil {
		return err
	}
	for _, old := range backups[min(s.keep, len(backups)):] {
		if err := s.Delete(old.Name); err != nil {
			return err
		}
		s.log.Infow("old backup removed", "name", old.Name)
	}
	return nil
}
