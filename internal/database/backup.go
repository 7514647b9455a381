package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"customerbooking/internal/config"

	"github.com/rs/zerolog"
)

const backupPrefix = "backup_"

// BackupService periodically snapshots the live database with VACUUM INTO and prunes old snapshots.
type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start blocks until ctx is done, taking one backup immediately and then one per schedule interval.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}

	interval := 24 * time.Hour
	if d, err := time.ParseDuration(s.config.Schedule); err == nil && d > 0 {
		interval = d
	} else if s.config.Schedule != "" {
		s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("invalid backup schedule, using 24h")
	}

	s.logger.Info().Dur("interval", interval).Msg("backup service started")

	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PerformBackup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes a consistent copy of the database and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s%s.db", backupPrefix, s.now().UTC().Format("20060102_150405.000"))
	path := filepath.Join(s.config.StoragePath, name)

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}

	s.logger.Info().Str("path", path).Msg("backup completed")
	return path, nil
}

// CleanupOldBackups removes snapshots older than the retention window and reports how many were removed.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	entries, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory")
		return 0
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), backupPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.StoragePath, entry.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("failed to delete old backup")
			continue
		}
		s.logger.Info().Str("file", entry.Name()).Msg("deleted old backup")
		removed++
	}
	return removed
}
