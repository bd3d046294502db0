package engine

import (
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sweeper prunes stale files from the sidecar scratch directory on a cron
// schedule. Sidecars spool intermediate files there and do not always clean
// up after a crash or a canceled request.
type Sweeper struct {
	dir string
	ttl time.Duration
	c   *cron.Cron
	log zerolog.Logger
}

// NewSweeper builds a sweeper for dir removing entries older than ttl,
// running on the given cron expression (e.g. "@every 10m").
func NewSweeper(dir string, ttl time.Duration, schedule string, log zerolog.Logger) (*Sweeper, error) {
	s := &Sweeper{dir: dir, ttl: ttl, c: cron.New(), log: log}
	if _, err := s.c.AddFunc(schedule, s.Sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins scheduled sweeping.
func (s *Sweeper) Start() { s.c.Start() }

// Stop halts the schedule; a sweep already running finishes.
func (s *Sweeper) Stop() { s.c.Stop() }

// Sweep removes regular files in the scratch dir older than the TTL.
func (s *Sweeper) Sweep() {
	cutoff := time.Now().Add(-s.ttl)
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn().Err(err).Str("dir", s.dir).Msg("scratch sweep: read dir")
		return
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		p := filepath.Join(s.dir, e.Name())
		if err := os.Remove(p); err != nil {
			s.log.Warn().Err(err).Str("file", p).Msg("scratch sweep: remove")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Debug().Int("removed", removed).Str("dir", s.dir).Msg("scratch sweep done")
	}
}
