package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgivc/assignfetch/internal/assignment"
	"github.com/jgivc/assignfetch/internal/common"
	"github.com/jgivc/assignfetch/internal/entity"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	serviceName = "ledger"
)

type LedgerRepository interface {
	Increment(ctx context.Context, roll entity.RollNumber, file string) (int64, error)
	List(ctx context.Context) ([]*entity.LedgerEntry, error)
}

type ledgerService struct {
	rule *assignment.Rule
	repo LedgerRepository
	fs   afero.Fs
	log  *slog.Logger
}

func NewLedgerService(rule *assignment.Rule, repo LedgerRepository, fs afero.Fs, log *slog.Logger) *ledgerService {
	return &ledgerService{
		rule: rule,
		repo: repo,
		fs:   fs,
		log:  log.With(slog.String("service", serviceName)),
	}
}

func (s *ledgerService) RecordDownload(ctx context.Context, roll entity.RollNumber) (*entity.Receipt, error) {
	a, err := s.rule.Resolve(roll)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Increment(ctx, roll, a.Set.Name)
	if err != nil {
		s.log.Error("Cannot record download", slog.String("roll", roll.String()), slog.Any("error", err))

		return nil, fmt.Errorf("cannot record roll %s download: %w", roll, err)
	}

	s.log.Info("Download recorded", slog.String("roll", roll.String()), slog.String("file", a.Set.Name), slog.Int64("counter", count))

	return &entity.Receipt{
		RollNumber:     roll,
		File:           a.Set.Name,
		TotalDownloads: count,
	}, nil
}

func (s *ledgerService) ListStats(ctx context.Context) ([]*entity.LedgerEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Cannot list stats", slog.Any("error", err))

		return nil, fmt.Errorf("cannot list stats: %w", err)
	}

	return entries, nil
}

// Summary aggregates per set through the assignment rule, so renamed files still add up.
func (s *ledgerService) Summary(ctx context.Context) (*entity.Summary, error) {
	entries, err := s.ListStats(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[entity.RollNumber]int64, len(entries))
	for _, e := range entries {
		counts[e.RollNumber] = e.Count
	}

	sets := s.rule.Sets()
	summary := &entity.Summary{
		Sets:  make([]entity.SetTotal, len(sets)),
		Rolls: make([]entity.RollRow, 0, assignment.MaxRollNumber),
	}
	for i, set := range sets {
		summary.Sets[i].Set = set
	}

	for _, roll := range assignment.RollNumbers() {
		a, err := s.rule.Resolve(roll)
		if err != nil {
			return nil, err
		}

		count := counts[roll]
		summary.Rolls = append(summary.Rolls, entity.RollRow{
			RollNumber: roll,
			Cycle:      a.Cycle,
			File:       a.Set.Name,
			Count:      count,
		})

		summary.Sets[a.Cycle-1].Downloads += count
		summary.TotalDownloads += count
		if count > 0 {
			summary.ActiveRolls++
		}
	}

	return summary, nil
}

// DumpStats writes the current ledger to fileName as YAML.
func (s *ledgerService) DumpStats(ctx context.Context, fileName string) error {
	entries, err := s.ListStats(ctx)
	if err != nil {
		return err
	}

	if len(entries) < 1 {
		return common.ErrNoDownloadsFound
	}

	data, err := yaml.Marshal(&entity.StatsDump{
		CreatedAt: time.Now().Format(time.RFC3339),
		Entries:   entries,
	})
	if err != nil {
		return fmt.Errorf("cannot marshal stats: %w", err)
	}

	if err := afero.WriteFile(s.fs, fileName, data, 0644); err != nil {
		s.log.Error("Cannot write stats dump", slog.String("file", fileName), slog.Any("error", err))

		return fmt.Errorf("cannot write stats dump %s: %w", fileName, err)
	}

	s.log.Info("Stats dumped", slog.String("file", fileName), slog.Int("entries", len(entries)))

	return nil
}
