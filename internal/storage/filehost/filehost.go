package filehost

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jgivc/assignfetch/internal/common"
	"github.com/jgivc/assignfetch/internal/config"
	"github.com/jgivc/assignfetch/internal/entity"
)

type SetSource interface {
	Sets() []entity.FileSet
}

type prober struct {
	running atomic.Bool
	sets    SetSource
	cl      *http.Client
	cfg     *config.ProberConfig
	log     *slog.Logger
}

func NewProber(sets SetSource, cl *http.Client, cfg *config.ProberConfig, log *slog.Logger) *prober {
	if cl == nil {
		cl = &http.Client{}
	}

	return &prober{
		sets: sets,
		cl:   cl,
		cfg:  cfg,
		log:  log.With(slog.String("item", "FileHostProber")),
	}
}

// Probe sends a HEAD request to every set URL. Results keep the set order.
func (p *prober) Probe(ctx context.Context) ([]*entity.FileStatus, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, common.ErrProbeAlreadyRunning
	}
	defer p.running.Store(false)

	sets := p.sets.Sets()
	if len(sets) == 0 {
		return []*entity.FileStatus{}, nil
	}

	in := make(chan int, len(sets))
	for i := range sets {
		in <- i
	}
	close(in)

	results := make([]*entity.FileStatus, len(sets))

	var wg sync.WaitGroup
	wg.Add(p.cfg.Workers)
	for n := 0; n < p.cfg.Workers; n++ {
		go p.worker(ctx, n, sets, in, results, &wg)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("probe interrupted: %w", err)
	}

	return results, nil
}

func (p *prober) worker(ctx context.Context, n int, sets []entity.FileSet, in chan int, results []*entity.FileStatus, wg *sync.WaitGroup) {
	defer wg.Done()

	log := p.log.With(slog.Int("worker_id", n))
	log.Debug("Started")

	for i := range in {
		select {
		case <-ctx.Done():
			log.Info("Interrupted")

			return
		default:
		}

		status := p.check(ctx, sets[i])
		if status.Available {
			log.Info("File available", slog.String("set", sets[i].ID), slog.Int("status", status.StatusCode))
		} else {
			log.Warn("File unavailable", slog.String("set", sets[i].ID), slog.Int("status", status.StatusCode), slog.String("error", status.Error))
		}

		results[i] = status
	}

	log.Debug("Done")
}

func (p *prober) check(ctx context.Context, set entity.FileSet) *entity.FileStatus {
	status := &entity.FileStatus{Set: set}

	if set.URL == "" {
		status.Error = "no url configured"

		return status
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, set.URL, nil)
	if err != nil {
		status.Error = err.Error()

		return status
	}

	resp, err := p.cl.Do(req)
	if err != nil {
		status.Error = err.Error()

		return status
	}
	resp.Body.Close()

	status.StatusCode = resp.StatusCode
	status.Available = resp.StatusCode < http.StatusBadRequest

	return status
}

func (p *prober) timeout() time.Duration {
	if p.cfg.Timeout <= 0 {
		return 5 * time.Second
	}

	return p.cfg.Timeout
}
