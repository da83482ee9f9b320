package filehost

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jgivc/assignfetch/internal/common"
	"github.com/jgivc/assignfetch/internal/config"
	"github.com/jgivc/assignfetch/internal/entity"
	"github.com/stretchr/testify/require"
)

type staticSets []entity.FileSet

func (s staticSets) Sets() []entity.FileSet {
	return s
}

func TestProbe(t *testing.T) {
	var heads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			heads.Add(1)
		}

		if r.URL.Path == "/missing.pdf" {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		w.Header().Set("Content-Type", "application/pdf")
	}))
	defer srv.Close()

	sets := staticSets{
		{ID: "A", Name: "Set A.pdf", URL: srv.URL + "/a.pdf"},
		{ID: "B", Name: "Set B.pdf", URL: srv.URL + "/missing.pdf"},
		{ID: "C", Name: "Set C.pdf"},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	p := NewProber(sets, srv.Client(), &config.ProberConfig{Workers: 2, Timeout: time.Second}, log)

	statuses, err := p.Probe(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	require.Equal(t, int32(2), heads.Load())

	require.True(t, statuses[0].Available)
	require.Equal(t, http.StatusOK, statuses[0].StatusCode)
	require.Equal(t, "A", statuses[0].Set.ID)

	require.False(t, statuses[1].Available)
	require.Equal(t, http.StatusNotFound, statuses[1].StatusCode)

	require.False(t, statuses[2].Available)
	require.NotEmpty(t, statuses[2].Error)
}

func TestProbeAlreadyRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started <- struct{}{}
		<-release
	}))
	defer srv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	p := NewProber(staticSets{{ID: "A", Name: "a", URL: srv.URL}}, srv.Client(), &config.ProberConfig{Workers: 1, Timeout: 5 * time.Second}, log)

	done := make(chan error, 1)
	go func() {
		_, err := p.Probe(context.Background())
		done <- err
	}()

	<-started
	_, err := p.Probe(context.Background())
	require.ErrorIs(t, err, common.ErrProbeAlreadyRunning)

	close(release)
	require.NoError(t, <-done)
}
