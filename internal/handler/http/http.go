package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jgivc/assignfetch/internal/assignment"
	"github.com/jgivc/assignfetch/internal/common"
	"github.com/jgivc/assignfetch/internal/entity"
)

const (
	maxRequestBodySize = 1 << 10

	msgInvalidRollNumber = "Invalid roll number"
	msgTrackFailed       = "Failed to track download"
	msgStatsFailed       = "Failed to fetch stats"
	msgProbeFailed       = "Failed to probe file host"
	msgProbeRunning      = "Probe has already started"
)

type LedgerService interface {
	RecordDownload(ctx context.Context, roll entity.RollNumber) (*entity.Receipt, error)
	ListStats(ctx context.Context) ([]*entity.LedgerEntry, error)
	Summary(ctx context.Context) (*entity.Summary, error)
}

type Resolver interface {
	Resolve(roll entity.RollNumber) (*entity.Assignment, error)
}

type ProbeService interface {
	Probe(ctx context.Context) ([]*entity.FileStatus, error)
}

type trackDownloadRequest struct {
	RollNumber json.Number `json:"rollNumber"`
}

type trackDownloadResponse struct {
	Success        bool              `json:"success"`
	RollNumber     entity.RollNumber `json:"rollNumber"`
	File           string            `json:"file"`
	TotalDownloads int64             `json:"totalDownloads"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewTrackDownloadHandler records a download for {"rollNumber": N}.
// It does not look at the session lock.
func NewTrackDownloadHandler(srv LedgerService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "TrackDownloadHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req trackDownloadRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&req); err != nil {
			log.Debug("Cannot decode request", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, msgInvalidRollNumber)

			return
		}

		roll, err := assignment.ParseRollNumber(req.RollNumber.String())
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidRollNumber)

			return
		}

		receipt, err := srv.RecordDownload(r.Context(), roll)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInvalidRollNumber):
				writeError(w, http.StatusBadRequest, msgInvalidRollNumber)
			default:
				log.Error("Cannot record download", slog.String("roll", roll.String()), slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, msgTrackFailed)
			}

			return
		}

		writeJSON(w, http.StatusOK, &trackDownloadResponse{
			Success:        true,
			RollNumber:     receipt.RollNumber,
			File:           receipt.File,
			TotalDownloads: receipt.TotalDownloads,
		})
	}
}

func NewStatsHandler(srv LedgerService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "StatsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := srv.ListStats(r.Context())
		if err != nil {
			log.Error("Cannot list stats", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, msgStatsFailed)

			return
		}

		if entries == nil {
			entries = []*entity.LedgerEntry{}
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

func NewSummaryHandler(srv LedgerService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SummaryHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		summary, err := srv.Summary(r.Context())
		if err != nil {
			log.Error("Cannot build summary", slog.Any("error", err))
			writeError(w, http.StatusInternalServerError, msgStatsFailed)

			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

func NewProbeHandler(srv ProbeService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ProbeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := srv.Probe(r.Context())
		if err != nil {
			switch {
			case errors.Is(err, common.ErrProbeAlreadyRunning):
				writeError(w, http.StatusConflict, msgProbeRunning)
			default:
				log.Error("Cannot probe file host", slog.Any("error", err))
				writeError(w, http.StatusInternalServerError, msgProbeFailed)
			}

			return
		}

		writeJSON(w, http.StatusOK, statuses)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Headers are gone by now, nothing useful to do with an encode error.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, &errorResponse{Error: msg})
}
