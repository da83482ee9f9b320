package httphandler

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jgivc/assignfetch/internal/adapter/chartadapter"
	"github.com/jgivc/assignfetch/internal/adapter/tpladapter"
	"github.com/jgivc/assignfetch/internal/assignment"
	"github.com/jgivc/assignfetch/internal/common"
	"github.com/jgivc/assignfetch/internal/entity"
)

const (
	pageTitle  = "CS Assignment XII | Student Portal"
	adminTitle = "CS Assignment XII | Admin"

	msgSelectRoll      = "Please select your roll number"
	msgDownloadFailed  = "Download failed. Please try again."
	msgDownloadStarted = "Download successful! Check your Downloads folder."
	msgLockedTemplate  = "You can only download the file associated with your previously selected roll number (%s). Please select roll number %s to proceed."
	msgCannotGetPage   = "Cannot get page"
	msgCannotGetChart  = "Cannot get chart"
	msgCannotFindRoll  = "Cannot find roll number"
	msgCannotFindFile  = "Cannot find file"

	formFieldRoll   = "roll"
	pathVarRoll     = "roll"
	queryParamReset = "reset"
	queryParamAdmin = "admin"

	contentTypeHTML = "text/html; charset=utf-8"
	contentTypePNG  = "image/png"
)

type PageRenderer interface {
	Home(w io.Writer, page *tpladapter.HomePage) error
	Admin(w io.Writer, page *tpladapter.AdminPage) error
}

type LockStore interface {
	Load(r *http.Request) entity.SessionLock
	Save(w http.ResponseWriter, r *http.Request, lock entity.SessionLock, flashes ...string) error
	Flashes(w http.ResponseWriter, r *http.Request) []string
}

type Notice struct {
	Title string
	HTML  template.HTML
}

// PageHandlers serves the student and admin pages.
type PageHandlers struct {
	srv      LedgerService
	resolver Resolver
	renderer PageRenderer
	locks    LockStore
	notice   Notice
	hdrName  string
	refresh  time.Duration
	log      *slog.Logger
}

func NewPageHandlers(srv LedgerService, resolver Resolver, renderer PageRenderer, locks LockStore, notice Notice, hdrName string, refresh time.Duration, log *slog.Logger) *PageHandlers {
	return &PageHandlers{
		srv:      srv,
		resolver: resolver,
		renderer: renderer,
		locks:    locks,
		notice:   notice,
		hdrName:  hdrName,
		refresh:  refresh,
		log:      log.With(slog.String("handler", "PageHandlers")),
	}
}

// Register mounts the student and admin pages on r.
func (h *PageHandlers) Register(r *mux.Router) {
	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/download", h.Download).Methods(http.MethodPost)

	r.HandleFunc("/admin", h.Admin).Methods(http.MethodGet)
	r.HandleFunc("/admin/file", h.AdminFile).Methods(http.MethodGet)
	r.HandleFunc("/admin/file/{roll}", h.AdminFile).Methods(http.MethodGet)
	r.HandleFunc("/admin/chart.png", h.Chart).Methods(http.MethodGet)
}

func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get(queryParamAdmin) == "true" {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)

		return
	}

	lock := h.locks.Load(r)

	if q.Get(queryParamReset) == "true" {
		if err := h.locks.Save(w, r, lock.Reset()); err != nil {
			h.log.Error("Cannot reset session lock", slog.Any("error", err))
		} else if lock.IsLocked() {
			h.log.Info("Session lock reset", slog.String("roll", lock.Roll.String()))
		}

		http.Redirect(w, r, "/", http.StatusSeeOther)

		return
	}

	var msg string
	if flashes := h.locks.Flashes(w, r); len(flashes) > 0 {
		msg = flashes[len(flashes)-1]
	}

	h.renderHome(w, http.StatusOK, lock, lock.Roll, "", msg)
}

// Download records the download, locks the session to the roll and hands the client
// over to the file host.
func (h *PageHandlers) Download(w http.ResponseWriter, r *http.Request) {
	lock := h.locks.Load(r)

	raw := r.PostFormValue(formFieldRoll)
	if raw == "" {
		h.renderHome(w, http.StatusBadRequest, lock, lock.Roll, msgSelectRoll, "")

		return
	}

	roll, err := assignment.ParseRollNumber(raw)
	if err != nil {
		h.renderHome(w, http.StatusBadRequest, lock, lock.Roll, msgInvalidRollNumber, "")

		return
	}

	newLock, err := lock.Lock(roll)
	if errors.Is(err, common.ErrSessionLocked) {
		// Not an error for the server: the student is pointed back at their own roll.
		h.renderHome(w, http.StatusOK, lock, lock.Roll, fmt.Sprintf(msgLockedTemplate, lock.Roll, lock.Roll), "")

		return
	}

	a, err := h.resolver.Resolve(roll)
	if err != nil {
		h.renderHome(w, http.StatusBadRequest, lock, lock.Roll, msgInvalidRollNumber, "")

		return
	}

	receipt, err := h.srv.RecordDownload(r.Context(), roll)
	if err != nil {
		h.renderHome(w, http.StatusInternalServerError, lock, roll, msgDownloadFailed, "")

		return
	}

	if err := h.locks.Save(w, r, newLock, msgDownloadStarted); err != nil {
		h.log.Error("Cannot save session lock", slog.String("roll", roll.String()), slog.Any("error", err))
	}

	h.log.Info("Download file", slog.String("roll", roll.String()), slog.String("file", receipt.File), slog.Int64("counter", receipt.TotalDownloads))

	h.sendFile(w, r, a)
}

func (h *PageHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	summary, err := h.srv.Summary(r.Context())
	if err != nil {
		http.Error(w, msgCannotGetPage, http.StatusInternalServerError)

		return
	}

	page := &tpladapter.AdminPage{
		Page: tpladapter.Page{
			Title:          adminTitle,
			RefreshSeconds: int(h.refresh.Seconds()),
		},
		Summary: summary,
		Rolls:   rollOptions(entity.SessionLock{}, 0),
	}

	var buf bytes.Buffer
	if err := h.renderer.Admin(&buf, page); err != nil {
		h.log.Error("Cannot render admin page", slog.Any("error", err))
		http.Error(w, msgCannotGetPage, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	buf.WriteTo(w)
}

// AdminFile sends any roll's file without touching the ledger or the session lock.
func (h *PageHandlers) AdminFile(w http.ResponseWriter, r *http.Request) {
	raw, ok := mux.Vars(r)[pathVarRoll]
	if !ok {
		raw = r.URL.Query().Get(formFieldRoll)
	}

	roll, err := assignment.ParseRollNumber(raw)
	if err != nil {
		http.Error(w, msgCannotFindRoll, http.StatusBadRequest)

		return
	}

	a, err := h.resolver.Resolve(roll)
	if err != nil {
		http.Error(w, msgCannotFindRoll, http.StatusBadRequest)

		return
	}

	h.log.Info("Admin download", slog.String("roll", roll.String()), slog.String("file", a.Set.Name))

	h.sendFile(w, r, a)
}

func (h *PageHandlers) Chart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.srv.Summary(r.Context())
	if err != nil {
		http.Error(w, msgCannotGetChart, http.StatusInternalServerError)

		return
	}

	var buf bytes.Buffer
	if err := chartadapter.DownloadsPerRoll(&buf, summary.Rolls); err != nil {
		h.log.Error("Cannot draw chart", slog.Any("error", err))
		http.Error(w, msgCannotGetChart, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

// sendFile lets a fronting proxy serve the file when hdrName is set, otherwise redirects.
func (h *PageHandlers) sendFile(w http.ResponseWriter, r *http.Request, a *entity.Assignment) {
	if a.Set.URL == "" {
		http.Error(w, msgCannotFindFile, http.StatusNotFound)

		return
	}

	if h.hdrName != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Set.Name))
		w.Header().Set(h.hdrName, a.Set.URL)

		return
	}

	http.Redirect(w, r, a.Set.URL, http.StatusSeeOther)
}

func (h *PageHandlers) renderHome(w http.ResponseWriter, status int, lock entity.SessionLock, selected entity.RollNumber, errMsg, msg string) {
	page := &tpladapter.HomePage{
		Page:        tpladapter.Page{Title: pageTitle},
		NoticeTitle: h.notice.Title,
		NoticeHTML:  h.notice.HTML,
		Rolls:       rollOptions(lock, selected),
		LockedRoll:  lock.Roll,
		Error:       errMsg,
		Message:     msg,
	}

	var buf bytes.Buffer
	if err := h.renderer.Home(&buf, page); err != nil {
		h.log.Error("Cannot render home page", slog.Any("error", err))
		http.Error(w, msgCannotGetPage, http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func rollOptions(lock entity.SessionLock, selected entity.RollNumber) []tpladapter.RollOption {
	rolls := assignment.RollNumbers()
	options := make([]tpladapter.RollOption, 0, len(rolls))
	for _, roll := range rolls {
		options = append(options, tpladapter.RollOption{
			Roll:     roll,
			Disabled: !lock.Allows(roll),
			Selected: roll == selected,
		})
	}

	return options
}
