// Package dashboard keeps the client-side view of the dataset dashboard in sync
// with the backend: the summary payload, the selected file, and that file's preview.
//
// Two flows mutate state. Refresh replaces the summary and applies the default
// selection. Select changes the selection and fetches a preview in the background.
// Both flows guard their commits with a TokenSource so that only the most
// recently issued request can write state, whatever order responses arrive in.
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aaronwald/rawdash/internal/client"
	"github.com/aaronwald/rawdash/internal/types"
)

const (
	SummaryFallbackMessage = "Failed to load dashboard summary"
	PreviewFallbackMessage = "Failed to load file preview"
)

// Fetcher is the backend surface the dashboard needs
type Fetcher interface {
	FetchSummary(ctx context.Context) (*types.SummaryPayload, error)
	FetchFilePreview(ctx context.Context, fileName string, rowLimit int) (*types.PreviewPayload, error)
}

var _ Fetcher = (*client.Client)(nil)

// Options configures a Dashboard
type Options struct {
	// RowLimit is passed to every preview fetch. Zero uses client.DefaultRowLimit.
	RowLimit int
	Logger   *slog.Logger
	// NoPreview tracks the selection without fetching previews, for callers
	// that only read the summary.
	NoPreview bool
}

// State is a point-in-time copy of the dashboard
type State struct {
	Summary        *types.SummaryPayload
	Loading        bool
	Error          string
	Selected       string
	Preview        *types.PreviewPayload
	PreviewFile    string
	PreviewLoading bool
	Counts         types.CheckCounts
}

// Files returns the current file list, or nil before the first successful load
func (s State) Files() []types.FileRecord {
	if s.Summary == nil {
		return nil
	}
	return s.Summary.Files
}

// Checks returns the current check list
func (s State) Checks() []types.CheckRecord {
	if s.Summary == nil {
		return nil
	}
	return s.Summary.Checks
}

// Dashboard owns the synchronized state
type Dashboard struct {
	fetcher   Fetcher
	rowLimit  int
	logger    *slog.Logger
	noPreview bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu             sync.Mutex
	closed         bool
	summary        *types.SummaryPayload
	loading        bool
	errMsg         string
	selected       string
	preview        *types.PreviewPayload
	previewFile    string
	previewLoading bool
	refreshTokens  TokenSource
	previewTokens  TokenSource

	obsMu     sync.Mutex
	observers map[int]func(State)
	nextObs   int

	// held across snapshot and fan-out so observers see states in order
	notifyMu sync.Mutex
}

// New creates a Dashboard. Nothing is fetched until Refresh or Run is called.
func New(fetcher Fetcher, opts Options) *Dashboard {
	rowLimit := opts.RowLimit
	if rowLimit <= 0 {
		rowLimit = client.DefaultRowLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dashboard{
		fetcher:   fetcher,
		rowLimit:  rowLimit,
		logger:    logger,
		noPreview: opts.NoPreview,
		ctx:       ctx,
		cancel:    cancel,
		observers: make(map[int]func(State)),
	}
}

// Snapshot returns the current state. Counts is recomputed from the checks on every call.
func (d *Dashboard) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return State{
		Summary:        d.summary,
		Loading:        d.loading,
		Error:          d.errMsg,
		Selected:       d.selected,
		Preview:        d.preview,
		PreviewFile:    d.previewFile,
		PreviewLoading: d.previewLoading,
		Counts:         d.summary.CheckCounts(),
	}
}

// Subscribe registers fn to be called with a fresh snapshot after every state change.
// Calls are serialized and each one sees a state no older than the previous call's.
// fn must not call Refresh, Select or Close. The returned func unsubscribes.
func (d *Dashboard) Subscribe(fn func(State)) func() {
	d.obsMu.Lock()
	id := d.nextObs
	d.nextObs++
	d.observers[id] = fn
	d.obsMu.Unlock()

	return func() {
		d.obsMu.Lock()
		delete(d.observers, id)
		d.obsMu.Unlock()
	}
}

func (d *Dashboard) notify() {
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()

	d.obsMu.Lock()
	fns := make([]func(State), 0, len(d.observers))
	for _, fn := range d.observers {
		fns = append(fns, fn)
	}
	d.obsMu.Unlock()

	if len(fns) == 0 {
		return
	}
	s := d.Snapshot()
	for _, fn := range fns {
		fn(s)
	}
}

// Refresh fetches the summary and commits it. Overlapping calls are resolved
// last-issued-wins: a superseded call has its request cancelled, commits nothing
// and returns nil. A failed fetch keeps the previously loaded summary.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return context.Canceled
	}
	tok := d.refreshTokens.Issue(ctx)
	d.errMsg = ""
	d.loading = true
	d.mu.Unlock()
	d.notify()

	d.logger.Debug("refreshing summary", "token", tok.ID())
	payload, err := d.fetcher.FetchSummary(tok.Context())

	d.mu.Lock()
	if !d.refreshTokens.Finish(tok) {
		d.mu.Unlock()
		d.logger.Debug("discarding superseded summary", "token", tok.ID())
		return nil
	}
	d.loading = false
	if err != nil {
		d.errMsg = errorMessage(err, SummaryFallbackMessage)
		d.mu.Unlock()
		d.logger.Warn("summary refresh failed", "error", err)
		d.notify()
		return err
	}
	d.summary = payload
	if d.selected == "" {
		if first := payload.FirstFileName(); first != "" {
			d.logger.Debug("applying default selection", "file", first)
			d.selectLocked(first)
		}
	}
	d.mu.Unlock()
	d.notify()
	return nil
}

// Run performs the startup refresh and then polls until ctx is done
func (d *Dashboard) Run(ctx context.Context, interval time.Duration) error {
	d.Refresh(ctx)
	return d.Poll(ctx, interval)
}

// Poll refreshes every interval until ctx is done. An interval of zero or less
// disables polling and just waits. Refresh errors are reported through state and
// logged; they do not stop the loop.
func (d *Dashboard) Poll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Refresh(ctx)
		}
	}
}

// Select changes the selected file. Selecting the current file is a no-op.
// An empty name clears the preview without a network call; any other name
// starts a preview fetch and supersedes any fetch still in flight.
func (d *Dashboard) Select(fileName string) {
	d.mu.Lock()
	changed := d.selectLocked(fileName)
	d.mu.Unlock()
	if changed {
		d.notify()
	}
}

func (d *Dashboard) selectLocked(fileName string) bool {
	if d.closed || fileName == d.selected {
		return false
	}
	d.selected = fileName

	if fileName == "" {
		d.previewTokens.Cancel()
		d.preview = nil
		d.previewFile = ""
		d.previewLoading = false
		return true
	}

	if d.noPreview {
		return true
	}

	tok := d.previewTokens.Issue(d.ctx)
	d.previewLoading = true
	d.wg.Add(1)
	go d.fetchPreview(tok, fileName)
	return true
}

func (d *Dashboard) fetchPreview(tok *Token, fileName string) {
	defer d.wg.Done()

	payload, err := d.fetcher.FetchFilePreview(tok.Context(), fileName, d.rowLimit)

	d.mu.Lock()
	if !d.previewTokens.Finish(tok) {
		d.mu.Unlock()
		d.logger.Debug("discarding stale preview", "file", fileName, "token", tok.ID())
		return
	}
	if err != nil {
		payload = types.NewPreviewError(errorMessage(err, PreviewFallbackMessage))
	} else if payload == nil {
		payload = types.NewPreviewRows(nil)
	}
	d.preview = payload
	d.previewFile = fileName
	d.previewLoading = false
	d.mu.Unlock()

	switch {
	case client.IsNotFound(err):
		d.logger.Info("preview file not found", "file", fileName)
	case err != nil:
		d.logger.Warn("preview fetch failed", "file", fileName, "error", err)
	}
	d.notify()
}

// Wait blocks until every preview fetch started so far has completed or been dropped
func (d *Dashboard) Wait() {
	d.wg.Wait()
}

// Close cancels in-flight requests, drops their results and waits for them to return
func (d *Dashboard) Close() {
	d.mu.Lock()
	d.closed = true
	d.refreshTokens.Cancel()
	d.previewTokens.Cancel()
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

// errorMessage turns a failure into display text
func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return fallback
	}
	return msg
}
