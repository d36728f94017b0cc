package data

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/aaronwald/rawdash/internal/types"
)

// ScanHook is called with every freshly built summary
type ScanHook func(ctx context.Context, p *types.SummaryPayload)

// Catalog builds the dashboard summary from storage and caches it until invalidated
type Catalog struct {
	storage Storage
	now     func() time.Time
	onScan  ScanHook

	scanMu sync.Mutex // one scan at a time

	mu         sync.Mutex
	cached     *types.SummaryPayload
	generation uint64
}

// NewCatalog creates a catalog over storage
func NewCatalog(storage Storage) *Catalog {
	return &Catalog{storage: storage, now: time.Now}
}

// OnScan registers a hook for fresh scans, such as recording history
func (c *Catalog) OnScan(hook ScanHook) {
	c.onScan = hook
}

// Invalidate drops the cached summary. A scan already in progress is not cached.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.generation++
	c.mu.Unlock()
}

func (c *Catalog) cachedSummary() (*types.SummaryPayload, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cached, c.generation
}

// Summary returns the cached summary, scanning first if there is none.
// fresh reports whether this call performed the scan.
func (c *Catalog) Summary(ctx context.Context) (p *types.SummaryPayload, fresh bool, err error) {
	if p, _ := c.cachedSummary(); p != nil {
		return p, false, nil
	}

	c.scanMu.Lock()
	defer c.scanMu.Unlock()

	// another caller may have finished a scan while we waited
	p, gen := c.cachedSummary()
	if p != nil {
		return p, false, nil
	}

	p, err = c.Scan(ctx)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	if c.generation == gen {
		c.cached = p
	}
	c.mu.Unlock()

	if c.onScan != nil {
		c.onScan(ctx, p)
	}
	return p, true, nil
}

// Scan lists and profiles every file without touching the cache
func (c *Catalog) Scan(ctx context.Context) (*types.SummaryPayload, error) {
	files, err := c.storage.ListFiles()
	if err != nil {
		return nil, err
	}

	var (
		totalSize int64
		totalRows int64
		csvFiles  int64
	)
	scans := make([]FileScan, 0, len(files))
	records := make([]types.FileRecord, 0, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec := types.FileRecord{
			FileName:      f.Name,
			FileSizeBytes: types.Int64(f.Size),
			LastModified:  f.ModTime.UTC().Format(time.RFC3339),
			IsCSV:         IsCSVName(f.Name),
		}
		totalSize += f.Size

		scan := FileScan{}
		if rec.IsCSV {
			csvFiles++
			profile, err := ProfileFile(c.storage, f.Name)
			if err != nil {
				log.Printf("profiling %s: %v", f.Name, err)
				scan.Err = err
			} else {
				scan.Profile = profile
				rec.Rows = types.Int64(profile.Rows)
				rec.Columns = types.Int(profile.Columns)
				rec.OverallMissingRatio = types.Float64(profile.MissingRatio())
				totalRows += profile.Rows
			}
		}
		scan.Record = rec
		scans = append(scans, scan)
		records = append(records, rec)
	}

	return &types.SummaryPayload{
		Summary: types.SummaryStats{
			TotalFiles:     types.Int64(int64(len(files))),
			CSVFiles:       types.Int64(csvFiles),
			TotalRows:      types.Int64(totalRows),
			TotalSizeBytes: types.Int64(totalSize),
			ScannedAt:      c.now().UTC().Format(time.RFC3339),
		},
		Files:  records,
		Checks: RunChecks(scans),
	}, nil
}
