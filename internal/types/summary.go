// internal/types/summary.go
package types

// SummaryPayload is the dataset inventory snapshot returned by the summary endpoint
type SummaryPayload struct {
	Summary SummaryStats  `json:"summary"`
	Files   []FileRecord  `json:"files"`
	Checks  []CheckRecord `json:"checks"`
}

// SummaryStats holds inventory-wide counts. Missing fields decode as nil (unknown).
type SummaryStats struct {
	TotalFiles     *int64 `json:"total_files,omitempty"`
	CSVFiles       *int64 `json:"csv_files,omitempty"`
	TotalRows      *int64 `json:"total_rows,omitempty"`
	TotalSizeBytes *int64 `json:"total_size_bytes,omitempty"`
	ScannedAt      string `json:"scanned_at,omitempty"`
}

// FileRecord describes a single file in the inventory
type FileRecord struct {
	FileName            string   `json:"file_name"`
	Rows                *int64   `json:"rows,omitempty"`
	Columns             *int     `json:"columns,omitempty"`
	FileSizeBytes       *int64   `json:"file_size_bytes,omitempty"`
	LastModified        string   `json:"last_modified,omitempty"`
	OverallMissingRatio *float64 `json:"overall_missing_ratio,omitempty"`
	IsCSV               bool     `json:"is_csv"`
}

// FileNames returns the file identifiers in backend order
func (p *SummaryPayload) FileNames() []string {
	if p == nil {
		return nil
	}
	names := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		names = append(names, f.FileName)
	}
	return names
}

// FindFile returns the file record with the given name, or nil
func (p *SummaryPayload) FindFile(name string) *FileRecord {
	if p == nil {
		return nil
	}
	for i := range p.Files {
		if p.Files[i].FileName == name {
			return &p.Files[i]
		}
	}
	return nil
}

// FirstFileName returns the first file name in backend order, or "" when there are no files
func (p *SummaryPayload) FirstFileName() string {
	if p == nil || len(p.Files) == 0 {
		return ""
	}
	return p.Files[0].FileName
}

// CheckCounts aggregates the payload's checks. Safe on a nil payload.
func (p *SummaryPayload) CheckCounts() CheckCounts {
	if p == nil {
		return CountChecks(nil)
	}
	return CountChecks(p.Checks)
}

// Int64 returns a pointer to v, for building optional fields
func Int64(v int64) *int64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// Float64 returns a pointer to v
func Float64(v float64) *float64 { return &v }
