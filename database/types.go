package database

// Row is a single table row keyed by column name.
type Row = map[string]any

// Table describes a table visible to the current credentials.
type Table struct {
	Name        string `json:"name"`
	Schema      string `json:"schema"`
	Description string `json:"description,omitempty"`
	RowCount    int64  `json:"row_count,omitempty"`
}

// ListRowsOptions controls pagination, ordering and filtering of
// ListRows. Zero values are omitted from the request.
type ListRowsOptions struct {
	// Page is 1-based; 0 means the first page.
	Page int
	// PageSize caps rows per page; 0 uses the server default.
	PageSize int
	// OrderBy is a column name, optionally suffixed with ".desc".
	OrderBy string
	// Filter holds column=value equality filters.
	Filter map[string]string
}

// RowsPage is one page of rows plus the total count across all pages.
type RowsPage struct {
	Rows     []Row `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}
