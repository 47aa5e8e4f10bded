package database

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Selfdb-io/selfdb-go/internal/httpapi"
)

// Client implements the SelfDB table data API.
type Client struct {
	api    *httpapi.Client
	logger *slog.Logger
}

// NewClient creates a database client bound to the given transport.
func NewClient(api *httpapi.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logger}
}

// ListTables returns the tables visible to the current credentials.
func (c *Client) ListTables(ctx context.Context) ([]Table, error) {
	var tables []Table
	if err := c.api.DoJSON(ctx, http.MethodGet, "/api/v1/tables", nil, nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

// ListRows fetches one page of rows from a table.
func (c *Client) ListRows(ctx context.Context, table string, opts ListRowsOptions) (*RowsPage, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	if opts.OrderBy != "" {
		query.Set("order_by", opts.OrderBy)
	}
	for column, value := range opts.Filter {
		query.Set("filter_column", column)
		query.Set("filter_value", value)
	}

	var page RowsPage
	if err := c.api.DoJSON(ctx, http.MethodGet, c.dataPath(table), query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetRow fetches a single row by id.
func (c *Client) GetRow(ctx context.Context, table, id string) (Row, error) {
	var row Row
	if err := c.api.DoJSON(ctx, http.MethodGet, c.rowPath(table, id), nil, nil, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// InsertRow creates a row and returns it as stored, including
// server-generated columns such as the id.
func (c *Client) InsertRow(ctx context.Context, table string, row Row) (Row, error) {
	var created Row
	if err := c.api.DoJSON(ctx, http.MethodPost, c.dataPath(table), nil, row, &created); err != nil {
		return nil, err
	}
	c.logger.Debug("inserted row", "table", table)
	return created, nil
}

// UpdateRow applies a partial update to a row and returns the result.
func (c *Client) UpdateRow(ctx context.Context, table, id string, changes Row) (Row, error) {
	var updated Row
	if err := c.api.DoJSON(ctx, http.MethodPut, c.rowPath(table, id), nil, changes, &updated); err != nil {
		return nil, err
	}
	c.logger.Debug("updated row", "table", table, "id", id)
	return updated, nil
}

// DeleteRow removes a row by id.
func (c *Client) DeleteRow(ctx context.Context, table, id string) error {
	if err := c.api.DoJSON(ctx, http.MethodDelete, c.rowPath(table, id), nil, nil, nil); err != nil {
		return err
	}
	c.logger.Debug("deleted row", "table", table, "id", id)
	return nil
}

func (c *Client) dataPath(table string) string {
	return "/api/v1/tables/" + url.PathEscape(table) + "/data"
}

func (c *Client) rowPath(table, id string) string {
	return c.dataPath(table) + "/" + url.PathEscape(id)
}
