package database

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Selfdb-io/selfdb-go/internal/httpapi"
)

func newTestClient(server *httptest.Server) *Client {
	api := httpapi.NewClient(server.URL, "key", httpapi.WithRetries(0, time.Millisecond))
	return NewClient(api, nil)
}

func TestListTables(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tables" {
			t.Errorf("path = %q, want /api/v1/tables", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Table{
			{Name: "orders", Schema: "public"},
			{Name: "users", Schema: "public"},
		})
	}))
	defer server.Close()

	c := newTestClient(server)
	tables, err := c.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("len(tables) = %d, want 2", len(tables))
	}
	if tables[0].Name != "orders" {
		t.Errorf("tables[0].Name = %q, want orders", tables[0].Name)
	}
}

func TestListRows(t *testing.T) {
	t.Run("basic request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/tables/orders/data" {
				t.Errorf("path = %q, want /api/v1/tables/orders/data", r.URL.Path)
			}
			json.NewEncoder(w).Encode(RowsPage{
				Rows:     []Row{{"id": "r1", "status": "open"}},
				Total:    41,
				Page:     1,
				PageSize: 1,
			})
		}))
		defer server.Close()

		c := newTestClient(server)
		page, err := c.ListRows(context.Background(), "orders", ListRowsOptions{})
		if err != nil {
			t.Fatalf("ListRows failed: %v", err)
		}
		if len(page.Rows) != 1 {
			t.Fatalf("len(Rows) = %d, want 1", len(page.Rows))
		}
		if page.Rows[0]["status"] != "open" {
			t.Errorf("status = %v, want open", page.Rows[0]["status"])
		}
		if page.Total != 41 {
			t.Errorf("Total = %d, want 41", page.Total)
		}
	})

	t.Run("with options", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("page") != "2" {
				t.Errorf("page = %q, want 2", q.Get("page"))
			}
			if q.Get("page_size") != "25" {
				t.Errorf("page_size = %q, want 25", q.Get("page_size"))
			}
			if q.Get("order_by") != "created_at.desc" {
				t.Errorf("order_by = %q, want created_at.desc", q.Get("order_by"))
			}
			if q.Get("filter_column") != "status" || q.Get("filter_value") != "open" {
				t.Errorf("filter = %q=%q, want status=open", q.Get("filter_column"), q.Get("filter_value"))
			}
			json.NewEncoder(w).Encode(RowsPage{})
		}))
		defer server.Close()

		c := newTestClient(server)
		_, err := c.ListRows(context.Background(), "orders", ListRowsOptions{
			Page:     2,
			PageSize: 25,
			OrderBy:  "created_at.desc",
			Filter:   map[string]string{"status": "open"},
		})
		if err != nil {
			t.Fatalf("ListRows failed: %v", err)
		}
	})

	t.Run("zero options omitted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Query()) != 0 {
				t.Errorf("query = %v, want empty", r.URL.Query())
			}
			json.NewEncoder(w).Encode(RowsPage{})
		}))
		defer server.Close()

		c := newTestClient(server)
		if _, err := c.ListRows(context.Background(), "orders", ListRowsOptions{}); err != nil {
			t.Fatalf("ListRows failed: %v", err)
		}
	})
}

func TestGetRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tables/orders/data/r1" {
			t.Errorf("path = %q, want /api/v1/tables/orders/data/r1", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Row{"id": "r1", "amount": 12.5})
	}))
	defer server.Close()

	c := newTestClient(server)
	row, err := c.GetRow(context.Background(), "orders", "r1")
	if err != nil {
		t.Fatalf("GetRow failed: %v", err)
	}
	if row["amount"] != 12.5 {
		t.Errorf("amount = %v, want 12.5", row["amount"])
	}
}

func TestGetRow_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "row not found"}`))
	}))
	defer server.Close()

	c := newTestClient(server)
	_, err := c.GetRow(context.Background(), "orders", "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *httpapi.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Errorf("err = %v, want 404 APIError", err)
	}
}

func TestInsertRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		var body Row
		json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != "open" {
			t.Errorf("status = %v, want open", body["status"])
		}
		body["id"] = "generated-1"
		json.NewEncoder(w).Encode(body)
	}))
	defer server.Close()

	c := newTestClient(server)
	created, err := c.InsertRow(context.Background(), "orders", Row{"status": "open"})
	if err != nil {
		t.Fatalf("InsertRow failed: %v", err)
	}
	if created["id"] != "generated-1" {
		t.Errorf("id = %v, want generated-1", created["id"])
	}
}

func TestUpdateRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %q, want PUT", r.Method)
		}
		if r.URL.Path != "/api/v1/tables/orders/data/r1" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Row{"id": "r1", "status": "closed"})
	}))
	defer server.Close()

	c := newTestClient(server)
	updated, err := c.UpdateRow(context.Background(), "orders", "r1", Row{"status": "closed"})
	if err != nil {
		t.Fatalf("UpdateRow failed: %v", err)
	}
	if updated["status"] != "closed" {
		t.Errorf("status = %v, want closed", updated["status"])
	}
}

func TestDeleteRow(t *testing.T) {
	var deleted bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q, want DELETE", r.Method)
		}
		deleted = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(server)
	if err := c.DeleteRow(context.Background(), "orders", "r1"); err != nil {
		t.Fatalf("DeleteRow failed: %v", err)
	}
	if !deleted {
		t.Error("delete request never reached the server")
	}
}

func TestPathEscaping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/v1/tables/weird%20table/data/id%2Fwith%2Fslashes" {
			t.Errorf("escaped path = %q", r.URL.EscapedPath())
		}
		json.NewEncoder(w).Encode(Row{})
	}))
	defer server.Close()

	c := newTestClient(server)
	if _, err := c.GetRow(context.Background(), "weird table", "id/with/slashes"); err != nil {
		t.Fatalf("GetRow failed: %v", err)
	}
}
