package monday

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNormalizeColumnName(t *testing.T) {
	cases := map[string]string{
		"Deal Status":                          "deal_status",
		"Sector/service":                       "sector_service",
		"Amount in Rupees (Excl of GST) (Masked)": "amount_in_rupees_excl_of_gst_masked",
		"Serial #":                             "serial",
		"Close Date (A)":                       "close_date_a",
		"  Owner code ":                        "owner_code",
		"already_normalized":                   "already_normalized",
	}
	for input, want := range cases {
		if got := NormalizeColumnName(input); got != want {
			t.Errorf("NormalizeColumnName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseColumnValue(t *testing.T) {
	t.Run("numbers from typed field", func(t *testing.T) {
		got := parseColumnValue(map[string]interface{}{"type": "numbers", "text": "1,500", "number": float64(1500)})
		if got != float64(1500) {
			t.Errorf("got %v, want 1500", got)
		}
	})

	t.Run("numbers from text with currency", func(t *testing.T) {
		got := parseColumnValue(map[string]interface{}{"type": "numbers", "text": "$2,500.50", "value": "x"})
		f, ok := got.(float64)
		if !ok || f != 2500.50 {
			t.Errorf("got %v, want 2500.50", got)
		}
	})

	t.Run("unparsable number", func(t *testing.T) {
		if got := parseColumnValue(map[string]interface{}{"type": "numbers", "text": "n/a", "value": "x"}); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("date with time part", func(t *testing.T) {
		got := parseColumnValue(map[string]interface{}{"type": "date", "text": "2024-01-15", "date": "2024-01-15", "time": "10:30:00"})
		ts, ok := got.(time.Time)
		if !ok || !ts.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("date without time part", func(t *testing.T) {
		got := parseColumnValue(map[string]interface{}{"type": "date", "text": "2024-01-15", "date": "2024-01-15"})
		ts, ok := got.(time.Time)
		if !ok || !ts.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("status label object", func(t *testing.T) {
		got := parseColumnValue(map[string]interface{}{"type": "status", "text": "Closed Won", "label": "Closed Won", "index": float64(2)})
		m, ok := got.(map[string]interface{})
		if !ok || m["label"] != "Closed Won" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("dropdown splits on comma", func(t *testing.T) {
		got := parseColumnValue(map[string]interface{}{"type": "dropdown", "text": "Mining, Solar"})
		list, ok := got.([]interface{})
		if !ok || len(list) != 2 || list[0] != "Mining" || list[1] != "Solar" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("empty value", func(t *testing.T) {
		if got := parseColumnValue(map[string]interface{}{"type": "text", "text": ""}); got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})

	t.Run("default text", func(t *testing.T) {
		if got := parseColumnValue(map[string]interface{}{"type": "text", "text": "hello"}); got != "hello" {
			t.Errorf("got %v, want hello", got)
		}
	})
}

// Serves two pages for board 111 and verifies pagination, column parsing
// and dual-key record storage.
func TestGetBoardItemsPagination(t *testing.T) {
	page := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("API-Version"); got != "2024-01" {
			t.Errorf("API-Version header = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("Authorization header = %q", got)
		}

		page++
		cursor := `"next-page"`
		items := `[{
			"id": "1", "name": "first deal", "created_at": "2024-01-01T00:00:00Z",
			"column_values": [
				{"id": "col1", "type": "numbers", "text": "1000", "number": 1000},
				{"id": "col2", "type": "status", "text": "Open", "label": "Open", "index": 0}
			]
		}]`
		if page == 2 {
			cursor = `""`
			items = `[{"id": "2", "name": "second deal", "created_at": "2024-01-02T00:00:00Z", "column_values": []}]`
		}

		fmt.Fprintf(w, `{"data": {"boards": [{
			"id": "111", "name": "Deals",
			"columns": [
				{"id": "col1", "title": "Masked Deal value", "type": "numbers"},
				{"id": "col2", "title": "Deal Status", "type": "status"}
			],
			"items_page": {"cursor": %s, "items": %s}
		}]}}`, cursor, items)
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 100, nil)
	items, columns, err := client.GetBoardItems(context.Background(), "111")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page != 2 {
		t.Errorf("server saw %d pages, want 2", page)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if len(columns) != 2 {
		t.Errorf("columns = %d, want 2", len(columns))
	}

	first := items[0]
	if first["id"] != "1" || first["name"] != "first deal" {
		t.Errorf("basic fields wrong: %v", first)
	}
	if first["masked_deal_value"] != float64(1000) {
		t.Errorf("normalized key value = %v, want 1000", first["masked_deal_value"])
	}
	if first["Masked Deal value"] != float64(1000) {
		t.Errorf("original-title key missing: %v", first["Masked Deal value"])
	}
	status, ok := first["deal_status"].(map[string]interface{})
	if !ok || status["label"] != "Open" {
		t.Errorf("status value = %v", first["deal_status"])
	}
}

func TestExecuteQueryGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{{"message": "board not accessible"}},
		})
	}))
	defer server.Close()

	client := NewClient("k", server.URL, 100, nil)
	if _, _, err := client.GetBoardItems(context.Background(), "111"); err == nil {
		t.Fatal("expected error for GraphQL errors payload")
	}
}

func TestGetAllBoardsConcurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		boardID := "111"
		name := "Deals"
		if !strings.Contains(req.Query, "[111]") {
			boardID, name = "222", "Work Orders"
		}
		fmt.Fprintf(w, `{"data": {"boards": [{
			"id": %q, "name": %q, "columns": [],
			"items_page": {"cursor": "", "items": [{"id": "a", "name": "item", "column_values": []}]}
		}]}}`, boardID, name)
	}))
	defer server.Close()

	client := NewClient("k", server.URL, 100, nil)
	data, err := client.GetAllBoards(context.Background(), "111", "222")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Deals.BoardID != "111" || data.WorkOrders.BoardID != "222" {
		t.Errorf("board ids = %s/%s", data.Deals.BoardID, data.WorkOrders.BoardID)
	}
	if len(data.Deals.Items) != 1 || len(data.WorkOrders.Items) != 1 {
		t.Errorf("item counts = %d/%d, want 1/1", len(data.Deals.Items), len(data.WorkOrders.Items))
	}
	if data.FetchedAt.IsZero() {
		t.Error("fetched_at not set")
	}
}
