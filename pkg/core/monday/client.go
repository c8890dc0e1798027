// Package monday is a GraphQL client for the monday.com API. It fetches
// board items with cursor pagination, parses typed column values and
// flattens each item into one RawRecord keyed by normalized column title.
// Everything downstream of this package is board-agnostic.
package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhimh33/Skylark-BI/pkg/models"
)

const (
	// DefaultAPIURL is the monday.com GraphQL endpoint.
	DefaultAPIURL = "https://api.monday.com/v2"

	apiVersion      = "2024-01"
	defaultPageSize = 100
)

// Column is one column definition from a board.
type Column struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	SettingsStr string `json:"settings_str,omitempty"`
}

// BoardExtract is everything fetched from one board.
type BoardExtract struct {
	BoardID string             `json:"board_id"`
	Items   []models.RawRecord `json:"items"`
	Columns []Column           `json:"columns"`
}

// BoardsData bundles both boards from one concurrent fetch.
type BoardsData struct {
	Deals      BoardExtract `json:"deals"`
	WorkOrders BoardExtract `json:"work_orders"`
	FetchedAt  time.Time    `json:"fetched_at"`
}

// Client talks to the monday.com GraphQL API.
type Client struct {
	apiKey     string
	apiURL     string
	pageSize   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a monday.com client. Empty apiURL falls back to the
// production endpoint; a nil logger disables logging.
func NewClient(apiKey, apiURL string, pageSize int, logger *zap.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		apiURL:     apiURL,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

// executeQuery posts one GraphQL query and returns the data payload.
// GraphQL-level errors are surfaced as Go errors even on HTTP 200.
func (c *Client) executeQuery(ctx context.Context, query string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("monday.com request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read monday.com response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("monday.com API returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON from monday.com API: %w", err)
	}
	if len(parsed.Errors) > 0 {
		messages := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fmt.Errorf("GraphQL errors: %s", strings.Join(messages, "; "))
	}

	return parsed.Data, nil
}

type itemsPageData struct {
	Boards []struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Columns   []Column `json:"columns"`
		ItemsPage struct {
			Cursor string `json:"cursor"`
			Items  []struct {
				ID        string `json:"id"`
				Name      string `json:"name"`
				CreatedAt string `json:"created_at"`
				UpdatedAt string `json:"updated_at"`
				Group     *struct {
					ID    string `json:"id"`
					Title string `json:"title"`
				} `json:"group"`
				// Fragment fields vary per column type, so each value is
				// kept as a loose map and parsed by parseColumnValue.
				ColumnValues []map[string]interface{} `json:"column_values"`
			} `json:"items"`
		} `json:"items_page"`
	} `json:"boards"`
}

// GetBoardItems fetches all items from one board, paging until the cursor
// runs out. Column definitions come from the first page.
func (c *Client) GetBoardItems(ctx context.Context, boardID string) ([]models.RawRecord, []Column, error) {
	var (
		allItems []models.RawRecord
		columns  []Column
		cursor   string
	)

	c.logger.Info("fetching board items", zap.String("board_id", boardID))

	for page := 1; ; page++ {
		data, err := c.executeQuery(ctx, boardItemsQuery(boardID, cursor, c.pageSize))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch page %d of board %s: %w", page, boardID, err)
		}

		var parsed itemsPageData
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, nil, fmt.Errorf("failed to decode board %s response: %w", boardID, err)
		}
		if len(parsed.Boards) == 0 {
			c.logger.Warn("board not found", zap.String("board_id", boardID))
			break
		}
		board := parsed.Boards[0]

		if page == 1 {
			columns = board.Columns
			c.logger.Info("board columns loaded",
				zap.String("board", board.Name),
				zap.Int("columns", len(columns)))
		}

		items := board.ItemsPage.Items
		columnTitles := columnTitleMap(columns)
		for _, item := range items {
			record := models.RawRecord{
				"id":         item.ID,
				"name":       item.Name,
				"created_at": item.CreatedAt,
				"updated_at": item.UpdatedAt,
			}
			if item.Group != nil {
				record["group"] = item.Group.Title
			}
			transformColumns(record, item.ColumnValues, columnTitles)
			allItems = append(allItems, record)
		}

		c.logger.Info("board page fetched",
			zap.String("board_id", boardID),
			zap.Int("page", page),
			zap.Int("items", len(items)),
			zap.Int("total", len(allItems)))

		cursor = board.ItemsPage.Cursor
		if cursor == "" || len(items) == 0 {
			break
		}
	}

	c.logger.Info("board fetch complete",
		zap.String("board_id", boardID),
		zap.Int("items", len(allItems)))
	return allItems, columns, nil
}

func columnTitleMap(columns []Column) map[string]string {
	m := make(map[string]string, len(columns))
	for _, col := range columns {
		m[col.ID] = col.Title
	}
	return m
}

// transformColumns parses each column value into the record, keyed by both
// the normalized title and the original title. Board admins rename columns
// freely; storing both keys keeps the cleaner's field variants working.
func transformColumns(record models.RawRecord, columnValues []map[string]interface{}, titles map[string]string) {
	for _, cv := range columnValues {
		colID, _ := cv["id"].(string)
		title, ok := titles[colID]
		if !ok {
			title = colID
		}

		normalized := NormalizeColumnName(title)
		parsed := parseColumnValue(cv)

		record[normalized] = parsed
		if normalized != title {
			record[title] = parsed
		}
	}
}

func stringField(cv map[string]interface{}, key string) string {
	s, _ := cv[key].(string)
	return s
}

// parseColumnValue converts one raw column value into a native type based
// on its column type. Unparsable values come back nil; the cleaner's issue
// ledger is the place defects get recorded, not here.
func parseColumnValue(cv map[string]interface{}) interface{} {
	colType := stringField(cv, "type")
	textValue := stringField(cv, "text")
	rawValue := cv["value"]

	if textValue == "" && rawValue == nil {
		return nil
	}

	switch colType {
	case "numeric", "numbers":
		if number, ok := cv["number"].(float64); ok {
			return number
		}
		if textValue != "" {
			cleaned := strings.NewReplacer(",", "", "$", "", "€", "").Replace(textValue)
			if f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64); err == nil {
				return f
			}
		}
		return nil

	case "date":
		if dateValue := stringField(cv, "date"); dateValue != "" {
			timeValue := stringField(cv, "time")
			if timeValue == "" {
				timeValue = "00:00:00"
			}
			if t, err := time.Parse("2006-01-02T15:04:05", dateValue+"T"+timeValue); err == nil {
				return t
			}
		}
		if textValue != "" {
			if t, err := time.Parse(time.RFC3339, strings.Replace(textValue, "Z", "+00:00", 1)); err == nil {
				return t
			}
			return nil
		}
		return nil

	case "status":
		if label := stringField(cv, "label"); label != "" {
			return map[string]interface{}{"label": label, "index": cv["index"]}
		}
		return emptyAsNil(textValue)

	case "person", "people":
		return emptyAsNil(textValue)

	case "dropdown":
		if textValue == "" {
			return nil
		}
		parts := strings.Split(textValue, ", ")
		values := make([]interface{}, len(parts))
		for i, p := range parts {
			values[i] = p
		}
		return values

	case "link":
		if url := stringField(cv, "url"); url != "" {
			return map[string]interface{}{"url": url, "text": textValue}
		}
		return emptyAsNil(textValue)

	case "email":
		if email := stringField(cv, "email"); email != "" {
			return email
		}
		return emptyAsNil(textValue)

	case "phone":
		if phone := stringField(cv, "phone"); phone != "" {
			return phone
		}
		return emptyAsNil(textValue)
	}

	return emptyAsNil(textValue)
}

func emptyAsNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// NormalizeColumnName converts a column title to snake_case: separators
// become underscores, runs collapse, edges trim.
func NormalizeColumnName(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer(
		" ", "_", "-", "_", "/", "_", ".", "_", "(", "_", ")", "_", "#", "_",
	).Replace(normalized)
	for strings.Contains(normalized, "__") {
		normalized = strings.ReplaceAll(normalized, "__", "_")
	}
	return strings.Trim(normalized, "_")
}

// GetBoardMetadata fetches one board's metadata (columns, groups, owners).
func (c *Client) GetBoardMetadata(ctx context.Context, boardID string) (map[string]interface{}, error) {
	data, err := c.executeQuery(ctx, boardMetadataQuery(boardID))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Boards []map[string]interface{} `json:"boards"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode board metadata: %w", err)
	}
	if len(parsed.Boards) == 0 {
		return nil, fmt.Errorf("board not found: %s", boardID)
	}
	return parsed.Boards[0], nil
}

// GetAllBoards fetches the Deals and Work Orders boards concurrently.
func (c *Client) GetAllBoards(ctx context.Context, dealsBoardID, workOrdersBoardID string) (*BoardsData, error) {
	type fetchResult struct {
		items   []models.RawRecord
		columns []Column
		err     error
	}

	dealsCh := make(chan fetchResult, 1)
	ordersCh := make(chan fetchResult, 1)

	go func() {
		items, columns, err := c.GetBoardItems(ctx, dealsBoardID)
		dealsCh <- fetchResult{items, columns, err}
	}()
	go func() {
		items, columns, err := c.GetBoardItems(ctx, workOrdersBoardID)
		ordersCh <- fetchResult{items, columns, err}
	}()

	deals, orders := <-dealsCh, <-ordersCh
	if deals.err != nil {
		return nil, fmt.Errorf("failed to fetch deals board: %w", deals.err)
	}
	if orders.err != nil {
		return nil, fmt.Errorf("failed to fetch work orders board: %w", orders.err)
	}

	return &BoardsData{
		Deals: BoardExtract{
			BoardID: dealsBoardID,
			Items:   deals.items,
			Columns: deals.columns,
		},
		WorkOrders: BoardExtract{
			BoardID: workOrdersBoardID,
			Items:   orders.items,
			Columns: orders.columns,
		},
		FetchedAt: time.Now().UTC(),
	}, nil
}
