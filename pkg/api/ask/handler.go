// Package ask exposes the business intelligence HTTP surface: the /ask
// question endpoint plus health, board summary and cache maintenance
// endpoints.
package ask

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhimh33/Skylark-BI/pkg/core/ai"
	"github.com/abhimh33/Skylark-BI/pkg/core/cache"
	"github.com/abhimh33/Skylark-BI/pkg/core/cleaner"
	"github.com/abhimh33/Skylark-BI/pkg/core/metrics"
	"github.com/abhimh33/Skylark-BI/pkg/core/monday"
	"github.com/abhimh33/Skylark-BI/pkg/models"
)

// boardFetcher pulls raw items from both boards.
type boardFetcher interface {
	GetAllBoards(ctx context.Context, dealsBoardID, workOrdersBoardID string) (*monday.BoardsData, error)
}

// insightService is the slice of the AI layer the handler needs.
type insightService interface {
	ExtractIntent(ctx context.Context, query string, availableSectors []string) *models.Intent
	GenerateExecutiveSummary(ctx context.Context, question string, metrics []models.MetricResult, stats models.SummaryStats, warnings []models.QualityIssue) (string, error)
	GenerateLeadershipUpdate(ctx context.Context, metrics []models.MetricResult, stats models.SummaryStats, warnings []models.QualityIssue) (string, error)
	GenerateFollowUpSuggestions(ctx context.Context, question string, metricType models.MetricType, availableSectors []string) []string
}

// askArchive persists pipeline history; the zero implementation no-ops.
type askArchive interface {
	SaveSnapshotStats(ctx context.Context, snapshot *models.Snapshot) error
	RecordAsk(ctx context.Context, requestID, question string, metricType models.MetricType, confidence float64, source string, elapsed time.Duration) error
}

// Options carries the board wiring for a Handler.
type Options struct {
	DealsBoardID      string
	WorkOrdersBoardID string
}

// Handler serves the BI endpoints. Snapshot and response caches are shared
// across requests; everything else is computed per request.
type Handler struct {
	fetcher       boardFetcher
	insights      insightService
	archive       askArchive
	snapshotCache *cache.TTLCache[*models.Snapshot]
	responseCache *cache.TTLCache[models.AskResponse]
	opts          Options
	logger        *zap.Logger
}

// NewHandler wires the ask pipeline. A nil logger disables logging.
func NewHandler(fetcher boardFetcher, insights insightService, archive askArchive,
	snapshotCache *cache.TTLCache[*models.Snapshot], responseCache *cache.TTLCache[models.AskResponse],
	opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		fetcher:       fetcher,
		insights:      insights,
		archive:       archive,
		snapshotCache: snapshotCache,
		responseCache: responseCache,
		opts:          opts,
		logger:        logger,
	}
}

func setCORS(w http.ResponseWriter, methods string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, detail, code string) {
	writeJSON(w, status, models.ErrorResponse{Error: message, Detail: detail, Code: code})
}

// getSnapshot returns the cleaned snapshot, from cache when fresh. On a
// miss it fetches both boards, runs a cleaning pass and caches the result;
// the cleaned snapshot is what gets cached, so repeat questions inside the
// TTL skip both the network and the cleaning pass.
func (h *Handler) getSnapshot(ctx context.Context) (*models.Snapshot, bool, error) {
	if snapshot, ok := h.snapshotCache.Get(cache.SnapshotKey); ok {
		h.logger.Info("snapshot served from cache")
		return snapshot, true, nil
	}

	boards, err := h.fetcher.GetAllBoards(ctx, h.opts.DealsBoardID, h.opts.WorkOrdersBoardID)
	if err != nil {
		return nil, false, err
	}

	snapshot := cleaner.New(h.logger).CleanBoards(boards.Deals.Items, boards.WorkOrders.Items)
	h.snapshotCache.Set(cache.SnapshotKey, snapshot)

	if err := h.archive.SaveSnapshotStats(ctx, snapshot); err != nil {
		h.logger.Warn("failed to archive snapshot stats", zap.Error(err))
	}

	h.logger.Info("snapshot fetched live and cached",
		zap.Int("deals", len(snapshot.Deals)),
		zap.Int("work_orders", len(snapshot.WorkOrders)))
	return snapshot, false, nil
}

var defaultSuggestions = []string{
	"What's our total pipeline value?",
	"Give me a leadership update",
	"Show collection efficiency",
}

// HandleAsk processes one natural language business question.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "POST")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "", "METHOD_NOT_ALLOWED")
		return
	}

	start := time.Now()
	ctx := r.Context()

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error(), "BAD_REQUEST")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "Question must not be empty", "", "BAD_REQUEST")
		return
	}

	// Identical questions (modulo punctuation and case) inside the TTL
	// are answered from the response cache.
	responseKey := cache.ResponseKey(req.Question)
	if cached, ok := h.responseCache.Get(responseKey); ok {
		cached.Source = "cache"
		cached.ProcessingTimeMs = time.Since(start).Milliseconds()
		h.logger.Info("response served from cache", zap.String("key", responseKey))
		writeJSON(w, http.StatusOK, cached)
		return
	}

	h.logger.Info("processing question", zap.String("question", head(req.Question, 100)))

	snapshot, fromCache, err := h.getSnapshot(ctx)
	if err != nil {
		h.logger.Error("failed to fetch board data", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Failed to fetch data from monday.com", err.Error(), "MONDAY_API_ERROR")
		return
	}

	engine := metrics.NewEngine(snapshot)
	stats := engine.SummaryStats()
	availableSectors := stats.UniqueSectors

	intent := h.insights.ExtractIntent(ctx, req.Question, availableSectors)

	execWarnings := ai.FormatIssuesForExecutive(snapshot.Issues, stats.TotalDeals, stats.TotalWorkOrders)

	requestID := uuid.NewString()
	source := "live"
	if fromCache {
		source = "cache"
	}

	if intent.RequiresClarification && intent.ClarificationPrompt != "" {
		writeJSON(w, http.StatusOK, models.AskResponse{
			RequestID:             requestID,
			Insights:              intent.ClarificationPrompt,
			KeyMetrics:            []models.MetricResult{},
			DataQualityWarnings:   execWarnings,
			Intent:                intent,
			Confidence:            intent.Confidence,
			RequiresClarification: true,
			ClarificationPrompt:   intent.ClarificationPrompt,
			SuggestedQuestions:    defaultSuggestions,
			Source:                source,
			ProcessingTimeMs:      time.Since(start).Milliseconds(),
		})
		return
	}

	h.logger.Info("computing metrics", zap.String("metric_type", string(intent.MetricType)))
	results := engine.ComputeForIntent(intent.MetricType, intent.Sector, intent.TimeRange)

	var insights string
	if intent.MetricType == models.MetricLeadershipUpdate {
		insights, err = h.insights.GenerateLeadershipUpdate(ctx, results, stats, execWarnings)
	} else {
		insights, err = h.insights.GenerateExecutiveSummary(ctx, req.Question, results, stats, execWarnings)
	}
	if err != nil {
		h.logger.Error("failed to generate insights", zap.Error(err))
		insights = ai.FallbackInsights(results)
	}

	var insightsHTML string
	if req.RenderHTML {
		insightsHTML, err = ai.RenderInsightsHTML(insights)
		if err != nil {
			h.logger.Warn("failed to render insights HTML", zap.Error(err))
		}
	}

	suggestions := h.insights.GenerateFollowUpSuggestions(ctx, req.Question, intent.MetricType, availableSectors)
	if suggestions == nil {
		suggestions = []string{}
	}

	response := models.AskResponse{
		RequestID:           requestID,
		Insights:            insights,
		InsightsHTML:        insightsHTML,
		KeyMetrics:          results,
		DataQualityWarnings: execWarnings,
		Intent:              intent,
		Confidence:          intent.Confidence,
		SuggestedQuestions:  suggestions,
		Source:              source,
		ProcessingTimeMs:    time.Since(start).Milliseconds(),
	}

	if req.IncludeRawData {
		response.RawData = map[string]interface{}{
			"deals_count":       stats.TotalDeals,
			"work_orders_count": stats.TotalWorkOrders,
			"summary_stats":     stats,
			"fetched_at":        snapshot.FetchedAt,
		}
	}

	h.responseCache.Set(responseKey, response)

	if err := h.archive.RecordAsk(ctx, requestID, req.Question, intent.MetricType, intent.Confidence, source, time.Since(start)); err != nil {
		h.logger.Warn("failed to archive ask history", zap.Error(err))
	}

	h.logger.Info("request completed",
		zap.Int64("elapsed_ms", response.ProcessingTimeMs),
		zap.String("source", source))
	writeJSON(w, http.StatusOK, response)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleBoardsSummary returns counts, sectors and quality warnings for the
// connected boards. Useful for verifying connectivity.
func (h *Handler) HandleBoardsSummary(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "", "METHOD_NOT_ALLOWED")
		return
	}

	snapshot, fromCache, err := h.getSnapshot(r.Context())
	if err != nil {
		h.logger.Error("failed to get boards summary", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Failed to fetch board data", err.Error(), "MONDAY_API_ERROR")
		return
	}

	source := "live"
	if fromCache {
		source = "cache"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"source":                source,
		"deals_board_id":        h.opts.DealsBoardID,
		"work_orders_board_id":  h.opts.WorkOrdersBoardID,
		"fetched_at":            snapshot.FetchedAt,
		"summary":               metrics.NewEngine(snapshot).SummaryStats(),
		"data_quality_warnings": snapshot.Issues,
	})
}

// HandleCacheStats reports entry counts for both caches.
func (h *Handler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "GET")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"board_cache":    h.snapshotCache.Stats(),
		"response_cache": h.responseCache.Stats(),
	})
}

// HandleCacheClear flushes both caches; the next request fetches fresh.
func (h *Handler) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	setCORS(w, "DELETE")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "", "METHOD_NOT_ALLOWED")
		return
	}
	boards := h.snapshotCache.Clear()
	responses := h.responseCache.Clear()
	h.logger.Info("caches cleared", zap.Int("board_entries", boards), zap.Int("response_entries", responses))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "detail": "All caches cleared"})
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
