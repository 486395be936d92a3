package dashboard

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/wolfman30/dental-voice-api/internal/observability/metrics"
	"github.com/wolfman30/dental-voice-api/pkg/logging"
)

type dataResponse[T any] struct {
	Data []T `json:"data"`
}

// ToolUsage counts voice tool calls by result status since process start.
type ToolUsage struct {
	Tool    string `json:"tool"`
	Success int64  `json:"success"`
	Failed  int64  `json:"failed"`
	Error   int64  `json:"error"`
	Total   int64  `json:"total"`
}

// Handler serves dashboard JSON.
type Handler struct {
	svc      *Service
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewHandler(svc *Service, gatherer prometheus.Gatherer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{svc: svc, gatherer: gatherer, logger: logger}
}

// GetStats handles GET /admin/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	h.write(w, h.svc.Stats(r.Context()))
}

// GetChartData handles GET /admin/chart-data.
func (h *Handler) GetChartData(w http.ResponseWriter, r *http.Request) {
	h.write(w, dataResponse[DayCount]{Data: h.svc.Chart(r.Context())})
}

// GetTodaysBookings handles GET /admin/todays-bookings.
func (h *Handler) GetTodaysBookings(w http.ResponseWriter, r *http.Request) {
	h.write(w, dataResponse[TodayBooking]{Data: h.svc.TodaysBookings(r.Context())})
}

// GetMonthlyBreakdown handles GET /admin/monthly-breakdown.
func (h *Handler) GetMonthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	h.write(w, dataResponse[MonthCount]{Data: h.svc.MonthlyBreakdown(r.Context())})
}

// GetToolUsage handles GET /admin/tool-usage.
func (h *Handler) GetToolUsage(w http.ResponseWriter, r *http.Request) {
	h.write(w, dataResponse[ToolUsage]{Data: snapshotToolUsage(h.gatherer)})
}

func (h *Handler) write(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode dashboard response", "error", err)
	}
}

func snapshotToolUsage(gatherer prometheus.Gatherer) []ToolUsage {
	out := []ToolUsage{}
	mfs, err := gatherer.Gather()
	if err != nil {
		return out
	}

	var family *dto.MetricFamily
	for _, mf := range mfs {
		if mf != nil && mf.GetName() == metrics.ToolCallsMetric {
			family = mf
			break
		}
	}
	if family == nil {
		return out
	}

	byTool := map[string]*ToolUsage{}
	for _, metric := range family.Metric {
		if metric == nil || metric.GetCounter() == nil {
			continue
		}
		tool := labelValue(metric, "tool")
		usage, ok := byTool[tool]
		if !ok {
			usage = &ToolUsage{Tool: tool}
			byTool[tool] = usage
		}
		n := int64(metric.GetCounter().GetValue())
		switch labelValue(metric, "status") {
		case "Success":
			usage.Success += n
		case "Failed":
			usage.Failed += n
		default:
			usage.Error += n
		}
		usage.Total += n
	}

	for _, usage := range byTool {
		out = append(out, *usage)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tool < out[j].Tool })
	return out
}

func labelValue(metric *dto.Metric, name string) string {
	for _, lp := range metric.Label {
		if lp != nil && lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
