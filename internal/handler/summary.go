package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mboehm/chorequest/internal/model"
	"github.com/mboehm/chorequest/internal/store"
	"github.com/mboehm/chorequest/internal/summary"
)

const summaryListLimit = 52

type SummaryHandler struct {
	summaries *store.SummaryStore
	generator *summary.Generator
	logger    *slog.Logger
}

func NewSummaryHandler(summaries *store.SummaryStore, generator *summary.Generator, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, generator: generator, logger: logger}
}

func (h *SummaryHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.summaries.List(summaryListLimit)
	if err != nil {
		h.logger.Error("list summaries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list summaries")
		return
	}
	if summaries == nil {
		summaries = []model.WeeklySummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *SummaryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.summaries.List(1)
	if err != nil {
		h.logger.Error("latest summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	if len(summaries) == 0 {
		writeError(w, http.StatusNotFound, "no summary generated yet")
		return
	}
	writeJSON(w, http.StatusOK, summaries[0])
}

func (h *SummaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekStart string `json:"week_start"`
	}
	// An empty body means the current week.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var weekStart time.Time
	if req.WeekStart != "" {
		parsed, err := time.Parse("2006-01-02", req.WeekStart)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = parsed
	}

	sum, err := h.generator.Generate(r.Context(), weekStart)
	if err != nil {
		h.logger.Error("generate summary", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate summary")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
