package handlers

import (
	"encoding/json"
	"net/http"

	"sentiment-admin/internal/models"

	"go.uber.org/zap"
)

type analyzeRequest struct {
	Text string `json:"text"`
	User string `json:"user"`
}

type analyzeResponse struct {
	Records []models.AnalysisRecord `json:"records"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// APIAnalyzeHandler 以 JSON 接收單一文本
type APIAnalyzeHandler struct {
	analyzer Analyzer
	maxBytes int64
}

func NewAPIAnalyzeHandler(analyzer Analyzer, maxBytes int64) *APIAnalyzeHandler {
	if analyzer == nil {
		zap.S().Panic("APIAnalyzeHandler：Analyzer 不得為空")
	}
	return &APIAnalyzeHandler{analyzer: analyzer, maxBytes: maxBytes}
}

func (h *APIAnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "僅支援 POST 方法"})
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBytes)).Decode(&req); err != nil {
		zap.S().Warnf("[APIAnalyzeHandler] 無法解析請求 JSON: %v", err)
		status, msg := classifyError(err)
		if status == http.StatusInternalServerError {
			status, msg = http.StatusBadRequest, "invalid JSON body"
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	record, err := h.analyzer.Analyze(r.Context(), req.Text, req.User)
	if err != nil {
		status, msg := classifyError(err)
		if status == http.StatusInternalServerError {
			zap.S().Errorf("[APIAnalyzeHandler] 分析失敗: %v", err)
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Records: []models.AnalysisRecord{*record}})
}

// APILogHandler 以 JSON 回傳完整紀錄
type APILogHandler struct {
	log LogReader
}

func NewAPILogHandler(log LogReader) *APILogHandler {
	if log == nil {
		zap.S().Panic("APILogHandler：LogReader 不得為空")
	}
	return &APILogHandler{log: log}
}

func (h *APILogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "僅支援 GET 方法"})
		return
	}
	records, err := h.log.ListLog(r.Context())
	if err != nil {
		zap.S().Errorf("[APILogHandler] 讀取分析紀錄失敗: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: MsgInternalError})
		return
	}
	if records == nil {
		records = []models.AnalysisRecord{}
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Records: records})
}

// HealthHandler 回報服務存活
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
