package handlers

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

// LogHandler 依建立順序列出所有分析紀錄
type LogHandler struct {
	log LogReader
	tpl *template.Template
}

func NewLogHandler(log LogReader, tpl *template.Template) *LogHandler {
	if log == nil {
		zap.S().Panic("LogHandler：LogReader 不得為空")
	}
	return &LogHandler{log: log, tpl: tpl}
}

func (h *LogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}
	records, err := h.log.ListLog(r.Context())
	if err != nil {
		zap.S().Errorf("[LogHandler] 讀取分析紀錄失敗: %v", err)
		http.Error(w, "無法載入分析紀錄", http.StatusInternalServerError)
		return
	}
	renderPage(w, h.tpl, "log.html", PageData{Title: "Analysis Log", Records: records})
}
