package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"sentiment-admin/internal/models"
	"sentiment-admin/internal/services"
	"sentiment-admin/internal/tabular"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// 使用者看到的訊息
const (
	MsgNoInput           = "No input provided"
	MsgNoSelectedFile    = "No selected file"
	MsgMissingTextColumn = "CSV file must have a 'text' column"
	MsgUnsupportedFormat = "Unsupported file format, upload a .csv or .xlsx file"
	MsgUploadTooLarge    = "Uploaded file is too large"
	MsgInternalError     = "Analysis failed, please try again later"
)

// PageData 用於傳遞給 HTML 範本的數據
type PageData struct {
	Title       string
	DefaultUser string
	Records     []models.AnalysisRecord
	GeneratedAt time.Time
}

func renderPage(w http.ResponseWriter, tpl *template.Template, name string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.ExecuteTemplate(w, name, data); err != nil {
		zap.S().Errorf("執行範本 '%s' 失敗: %v", name, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorf("寫入 JSON 回應失敗: %v", err)
	}
}

// classifyError 把分析錯誤對應到 HTTP 狀態碼與使用者訊息
func classifyError(err error) (int, string) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, services.ErrNoInput):
		return http.StatusBadRequest, MsgNoInput
	case errors.Is(err, services.ErrMissingTextColumn):
		return http.StatusBadRequest, MsgMissingTextColumn
	case errors.Is(err, tabular.ErrUnsupportedFormat):
		return http.StatusBadRequest, MsgUnsupportedFormat
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, MsgUploadTooLarge
	default:
		return http.StatusInternalServerError, MsgInternalError
	}
}
