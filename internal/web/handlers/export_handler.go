package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"sentiment-admin/internal/models"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportHeaders 是匯出檔的欄位順序
var ExportHeaders = []string{
	"id", "date_time", "text", "sentiment", "subjectivity", "keywords",
	"language", "character_count", "user", "total_uses",
}

// ExportHandler 負責處理匯出請求
type ExportHandler struct {
	log LogReader
	now func() time.Time
}

// NewExportHandler 建立一個 ExportHandler 實例
func NewExportHandler(log LogReader) *ExportHandler {
	if log == nil {
		zap.S().Panic("ExportHandler：LogReader 不得為空")
	}
	return &ExportHandler{log: log, now: time.Now}
}

// exportRow 把紀錄轉成匯出用的欄位；缺少的可選欄位留空
func exportRow(r models.AnalysisRecord) []string {
	row := []string{
		cast.ToString(r.ID),
		r.FormattedTimestamp(),
		r.Text,
		string(r.Sentiment),
		string(r.Subjectivity),
		r.Keywords,
		"",
		"",
		r.User,
		cast.ToString(r.TotalUses),
	}
	if r.Language.Valid {
		row[6] = r.Language.String
	}
	if r.CharacterCount.Valid {
		row[7] = cast.ToString(r.CharacterCount.Int64)
	}
	return row
}

// ServeHTTP 實現 http.Handler 介面
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("[ExportHandler] 收到請求: %s %s 來自 %s", r.Method, r.URL.Path, r.RemoteAddr)
	if r.Method != http.MethodGet {
		http.Error(w, "僅支援 GET 方法", http.StatusMethodNotAllowed)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		http.Error(w, "format 僅支援 csv 或 xlsx", http.StatusBadRequest)
		return
	}

	records, err := h.log.ListLog(r.Context())
	if err != nil {
		zap.S().Errorf("[ExportHandler] 讀取分析紀錄失敗: %v", err)
		http.Error(w, "無法獲取匯出數據", http.StatusInternalServerError)
		return
	}
	zap.S().Infof("[ExportHandler] 匯出 %d 筆紀錄 (格式: %s)", len(records), format)

	filename := fmt.Sprintf("analysis_log_%s.%s", h.now().Format("2006-01-02"), format)
	if format == "xlsx" {
		h.writeXLSX(w, records, filename)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write(ExportHeaders); err != nil {
		zap.S().Errorf("[ExportHandler] 寫入 CSV 標題失敗: %v", err)
		return
	}
	for _, rec := range records {
		if err := writer.Write(exportRow(rec)); err != nil {
			zap.S().Errorf("[ExportHandler] 寫入 CSV 資料列失敗: %v", err)
			return
		}
	}
}

func (h *ExportHandler) writeXLSX(w http.ResponseWriter, records []models.AnalysisRecord, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	if err := fillSheet(f, records); err != nil {
		zap.S().Errorf("[ExportHandler] 建立 XLSX 失敗: %v", err)
		http.Error(w, "無法產生匯出檔案", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := f.Write(w); err != nil {
		zap.S().Errorf("[ExportHandler] 寫入 XLSX 失敗: %v", err)
	}
}

func fillSheet(f *excelize.File, records []models.AnalysisRecord) error {
	const sheet = "analysis_log"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "設定工作表名稱失敗")
	}
	header := make([]interface{}, len(ExportHeaders))
	for i, h := range ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "寫入標題列失敗")
	}
	for i, rec := range records {
		values := exportRow(rec)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "計算儲存格位置失敗")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "寫入第 %d 列失敗", i+2)
		}
	}
	return nil
}
