package handlers

import (
	"html/template"
	"net/http"
	"strings"

	"sentiment-admin/internal/models"
	"sentiment-admin/internal/services"
	"sentiment-admin/internal/tabular"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// AnalyzeHandler 處理表單送出的文字或上傳的表格檔
type AnalyzeHandler struct {
	analyzer       Analyzer
	uploads        UploadStore
	tpl            *template.Template
	maxUploadBytes int64
}

// NewAnalyzeHandler 建立一個 AnalyzeHandler 實例
func NewAnalyzeHandler(analyzer Analyzer, uploads UploadStore, tpl *template.Template, maxUploadBytes int64) *AnalyzeHandler {
	if analyzer == nil {
		zap.S().Panic("AnalyzeHandler：Analyzer 不得為空")
	}
	if uploads == nil {
		zap.S().Panic("AnalyzeHandler：UploadStore 不得為空")
	}
	return &AnalyzeHandler{analyzer: analyzer, uploads: uploads, tpl: tpl, maxUploadBytes: maxUploadBytes}
}

// ServeHTTP 實現 http.Handler 介面
func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	zap.S().Infof("[AnalyzeHandler] 收到請求: %s %s 來自 %s", r.Method, r.URL.Path, r.RemoteAddr)
	if r.Method != http.MethodPost {
		http.Error(w, "僅支援 POST 方法", http.StatusMethodNotAllowed)
		return
	}

	if r.ContentLength > h.maxUploadBytes {
		zap.S().Warnf("[AnalyzeHandler] 請求大小 %d 超過上限 %d", r.ContentLength, h.maxUploadBytes)
		http.Error(w, MsgUploadTooLarge, http.StatusRequestEntityTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		status, msg := classifyError(err)
		if status == http.StatusInternalServerError {
			status, msg = http.StatusBadRequest, MsgNoInput
		}
		zap.S().Warnf("[AnalyzeHandler] 解析表單失敗: %v", err)
		http.Error(w, msg, status)
		return
	}
	user := strings.TrimSpace(r.FormValue("user"))

	var records []models.AnalysisRecord
	var err error
	if text := r.FormValue("text"); strings.TrimSpace(text) != "" {
		var record *models.AnalysisRecord
		record, err = h.analyzer.Analyze(r.Context(), text, user)
		if record != nil {
			records = append(records, *record)
		}
	} else {
		records, err = h.analyzeUpload(r, user)
	}
	if err != nil {
		status, msg := classifyError(err)
		if errors.Is(err, errNoSelectedFile) {
			status, msg = http.StatusBadRequest, MsgNoSelectedFile
		}
		if status == http.StatusInternalServerError {
			zap.S().Errorf("[AnalyzeHandler] 分析失敗: %v", err)
		} else {
			zap.S().Warnf("[AnalyzeHandler] 拒絕請求: %v", err)
		}
		http.Error(w, msg, status)
		return
	}

	renderPage(w, h.tpl, "results.html", PageData{Title: "Results", Records: records})
}

var errNoSelectedFile = errors.New("no selected file")

func (h *AnalyzeHandler) analyzeUpload(r *http.Request, user string) ([]models.AnalysisRecord, error) {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		// 瀏覽器未選檔時送出 filename=""，multipart 會把它當成一般欄位
		if r.MultipartForm != nil {
			if _, ok := r.MultipartForm.Value["file"]; ok {
				return nil, errNoSelectedFile
			}
		}
		return nil, services.ErrNoInput
	}
	if err != nil {
		return nil, errors.Wrap(err, "讀取上傳檔案失敗")
	}
	defer file.Close()
	if header.Filename == "" {
		return nil, errNoSelectedFile
	}

	relPath, err := h.uploads.Save(header.Filename, file)
	if err != nil {
		return nil, err
	}
	saved, err := h.uploads.Open(relPath)
	if err != nil {
		return nil, err
	}
	defer saved.Close()

	table, err := tabular.Read(saved, header.Filename)
	if err != nil {
		if errors.Is(err, tabular.ErrUnsupportedFormat) {
			return nil, err
		}
		// 無法解析的檔案視為缺少 text 欄位
		zap.S().Warnf("[AnalyzeHandler] 無法解析上傳檔案 '%s': %v", header.Filename, err)
		return nil, errors.Wrap(services.ErrMissingTextColumn, err.Error())
	}
	return h.analyzer.AnalyzeTable(r.Context(), table, user)
}
