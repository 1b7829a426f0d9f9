package handlers

import (
	"html/template"
	"net/http"
)

// IndexHandler 顯示文字輸入與檔案上傳表單
type IndexHandler struct {
	tpl         *template.Template
	defaultUser string
}

func NewIndexHandler(tpl *template.Template, defaultUser string) *IndexHandler {
	return &IndexHandler{tpl: tpl, defaultUser: defaultUser}
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	renderPage(w, h.tpl, "index.html", PageData{Title: "Sentiment Analysis", DefaultUser: h.defaultUser})
}
