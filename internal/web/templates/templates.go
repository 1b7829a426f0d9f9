// Package templates 內嵌網頁範本；設定 server.templatePath 時改從磁碟讀取。
package templates

import (
	"embed"
	"html/template"
	"path/filepath"

	"github.com/pkg/errors"
)

//go:embed *.html
var files embed.FS

// Load 解析所有範本。dir 為空時使用內嵌版本。
func Load(dir string) (*template.Template, error) {
	if dir == "" {
		tpl, err := template.ParseFS(files, "*.html")
		return tpl, errors.Wrap(err, "無法解析內嵌範本")
	}
	tpl, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, errors.Wrapf(err, "無法解析範本目錄 '%s'", dir)
	}
	return tpl, nil
}
