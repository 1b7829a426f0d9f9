package uploads

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileSystemStorage 負責把上傳的表格檔存到本地目錄
type FileSystemStorage struct {
	basePath string
}

// NewFileSystemStorage 建立 FileSystemStorage 實例，basePath 不存在時會建立
func NewFileSystemStorage(basePath string) (*FileSystemStorage, error) {
	if basePath == "" {
		return nil, errors.New("上傳目錄不得為空")
	}
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, errors.Wrapf(err, "無法取得上傳目錄的絕對路徑 '%s'", basePath)
	}
	if err := os.MkdirAll(absBasePath, 0o755); err != nil {
		return nil, errors.Wrapf(err, "無法建立上傳目錄 '%s'", absBasePath)
	}
	zap.S().Infof("[uploads] 上傳目錄設定為: %s", absBasePath)
	return &FileSystemStorage{basePath: absBasePath}, nil
}

// SanitizeFilename 只保留檔名中安全的字元，並去除路徑部分
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "upload"
	}
	return name
}

// Save 將上傳內容寫入 basePath/YYYY/MM/DD/<uuid>_<檔名>，回傳相對路徑
func (fs *FileSystemStorage) Save(originalFileName string, r io.Reader) (string, error) {
	if originalFileName == "" {
		return "", errors.New("Save 參數 originalFileName 不得為空")
	}
	datePath := time.Now().Format("2006/01/02")
	targetDir := filepath.Join(fs.basePath, datePath)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "無法建立目標目錄 '%s'", targetDir)
	}

	name := uuid.NewString() + "_" + SanitizeFilename(originalFileName)
	targetPath := filepath.Join(targetDir, name)
	f, err := os.OpenFile(targetPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", errors.Wrapf(err, "無法建立檔案 '%s'", targetPath)
	}
	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(targetPath)
		return "", errors.Wrapf(err, "無法寫入上傳檔案到 '%s'", targetPath)
	}
	zap.S().Infof("[uploads] 已儲存上傳檔案 '%s' (%d bytes)", targetPath, written)

	relativePath, err := filepath.Rel(fs.basePath, targetPath)
	if err != nil {
		return "", errors.Wrap(err, "無法取得相對路徑")
	}
	return relativePath, nil
}

// AbsolutePath 將相對路徑轉為絕對路徑，拒絕跳出 basePath 的路徑
func (fs *FileSystemStorage) AbsolutePath(relativePath string) (string, error) {
	if relativePath == "" {
		return "", errors.New("relativePath 不得為空")
	}
	absPath := filepath.Join(fs.basePath, relativePath)
	if absPath != fs.basePath && !strings.HasPrefix(absPath, fs.basePath+string(os.PathSeparator)) {
		return "", errors.Errorf("路徑 '%s' 超出上傳目錄", relativePath)
	}
	if _, err := os.Stat(absPath); err != nil {
		return "", errors.Wrapf(err, "上傳檔案 '%s' 不存在", absPath)
	}
	return absPath, nil
}

// Open 開啟已儲存的上傳檔
func (fs *FileSystemStorage) Open(relativePath string) (*os.File, error) {
	absPath, err := fs.AbsolutePath(relativePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "無法開啟上傳檔案 '%s'", absPath)
	}
	return f, nil
}
