// Package tabular 讀取上傳的 CSV / XLSX 表格，並在處理任何資料列之前做欄位檢查。
package tabular

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// TextColumn 是批次分析必須存在的欄位名稱
const TextColumn = "text"

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Table 是讀入記憶體的整份表格，第一列為標題
type Table struct {
	Header []string
	Rows   [][]string
}

// SchemaResult 是欄位檢查的結果
type SchemaResult struct {
	Valid           bool
	TextColumnIndex int
	MissingColumns  []string
}

// Validate 檢查表格是否包含 text 欄位
func (t *Table) Validate() SchemaResult {
	for i, h := range t.Header {
		if h == TextColumn {
			return SchemaResult{Valid: true, TextColumnIndex: i}
		}
	}
	return SchemaResult{Valid: false, TextColumnIndex: -1, MissingColumns: []string{TextColumn}}
}

// Column 依檔案順序回傳指定欄位的所有儲存格；列長度不足時補空字串
func (t *Table) Column(index int) []string {
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if index < len(row) {
			values = append(values, row[index])
		} else {
			values = append(values, "")
		}
	}
	return values
}

// Read 依副檔名選擇解析方式
func Read(r io.Reader, filename string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return ReadCSV(r)
	case ".xlsx", ".xlsm":
		return ReadXLSX(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "副檔名 '%s'", filepath.Ext(filename))
	}
}

// ReadCSV 解析 CSV，容許列長度不一致
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "解析 CSV 失敗")
	}
	return fromRecords(records), nil
}

// ReadXLSX 讀取活頁簿的第一個工作表
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "開啟 XLSX 失敗")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Table{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrapf(err, "讀取工作表 '%s' 失敗", sheets[0])
	}
	return fromRecords(rows), nil
}

func fromRecords(records [][]string) *Table {
	if len(records) == 0 {
		return &Table{}
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimPrefix(h, "\uFEFF")
		header[i] = strings.TrimSpace(h)
	}
	return &Table{Header: header, Rows: records[1:]}
}

// ReadBytes 是 Read 的便利版本
func ReadBytes(data []byte, filename string) (*Table, error) {
	return Read(bytes.NewReader(data), filename)
}
