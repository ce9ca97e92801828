package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// nullMarker 报表中表示"无值"的字面量
const nullMarker = "null"

// 报表固定列
const (
	ColCategoryID          = "Category Id"
	ColCategoryName        = "Category Name"
	ColParentGroupID       = "Parent Group Id"
	ColCategoryOrdinal     = "Category Ordinal"
	ColCategoryGlobalOrder = "Category Global Ordinal"
	ColItemID              = "Item Id"
	ColName                = "Name"
	ColShortName           = "Short Name"
	ColShortHand           = "Short Hand"
	ColDescription         = "Narrative Description"
	ColManufacturer        = "Manufacturer"
	ColManufacturerCountry = "Manufacturer Country"
	ColWeight              = "Weight"
	ColDimensions          = "Dimensions"
	ColImageURL            = "Image URL"
	ColIsFeatured          = "isFeatured"
	ColIsArchived          = "isArchived"
	ColSize                = "Size"
	ColItemBarcode         = "Item Barcode"
	ColItemOrdinal         = "Item Ordinal"
	ColDisplayString       = "Display String"
)

// ReportColumns 报表表头 (按名称校验，不要求顺序)
var ReportColumns = []string{
	ColCategoryID, ColCategoryName, ColParentGroupID, ColCategoryOrdinal, ColCategoryGlobalOrder,
	ColItemID, ColName, ColShortName, ColShortHand, ColDescription,
	ColManufacturer, ColManufacturerCountry, ColWeight, ColDimensions, ColImageURL,
	ColIsFeatured, ColIsArchived, ColSize, ColItemBarcode, ColItemOrdinal, ColDisplayString,
}

// Field 报表单元格
// Null 为 true 表示单元格是字面量 "null"；空字符串仍是有效值
type Field struct {
	Value string
	Null  bool
}

// Present 非 null 标记
func (f Field) Present() bool { return !f.Null }

// Ptr null 标记返回 nil
func (f Field) Ptr() *string {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// OrEmpty null 标记返回空字符串
func (f Field) OrEmpty() string {
	if f.Null {
		return ""
	}
	return f.Value
}

// ParsedRow 一行报表数据
type ParsedRow struct {
	Line   int
	fields map[string]Field
	raw    map[string]string
}

// Get 按列名取值，未知列视为 null
func (r ParsedRow) Get(column string) Field {
	f, ok := r.fields[column]
	if !ok {
		return Field{Null: true}
	}
	return f
}

// IsHeaderRepeat 表头在数据中重复出现
func (r ParsedRow) IsHeaderRepeat() bool {
	return r.raw[ColCategoryID] == ColCategoryID
}

// NewParsedRow 由列名 -> 原始文本构造一行，供测试与内部使用
func NewParsedRow(line int, values map[string]string) ParsedRow {
	row := ParsedRow{
		Line:   line,
		fields: make(map[string]Field, len(ReportColumns)),
		raw:    make(map[string]string, len(ReportColumns)),
	}
	for _, col := range ReportColumns {
		v, ok := values[col]
		if !ok {
			v = nullMarker
		}
		row.raw[col] = v
		row.fields[col] = Field{Value: v, Null: v == nullMarker}
	}
	return row
}

// ParseReport 解析报表文本
// 全有或全无：任一行出错立即返回 ParseError，不返回部分结果
func ParseReport(text string) ([]ParsedRow, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Line: 1, Err: errors.New("empty report")}
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	index, err := indexHeader(header)
	if err != nil {
		return nil, &ParseError{Line: 1, Err: err}
	}

	var rows []ParsedRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Err: pe.Err}
			}
			return nil, &ParseError{Err: err}
		}

		line, _ := reader.FieldPos(0)
		values := make(map[string]string, len(index))
		for col, i := range index {
			values[col] = record[i]
		}
		rows = append(rows, NewParsedRow(line, values))
	}

	return rows, nil
}

// indexHeader 校验表头列名并返回列名 -> 下标
func indexHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}

	var missing []string
	for _, col := range ReportColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}
