package parser

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets 工作簿中没有任何工作表
var ErrNoSheets = errors.New("workbook has no sheets")

// SheetReader 从 xlsx 工作簿读取带类型的行
type SheetReader struct {
	file     *excelize.File
	date1904 bool
	styles   map[int]bool // style id -> 是否日期格式
}

// NewSheetReader 创建读取器
func NewSheetReader(file *excelize.File) *SheetReader {
	r := &SheetReader{
		file:   file,
		styles: make(map[int]bool),
	}
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

// SheetNames 工作表名称列表
func (r *SheetReader) SheetNames() []string {
	return r.file.GetSheetList()
}

// FirstSheet 读取第一个工作表
func (r *SheetReader) FirstSheet() (*Sheet, error) {
	names := r.file.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}
	return r.ReadSheet(names[0])
}

// ReadSheet 读取指定工作表，第一行为表头，空行跳过
func (r *SheetReader) ReadSheet(sheetName string) (*Sheet, error) {
	rows, err := r.file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}

	sheet := &Sheet{Name: sheetName}
	if len(rows) == 0 {
		return sheet, nil
	}

	header := make([]string, len(rows[0]))
	for i, col := range rows[0] {
		header[i] = NormalizeColumnName(col)
	}
	sheet.Header = header

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		cells := rows[rowIdx]
		if isBlankRow(cells) {
			continue
		}

		row := make(RawRow, len(header))
		for colIdx, col := range header {
			if col == "" || colIdx >= len(cells) {
				continue
			}
			if _, dup := row[col]; dup {
				continue
			}
			value, err := r.cellValue(sheetName, colIdx+1, rowIdx+1, cells[colIdx])
			if err != nil {
				return nil, err
			}
			if value != nil {
				row[col] = value
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

// cellValue 结合单元格类型与数字格式转换单元格值
func (r *SheetReader) cellValue(sheetName string, col, row int, raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}

	cellType, err := r.file.GetCellType(sheetName, cell)
	if err != nil {
		return nil, fmt.Errorf("failed to get cell type %s!%s: %w", sheetName, cell, err)
	}

	dateStyled := false
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		dateStyled = r.isDateStyled(sheetName, cell)
	}

	return convertCell(raw, cellType, dateStyled, r.date1904), nil
}

func (r *SheetReader) isDateStyled(sheetName, cell string) bool {
	styleID, err := r.file.GetCellStyle(sheetName, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := r.styles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := r.file.GetStyle(styleID); err == nil && style != nil {
		isDate = IsDateNumFmt(style.NumFmt)
		if !isDate && style.CustomNumFmt != nil {
			isDate = IsDateFormatCode(*style.CustomNumFmt)
		}
	}
	r.styles[styleID] = isDate
	return isDate
}
