package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// 2^53，超过该值的浮点数不能精确表示整数
const maxExactFloatInt = 1 << 53

var (
	quotedText   = regexp.MustCompile(`"[^"]*"`)
	bracketedSec = regexp.MustCompile(`\[[^\]]*\]`)
)

// NormalizeColumnName 规范化列名：去除首尾空白与换行，并统一为 NFC
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\r", "")
	name = strings.ReplaceAll(name, "\n", "")
	return norm.NFC.String(name)
}

// IsDateNumFmt 判断内置数字格式是否为日期格式
func IsDateNumFmt(numFmt int) bool {
	switch {
	case numFmt >= 14 && numFmt <= 22:
		return true
	case numFmt >= 27 && numFmt <= 36:
		return true
	case numFmt >= 45 && numFmt <= 47:
		return true
	case numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

// IsDateFormatCode 判断自定义格式串是否包含日期部分（年或日）
func IsDateFormatCode(code string) bool {
	code = quotedText.ReplaceAllString(code, "")
	code = bracketedSec.ReplaceAllString(code, "")
	code = strings.ToLower(code)
	return strings.ContainsAny(code, "yd")
}

// convertCell 将原始单元格文本转换为带类型的值
func convertCell(raw string, cellType excelize.CellType, dateStyled, date1904 bool) any {
	if raw == "" {
		return nil
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeBool, excelize.CellTypeError:
		return raw
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return t
		}
		return raw
	}

	// 数值（含无类型标记的单元格与公式结果）
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	if dateStyled {
		if t, err := excelize.ExcelDateToTime(f, date1904); err == nil {
			return t
		}
	}
	return numberValue(f)
}

// numberValue 整值返回 int64，其余返回 float64
func numberValue(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) <= maxExactFloatInt {
		return int64(f)
	}
	return f
}

func parseISODate(raw string) (time.Time, bool) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isBlankRow 所有单元格都为空时视为空行，只含空白字符的单元格不算空
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
