// Package report 账单表检查结果的输出格式
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"billingest/internal/importer"
	"billingest/internal/parser"
)

// 输出格式
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Issue 一个字段错误
type Issue struct {
	Row     int    `json:"row_index" yaml:"row_index"`
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// CheckResult 不入库的检查结果
type CheckResult struct {
	File         string  `json:"file" yaml:"file"`
	Sheet        string  `json:"sheet" yaml:"sheet"`
	Layout       string  `json:"layout" yaml:"layout"`
	TotalRows    int     `json:"total_rows" yaml:"total_rows"`
	ValidRows    int     `json:"valid_rows" yaml:"valid_rows"`
	InvalidRows  int     `json:"invalid_rows" yaml:"invalid_rows"`
	FraudFlagged int     `json:"fraud_flagged" yaml:"fraud_flagged"`
	Issues       []Issue `json:"issues" yaml:"issues"`
}

// Check 对工作表运行流水线，只统计不写库
func Check(file string, sheet *parser.Sheet, pipeline *importer.Pipeline) *CheckResult {
	bills, violations := pipeline.Process(sheet)

	result := &CheckResult{
		File:        file,
		Sheet:       sheet.Name,
		Layout:      parser.DetectLayout(sheet.Header).String(),
		TotalRows:   len(sheet.Rows),
		ValidRows:   len(bills),
		InvalidRows: len(violations),
		Issues:      []Issue{},
	}
	for _, b := range bills {
		if b.Fraud {
			result.FraudFlagged++
		}
	}
	for _, row := range violations {
		for _, v := range row.Violations {
			result.Issues = append(result.Issues, Issue{Row: row.Row, Field: v.Field, Message: v.Message})
		}
	}
	return result
}

// Write 按格式输出
func Write(w io.Writer, format string, result *CheckResult) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		return writeTable(w, result)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeTable(w io.Writer, result *CheckResult) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s\n", result.File, result.Sheet, result.Layout)
	fmt.Fprintf(&sb, "rows: %d  valid: %d  invalid: %d  fraud: %d\n",
		result.TotalRows, result.ValidRows, result.InvalidRows, result.FraudFlagged)

	if len(result.Issues) > 0 {
		rows := [][]string{{"row", "field", "message"}}
		for _, issue := range result.Issues {
			rows = append(rows, []string{fmt.Sprint(issue.Row), issue.Field, issue.Message})
		}
		sb.WriteString("\n")
		sb.WriteString(alignTable(rows))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// alignTable 按显示宽度对齐，兼容西里尔与中日韩字符
func alignTable(rows [][]string) string {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > widths[i] {
				widths[i] = width
			}
		}
	}

	var sb strings.Builder
	for r, row := range rows {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)))
			}
		}
		sb.WriteString("\n")
		if r == 0 {
			for i, width := range widths {
				if i > 0 {
					sb.WriteString("  ")
				}
				sb.WriteString(strings.Repeat("-", width))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
