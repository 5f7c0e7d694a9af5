package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"billingest/internal/config"
	"billingest/internal/importer"
	"billingest/internal/parser"
	"billingest/internal/report"
)

var (
	format     = flag.String("format", report.FormatTable, "输出格式: table / json / yaml")
	sheetName  = flag.String("sheet", "", "工作表名称 (默认第一个)")
	seed       = flag.Int64("seed", 0, "随机评分种子 (0 表示按时间)")
	classifier = flag.String("classifier", config.ClassifierRandom, "服务分类策略: random / keyword")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "用法: %s [flags] bills.xlsx\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	invalid, err := run(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "billcheck: %v\n", err)
		os.Exit(1)
	}
	// 存在无效行时以 3 退出，便于脚本判断
	if invalid {
		os.Exit(3)
	}
}

func run(path string) (bool, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return false, fmt.Errorf("打开文件失败: %w", err)
	}
	defer file.Close()

	reader := parser.NewSheetReader(file)
	var sheet *parser.Sheet
	if *sheetName != "" {
		sheet, err = reader.ReadSheet(*sheetName)
	} else {
		sheet, err = reader.FirstSheet()
	}
	if err != nil {
		return false, err
	}

	importCfg := config.DefaultConfig().Import
	importCfg.RandomSeed = *seed
	importCfg.Classifier = *classifier
	pipeline := importer.NewPipeline(importer.NewEnricher(importCfg))

	result := report.Check(filepath.Base(path), sheet, pipeline)
	if err := report.Write(os.Stdout, *format, result); err != nil {
		return false, err
	}
	return result.InvalidRows > 0, nil
}
