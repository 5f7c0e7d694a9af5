package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"billingest/internal/config"
	"billingest/internal/server"
	"billingest/pkg/logger"
)

var (
	port        = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode     = flag.Bool("dev", false, "开发模式")
	dataDir     = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	writeConfig = flag.Bool("writeConfig", false, "将合并后的配置写入 config.toml 后退出")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  billingest - 账单导入与风控评分服务")
	fmt.Println("==========================================")

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	if *writeConfig {
		path, err := config.SaveConfig(cfg)
		if err != nil {
			log.Fatalf("写入配置失败: %v", err)
		}
		fmt.Printf("配置已写入: %s\n", path)
		return
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Server.DevMode)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if info.Path != "" {
		zlog.Info("config loaded", zap.String("path", info.Path))
	}

	// 创建服务器
	srv, err := server.NewServer(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to create server", zap.Error(err))
	}

	// 启动服务器
	go func() {
		zlog.Info("listening", zap.String("addr", srv.Addr()), zap.Bool("dev_mode", cfg.Server.DevMode))
		if err := srv.Run(); err != nil {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()

	fmt.Printf("服务地址: http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("shutdown failed", zap.Error(err))
	}
}
