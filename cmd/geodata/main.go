// 命令行工具：在本地数据目录上执行查询、校验与导出，不依赖 HTTP 服务
package main

import (
	"os"
	"path/filepath"

	"geodata-api/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	logger.SetupWriter(os.Stderr)
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
