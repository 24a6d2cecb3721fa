package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"astro-distribusi/backend/config"
	"astro-distribusi/backend/pkg/jwt"
)

// 使用服务自身的 JWT 配置签发访问令牌，供联调与冒烟测试使用
// 生产环境的令牌由外部认证服务签发
func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config.yaml）")
	userID := flag.String("user", "", "令牌中的 user_id")
	elevated := flag.Bool("elevated", false, "是否携带提权声明")
	ttl := flag.Duration("ttl", time.Hour, "令牌有效期")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "必须指定 -user")
		os.Exit(2)
	}
	if *ttl <= 0 {
		fmt.Fprintln(os.Stderr, "-ttl 必须为正数")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	token, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(*userID, *elevated, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "签发令牌失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
