// admintoken 管理员 Token 运维工具
//
//	admintoken issue  -subject ops -ttl 24h
//	admintoken revoke -token <jwt>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/crizanp/crijan-blog-backend/config"
	"github.com/crizanp/crijan-blog-backend/pkg/jwt"
	applogger "github.com/crizanp/crijan-blog-backend/pkg/logger"
	"github.com/crizanp/crijan-blog-backend/pkg/redis"
)

func usage() {
	fmt.Fprintln(os.Stderr, "用法: admintoken <issue|revoke> [flags]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "issue":
		fs := flag.NewFlagSet("issue", flag.ExitOnError)
		configPath := fs.String("config", "", "配置文件路径")
		subject := fs.String("subject", "", "Token 签发对象（必填）")
		ttl := fs.Duration("ttl", 0, "有效期，缺省使用 auth.access_token_ttl")
		fs.Parse(os.Args[2:])

		if *subject == "" {
			fmt.Fprintln(os.Stderr, "-subject 不能为空")
			os.Exit(2)
		}
		cfg := mustLoad(*configPath)
		token, claims, err := jwt.NewManager(&cfg.Auth).GenerateAccessToken(*subject, *ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "签发失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "jti=%s expires=%s\n", claims.ID, claims.ExpiresAt.Time.Format(time.RFC3339))
		fmt.Println(token)

	case "revoke":
		fs := flag.NewFlagSet("revoke", flag.ExitOnError)
		configPath := fs.String("config", "", "配置文件路径")
		token := fs.String("token", "", "待吊销的 Token（必填）")
		fs.Parse(os.Args[2:])

		if *token == "" {
			fmt.Fprintln(os.Stderr, "-token 不能为空")
			os.Exit(2)
		}
		cfg := mustLoad(*configPath)
		if err := revoke(cfg, *token); err != nil {
			fmt.Fprintf(os.Stderr, "吊销失败: %v\n", err)
			os.Exit(1)
		}

	default:
		usage()
	}
}

func mustLoad(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func revoke(cfg *config.Config, token string) error {
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	claims, err := jwt.NewManager(&cfg.Auth).ParseToken(token)
	if err != nil {
		return err
	}

	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := rdb.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		return err
	}

	logger.Info("Token 已吊销",
		zap.String("jti", claims.ID),
		zap.String("subject", claims.Subject),
		zap.Duration("ttl", ttl),
	)
	return nil
}
