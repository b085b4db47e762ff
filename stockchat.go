package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/rest"

	"stockchat-api/internal/cli"
	"stockchat-api/internal/config"
	"stockchat-api/internal/handler"
	"stockchat-api/internal/svc"
)

var configFile = flag.String("f", "etc/stockchat.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cli.LogConfigSummary(cfg)

	server := rest.MustNewServer(cfg.RestConf, rest.WithCors())
	defer server.Stop()

	ctx := svc.MustNewServiceContext(*cfg)
	defer ctx.Close()
	handler.RegisterHandlers(server, ctx)

	fmt.Printf("Starting server at %s:%d...\n", cfg.Host, cfg.Port)
	server.Start()
}
