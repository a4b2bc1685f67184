// Command shaman-assistant serves the assistant as an MCP server on
// stdin/stdout. Logs go to stderr so they never mix with the protocol
// stream.
package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap/zapcore"

	assistant "github.com/ShamanBV/shaman-assistant"
	"github.com/ShamanBV/shaman-assistant/common/logger"
	"github.com/ShamanBV/shaman-assistant/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; built-in defaults apply when empty")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logger.SetLevel(zapcore.DebugLevel)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("read config %s: %v", *configPath, err)
		}
		cfg, err = config.LoadConfig(raw)
		if err != nil {
			log.Fatalf("load config %s: %v", *configPath, err)
		}
	}

	client, err := assistant.NewClient(cfg)
	if err != nil {
		log.Fatalf("create assistant client: %v", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Printf("close assistant client: %v", err)
		}
		_ = logger.Sync()
	}()

	if err := assistant.ServeStdio(client); err != nil {
		log.Fatalf("serve mcp: %v", err)
	}
}
