// Command shortforged runs the shortforge daemon using the default
// configuration search path.
package main

import (
	"context"
	"flag"
	"log"

	"shortforge/internal/config"
	"shortforge/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		log.Fatalf("daemon: %v", err)
	}
}
