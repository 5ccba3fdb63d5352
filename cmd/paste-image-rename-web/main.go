package main

import (
	"flag"
	"log"

	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/config"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/web"
)

var (
	version = "dev" // set by ldflags during build
)

func main() {
	addr := flag.String("addr", "localhost:8080", "HTTP server address")
	cfgFile := flag.String("config", "", "config file path")
	flag.Parse()

	var settings *config.Settings
	if *cfgFile != "" {
		loaded, err := config.LoadFromFile(*cfgFile)
		if err != nil {
			log.Fatal(err)
		}
		if err := loaded.Validate(); err != nil {
			log.Fatal(err)
		}
		settings = loaded
	}

	server := web.NewServer(settings)
	server.SetVersion(version)

	if err := server.Start(*addr); err != nil {
		log.Fatal(err)
	}
}
