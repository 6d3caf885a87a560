// Command catalogcheck verifies that every document in the configured catalog
// has a file in the documents directory.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	coreconfig "github.com/m3rciful/pqbot/core/config"
	"github.com/m3rciful/pqbot/internal/app"
	"github.com/m3rciful/pqbot/internal/catalog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the bot config")
	docsDir := flag.String("docs", "", "documents directory (overrides catalog.documents_dir)")
	flag.Parse()

	if err := run(*configPath, *docsDir); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, docsDir string) error {
	// the token is not needed here, so only the catalog section is decoded
	var cfg app.Config
	if err := coreconfig.Decode(configPath, &cfg); err != nil {
		return err
	}
	if docsDir != "" {
		cfg.Catalog.DocumentsDir = docsDir
	}
	if cfg.Catalog.DocumentsDir == "" {
		cfg.Catalog.DocumentsDir = "."
	}

	cat, err := app.LoadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	statuses := cat.CheckFiles(cfg.Catalog.DocumentsDir)
	cyan.Printf("Checking %d documents in %s\n", len(statuses), cfg.Catalog.DocumentsDir)
	for i, st := range statuses {
		if st.OK() {
			green.Print("  OK      ")
		} else {
			red.Print("  MISSING ")
		}
		fmt.Printf("%d. %s - %s\n", i+1, st.Document.Filename, st.Document.Description)
	}

	if missing := catalog.Missing(statuses); missing > 0 {
		return fmt.Errorf("%d of %d documents missing", missing, len(statuses))
	}
	green.Println("All documents present")
	return nil
}
