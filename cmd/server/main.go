// Command server exposes the report-generation workflow over HTTP.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/earningscope/engine/pkg/api/report"
	"github.com/earningscope/engine/pkg/core/bootstrap"
	"github.com/earningscope/engine/pkg/core/logx"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	findataURL := flag.String("findata-url", "http://localhost:8090", "base URL of the financial data service")
	embedURL := flag.String("embed-url", "http://localhost:8091", "base URL of the embedding service")
	resourcesDir := flag.String("resources", "config", "directory holding prompts/ and schemas/")
	industrySeed := flag.String("industry-seed", "config/industries.yaml", "industry profile seed file")
	modelsConfig := flag.String("models-config", "config/models.yaml", "path to the provider-selection config")
	flag.Parse()

	godotenv.Load()

	deps, err := bootstrap.BuildDeps(bootstrap.Config{
		ResourcesDir:     *resourcesDir,
		IndustrySeedPath: *industrySeed,
		ModelsConfigPath: *modelsConfig,
		FinDataURL:       *findataURL,
		EmbedURL:         *embedURL,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "server: failed to build report dependencies: %v\n", err)
		os.Exit(1)
	}
	engine := bootstrap.BuildEngine(deps)

	report.InitHandler(engine)
	http.HandleFunc("/api/report/generate", report.HandleGenerate)
	http.HandleFunc("/api/report/", report.HandleGet)

	logx.Infof("server", "listening on %s", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		logx.Errorf("server", "%v", err)
		os.Exit(1)
	}
}
