package main

import (
	"context"
	"os"

	"gsmarena-scraper/cmd/gsmarena/commands"
	"gsmarena-scraper/lib/telemetry"
)

func main() {
	ctx := context.Background()

	// OTLP export is optional for batch runs
	tel, err := telemetry.SetupFromEnv(ctx, "gsmarena-scraper")
	if err == nil {
		defer tel.Shutdown(ctx)
		telemetry.InstrumentPerfStats(ctx)
	} else if !os.IsNotExist(err) {
		panic(err)
	}

	commands.ExecuteContext(ctx)
}
