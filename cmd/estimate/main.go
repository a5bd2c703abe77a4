// Command estimate loads the artifacts once and prints estimates without
// starting the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"homeprice/artifact"
	"homeprice/config"
	"homeprice/logging"
	"homeprice/predict"
)

// sampleRequests run when no location is given.
var sampleRequests = []predict.Request{
	{Location: "1st Phase JP Nagar", Sqft: 1000, BHK: 3, Bath: 3},
	{Location: "1st Phase JP Nagar", Sqft: 1000, BHK: 2, Bath: 2},
	{Location: "Kalhalli", Sqft: 1000, BHK: 2, Bath: 2},
	{Location: "Ejipura", Sqft: 1000, BHK: 2, Bath: 2},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 on success, 1 when any estimate
// failed, 2 on bad flags or setup errors.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("estimate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		configPath = flags.String("config", "config.yaml", "path to the YAML config file")
		list       = flags.Bool("list", false, "print the known locations and exit")
		columns    = flags.Bool("columns", false, "print the model's input columns and exit")
		location   = flags.String("location", "", "location name")
		sqft       = flags.Float64("sqft", 0, "total area in square feet")
		bhk        = flags.Int("bhk", 2, "bedrooms")
		bath       = flags.Int("bath", 2, "bathrooms")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, _, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
		return 2
	}
	cfg.Log.File = ""
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to build logger: %v\n", err)
		return 2
	}
	defer logger.Sync()

	loader := artifact.NewLoader(artifact.Options{
		ColumnsPath:            cfg.Artifacts.ColumnsPath(),
		ModelPath:              cfg.Artifacts.ModelPath(),
		FallbackOnCorruptModel: cfg.Artifacts.FallbackOnCorruptModel,
	}, logger)
	snapshot, err := loader.Load()
	if err != nil {
		logger.Warn("artifacts incomplete", zap.Error(err))
	}
	estimator, err := predict.NewEstimator(loader, 0, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to build estimator: %v\n", err)
		return 2
	}

	out := json.NewEncoder(stdout)
	switch {
	case *list:
		out.Encode(map[string][]string{"locations": estimator.Locations()})
		return 0
	case *columns:
		out.Encode(map[string]interface{}{
			"data_columns": snapshot.Schema.Columns(),
			"model_type":   snapshot.ModelType,
		})
		return 0
	}

	requests := sampleRequests
	if *location != "" || *sqft != 0 {
		requests = []predict.Request{{Location: *location, Sqft: *sqft, BHK: *bhk, Bath: *bath}}
	}

	exit := 0
	for _, req := range requests {
		result, err := estimator.Estimate(context.Background(), req)
		if err != nil {
			var verr *predict.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintf(stderr, "%s: %s\n", req.Location, verr.Message)
			} else {
				fmt.Fprintf(stderr, "%s: %v\n", req.Location, err)
			}
			exit = 1
			continue
		}
		out.Encode(map[string]interface{}{
			"location":        req.Location,
			"total_sqft":      req.Sqft,
			"bhk":             req.BHK,
			"bath":            req.Bath,
			"estimated_price": result.Price,
			"path":            result.Path,
		})
	}
	return exit
}
