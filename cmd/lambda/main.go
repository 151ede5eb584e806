package main

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"firehoseproc/internal/config"
	"firehoseproc/internal/engine"
	"firehoseproc/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("FIREHOSE_CONFIG"))
	if err != nil {
		logging.L().Error("config", "err", err)
		os.Exit(1)
	}
	logging.Configure(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})

	h, closer, err := engine.BuildHandler(cfg, logging.L())
	if err != nil {
		logging.L().Error("bootstrap", "err", err)
		os.Exit(1)
	}
	defer closer.Close()

	lambda.Start(h)
}
