package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/jgreitemann/svm/api"
	"github.com/jgreitemann/svm/logger"
	"github.com/jgreitemann/svm/registry"
	"github.com/jgreitemann/svm/worker"
)

type Config struct {
	RestAPIActive bool   `envconfig:"SVM_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"SVM_REST_API_PORT" default:"10000"`
	RegistryDB    int    `envconfig:"SVM_REDIS_DB" default:"0"`
}

func main() {
	logger.SetupLogging()
	mainLogger := logger.NewLogger("Main")
	fatalErrLogger := mainLogger.Fatal().Caller()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	if config.RestAPIActive {
		reg, err := registry.NewClient(registry.DB(config.RegistryDB))
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not create registry client for REST API")
			os.Exit(1)
		}
		go func() {
			mainLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Models: api.RegistrySource{Registry: reg},
			}
			http.HandleFunc("/predict", apiRequest.Predict)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			mainLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			mainLogger.Fatal().Caller().Err(err).Msg("REST API stopped with error")
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mainLogger.Info().Msg("Start SVM training worker")
	for ctx.Err() == nil {
		rmqWorker, err := worker.New()
		if err != nil {
			mainLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		if err := rmqWorker.Run(ctx); err != nil {
			mainLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
	mainLogger.Info().Msg("Worker stopped")
}
