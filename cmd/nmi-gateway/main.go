package main

import (
	// Go Internal Packages
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	// Local Packages
	config "nmi-gateway/config"
	gateway "nmi-gateway/gateway"
	kafka "nmi-gateway/kafka"
	nmi "nmi-gateway/nmi"
	mongodb "nmi-gateway/repositories/mongodb"
	redis "nmi-gateway/repositories/redis"
	fulfillment "nmi-gateway/services/fulfillment"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

// LoadConfig loads the default configuration and overrides it with the config file
// specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	configPathMsg := "Path to the application config file"
	configPath := kingpin.Flag("config", configPathMsg).Short('c').Default("config.yml").String()

	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Validate the config loaded
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo Connection
	mongoClient, err := mongodb.Connect(ctx, appKonf.Mongo.URI)
	if err != nil {
		logger.Fatal("cannot create mongo client", zap.Error(err))
	}

	// Redis Connection
	redisClient, err := redis.Connect(ctx, appKonf.Redis.URI, appKonf.Redis.Password)
	if err != nil {
		logger.Fatal("cannot create redis client", zap.Error(err))
	}

	// Processor client and orchestrator, constructed once and injected
	// everywhere; nothing resolves them through globals.
	creds := nmi.Credentials{
		PublicKey:  appKonf.Gateway.PublicKey,
		PrivateKey: appKonf.Gateway.PrivateKey,
		TestMode:   appKonf.Gateway.TestMode,
	}
	client := nmi.NewClient(creds, appKonf.Gateway.APIURL, logger)

	settings := gateway.Settings{
		TransactionMode:     appKonf.Gateway.TransactionMode,
		SendReceipts:        appKonf.Gateway.SendReceipts,
		RestrictedCardTypes: appKonf.Gateway.RestrictedCardTypes,
		Descriptor: nmi.Descriptor{
			Enabled: appKonf.Gateway.Descriptor.Enabled,
			Text:    appKonf.Gateway.Descriptor.Text,
			Phone:   appKonf.Gateway.Descriptor.Phone,
		},
	}

	orderRepo := mongodb.NewOrderRepository(mongoClient)
	captureGuard := redis.NewCaptureGuard(redisClient, logger)
	deadLetters := redis.NewDeadLetters(redisClient, logger)

	orchestrator := gateway.NewOrchestrator(client, settings, orderRepo, logger)
	trigger := fulfillment.NewTrigger(logger, orchestrator, orderRepo, captureGuard, deadLetters)

	metrics := kprom.NewMetrics("nmi")
	conf := &kafka.ConsumerConfig{
		Brokers:        appKonf.Kafka.Brokers,
		Name:           appKonf.Kafka.ConsumerName,
		Topic:          appKonf.Kafka.Topic,
		RecordsPerPoll: appKonf.Kafka.RecordsPerPoll,
	}

	orderConsumer, err := kafka.NewOrderConsumer(conf, trigger, metrics, logger)
	if err != nil {
		logger.Fatal("cannot create order events consumer", zap.Error(err))
	}

	logger.Info("fulfillment consumer starting",
		zap.String("topic", appKonf.Kafka.Topic),
		zap.Bool("test_mode", appKonf.Gateway.TestMode),
		zap.String("transaction_mode", appKonf.Gateway.TransactionMode),
	)

	err = orderConsumer.Poll(ctx)
	if err != nil {
		logger.Fatal("cannot poll records from topic", zap.Error(err))
	}
}
