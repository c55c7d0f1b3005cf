package config

import (
	// Local Packages
	errors "nmi-gateway/errors"
	models "nmi-gateway/models"
)

var DefaultConfig = []byte(`
application: "nmi-gateway"

logger:
  level: "debug"

is_prod_mode: false

gateway:
  api_url: "https://secure.nmi.com/api/transact.php"
  public_key: ""
  private_key: ""
  test_mode: true
  transaction_mode: "sale"
  send_receipts: false
  restricted_card_types: []
  descriptor:
    enabled: false
    text: ""
    phone: ""
  threeds:
    enabled: false
    failure_action: "decline"

mongo:
  uri: "mongodb://localhost:27017"

redis:
  uri: "localhost:6379"
  password: ""

kafka:
  brokers:
    - "localhost:9092"
  topic: "order-status-events"
  records_per_poll: 500
  consumer_name: "nmi-fulfillment"
`)

type Config struct {
	Application string  `koanf:"application"`
	Logger      Logger  `koanf:"logger"`
	IsProdMode  bool    `koanf:"is_prod_mode"`
	Gateway     Gateway `koanf:"gateway"`
	Mongo       Mongo   `koanf:"mongo"`
	Redis       Redis   `koanf:"redis"`
	Kafka       Kafka   `koanf:"kafka"`
}

type Logger struct {
	Level string `koanf:"level"`
}

// Gateway is the merchant-level processor configuration, read once at
// construction. The private key is mandatory; nothing is sent without it.
type Gateway struct {
	APIURL              string     `koanf:"api_url"`
	PublicKey           string     `koanf:"public_key"`
	PrivateKey          string     `koanf:"private_key"`
	TestMode            bool       `koanf:"test_mode"`
	TransactionMode     string     `koanf:"transaction_mode"`
	SendReceipts        bool       `koanf:"send_receipts"`
	RestrictedCardTypes []string   `koanf:"restricted_card_types"`
	Descriptor          Descriptor `koanf:"descriptor"`
	ThreeDS             ThreeDS    `koanf:"threeds"`
}

type Descriptor struct {
	Enabled bool   `koanf:"enabled"`
	Text    string `koanf:"text"`
	Phone   string `koanf:"phone"`
}

type ThreeDS struct {
	Enabled       bool   `koanf:"enabled"`
	FailureAction string `koanf:"failure_action"`
}

type Mongo struct {
	URI string `koanf:"uri"`
}

type Redis struct {
	URI      string `koanf:"uri"`
	Password string `koanf:"password"`
}

type Kafka struct {
	Brokers        []string `koanf:"brokers"`
	Topic          string   `koanf:"topic"`
	RecordsPerPoll int      `koanf:"records_per_poll"`
	ConsumerName   string   `koanf:"consumer_name"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	ve := errors.ValidationErrs()

	if c.Application == "" {
		ve.Add("application", "cannot be empty")
	}
	if c.Logger.Level == "" {
		ve.Add("logger.level", "cannot be empty")
	}
	if c.Gateway.PrivateKey == "" {
		ve.Add("gateway.private_key", "cannot be empty")
	}
	if c.Gateway.APIURL == "" {
		ve.Add("gateway.api_url", "cannot be empty")
	}
	if m := c.Gateway.TransactionMode; m != models.TransactionModeSale && m != models.TransactionModeAuth {
		ve.Add("gateway.transaction_mode", "must be sale or auth")
	}
	switch c.Gateway.ThreeDS.FailureAction {
	case "decline", "continue_without_3ds", "continue_with_warning":
	default:
		ve.Add("gateway.threeds.failure_action", "must be decline, continue_without_3ds or continue_with_warning")
	}
	for _, brand := range c.Gateway.RestrictedCardTypes {
		if !models.KnownBrand(brand) {
			ve.Add("gateway.restricted_card_types", "unknown card type: "+brand)
		}
	}
	if c.Mongo.URI == "" {
		ve.Add("mongo.uri", "cannot be empty")
	}
	if c.Redis.URI == "" {
		ve.Add("redis.uri", "cannot be empty")
	}
	if len(c.Kafka.Brokers) == 0 {
		ve.Add("kafka.brokers", "cannot be empty")
	}
	if c.Kafka.Topic == "" {
		ve.Add("kafka.topic", "cannot be empty")
	}

	return ve.Err()
}
