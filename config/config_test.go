package config

import (
	// Go Internal Packages
	"testing"

	// External Packages
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/require"
)

func loadDefaults(t *testing.T) Config {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()))

	conf := Config{}
	require.NoError(t, k.Unmarshal("", &conf))
	return conf
}

func validConfig(t *testing.T) Config {
	conf := loadDefaults(t)
	conf.Gateway.PrivateKey = "key"
	return conf
}

func TestDefaultConfigLoads(t *testing.T) {
	conf := loadDefaults(t)

	require.Equal(t, "nmi-gateway", conf.Application)
	require.Equal(t, "https://secure.nmi.com/api/transact.php", conf.Gateway.APIURL)
	require.Equal(t, "sale", conf.Gateway.TransactionMode)
	require.Equal(t, "decline", conf.Gateway.ThreeDS.FailureAction)
	require.True(t, conf.Gateway.TestMode)
	require.Equal(t, "order-status-events", conf.Kafka.Topic)
	require.Equal(t, 500, conf.Kafka.RecordsPerPoll)
	require.Equal(t, "nmi-fulfillment", conf.Kafka.ConsumerName)
}

func TestValidate(t *testing.T) {
	t.Run("defaults plus a private key are valid", func(t *testing.T) {
		conf := validConfig(t)
		require.NoError(t, conf.Validate())
	})

	t.Run("private key is mandatory", func(t *testing.T) {
		conf := loadDefaults(t)
		err := conf.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "gateway.private_key")
	})

	t.Run("transaction mode", func(t *testing.T) {
		conf := validConfig(t)
		conf.Gateway.TransactionMode = "capture"
		err := conf.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "gateway.transaction_mode")

		conf.Gateway.TransactionMode = "auth"
		require.NoError(t, conf.Validate())
	})

	t.Run("failure action", func(t *testing.T) {
		conf := validConfig(t)
		conf.Gateway.ThreeDS.FailureAction = "retry"
		err := conf.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "gateway.threeds.failure_action")

		for _, action := range []string{"decline", "continue_without_3ds", "continue_with_warning"} {
			conf.Gateway.ThreeDS.FailureAction = action
			require.NoError(t, conf.Validate(), action)
		}
	})

	t.Run("restricted card types must be known brands", func(t *testing.T) {
		conf := validConfig(t)
		conf.Gateway.RestrictedCardTypes = []string{"visa", "maestro"}
		err := conf.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "unknown card type: maestro")

		conf.Gateway.RestrictedCardTypes = []string{"visa", "amex"}
		require.NoError(t, conf.Validate())
	})

	t.Run("infrastructure endpoints", func(t *testing.T) {
		conf := validConfig(t)
		conf.Mongo.URI = ""
		conf.Redis.URI = ""
		conf.Kafka.Brokers = nil
		conf.Kafka.Topic = ""

		err := conf.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "mongo.uri")
		require.Contains(t, err.Error(), "redis.uri")
		require.Contains(t, err.Error(), "kafka.brokers")
		require.Contains(t, err.Error(), "kafka.topic")
	})
}

func TestConfigOverride(t *testing.T) {
	k := koanf.New(".")
	require.NoError(t, k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()))

	override := []byte(`
gateway:
  private_key: "live-key"
  test_mode: false
  transaction_mode: "auth"
`)
	require.NoError(t, k.Load(rawbytes.Provider(override), yaml.Parser()))

	conf := Config{}
	require.NoError(t, k.Unmarshal("", &conf))

	require.Equal(t, "live-key", conf.Gateway.PrivateKey)
	require.False(t, conf.Gateway.TestMode)
	require.Equal(t, "auth", conf.Gateway.TransactionMode)
	// Untouched defaults survive the overlay.
	require.Equal(t, "https://secure.nmi.com/api/transact.php", conf.Gateway.APIURL)
	require.NoError(t, conf.Validate())
}
