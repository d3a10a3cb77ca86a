package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Peer     Peer     `yaml:"peer"`
	Kafka    Kafka    `yaml:"kafka"`
	Redis    Redis    `yaml:"redis"`
	Identity Identity `yaml:"-"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME,ATATUS_APP_NAME"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"PORT,HTTP_PORT"`
	// StrictStatus reports peer and publish failures with non-200 codes.
	StrictStatus bool `yaml:"strict_status" env:"HTTP_STRICT_STATUS" env-default:"false"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Peer struct {
	URL     string        `yaml:"url" env:"PEER_URL"`
	Timeout time.Duration `yaml:"timeout" env:"PEER_TIMEOUT" env-default:"10s"`
}

type Kafka struct {
	Brokers     []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic       string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"JPT"`
	GroupID     string   `yaml:"group_id" env:"KAFKA_GROUP_ID"`
	StartOffset string   `yaml:"start_offset" env:"KAFKA_START_OFFSET" env-default:"earliest"`
}

// Redis is optional. An empty Addr disables idempotent publishing.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Identity is fixed per binary and never read from the environment.
type Identity struct {
	Key         string // "service1", used in dataType labels
	Sender      string // envelope "from" label
	PeerName    string // display name of the peer in call results
	IncludeUUID bool
}

// Defaults carries the per-service values applied when neither the
// config file nor the environment sets them.
type Defaults struct {
	Identity   Identity
	Name       string
	Port       string
	PeerURL    string
	PeerURLEnv string // legacy peer URL variable, e.g. SERVICE2_URL
	GroupID    string
}

var Service1 = Defaults{
	Identity: Identity{
		Key:      "service1",
		Sender:   "Service1",
		PeerName: "Service 2",
	},
	Name:       "Service 1",
	Port:       "3501",
	PeerURL:    "http://localhost:3502",
	PeerURLEnv: "SERVICE2_URL",
	GroupID:    "service1-group",
}

var Service2 = Defaults{
	Identity: Identity{
		Key:         "service2",
		Sender:      "Service2",
		PeerName:    "Service 1",
		IncludeUUID: true,
	},
	Name:       "Service 2",
	Port:       "3502",
	PeerURL:    "http://localhost:3501",
	PeerURLEnv: "SERVICE_1_URL",
	GroupID:    "service2-group",
}

func New(d Defaults) (*Config, error) {
	cfg := &Config{}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		// ReadConfig lets env vars override the file
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cfg.applyDefaults(d)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults(d Defaults) {
	c.Identity = d.Identity

	if c.App.Name == "" {
		c.App.Name = d.Name
	}
	if c.HTTP.Port == "" {
		c.HTTP.Port = d.Port
	}
	if c.Peer.URL == "" && d.PeerURLEnv != "" {
		c.Peer.URL = os.Getenv(d.PeerURLEnv)
	}
	if c.Peer.URL == "" {
		c.Peer.URL = d.PeerURL
	}
	c.Peer.URL = strings.TrimRight(c.Peer.URL, "/")
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = d.GroupID
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Peer.URL)
	if err != nil {
		return fmt.Errorf("peer url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("peer url %q: must be absolute", c.Peer.URL)
	}
	if c.Peer.Timeout < 0 {
		return errors.New("peer timeout must not be negative")
	}
	if c.HTTP.Port == "" {
		return errors.New("http port is empty")
	}
	if c.Kafka.Topic == "" {
		return errors.New("kafka topic is empty")
	}
	switch strings.ToLower(c.Kafka.StartOffset) {
	case "earliest", "latest":
	default:
		return fmt.Errorf("kafka start offset %q: want earliest or latest", c.Kafka.StartOffset)
	}
	return nil
}

// DataURL is the peer endpoint queried by /call.
func (c *Config) DataURL() string {
	return c.Peer.URL + "/data"
}
