package config

import (
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/catalogue-service/pkg/kafka"
	"github.com/Astemirdum/catalogue-service/pkg/logger"
	"github.com/Astemirdum/catalogue-service/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"CATALOGUE_HTTP_HOST"`
	Port         string        `yaml:"port" envconfig:"CATALOGUE_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"15s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
	BodyLimit    string        `yaml:"bodyLimit" envconfig:"HTTP_BODY_LIMIT" default:"10M"`
}

type Image struct {
	Dir string `yaml:"dir" envconfig:"IMAGE_DIR" default:"public/image"`
	// Naming is "title" (name derived from the book title) or "id".
	Naming    string `yaml:"naming" envconfig:"IMAGE_NAMING" default:"title"`
	MaxWidth  int    `yaml:"maxWidth" envconfig:"IMAGE_MAX_WIDTH" default:"1200"`
	MaxHeight int    `yaml:"maxHeight" envconfig:"IMAGE_MAX_HEIGHT" default:"1200"`
	Quality   int    `yaml:"quality" envconfig:"IMAGE_JPEG_QUALITY" default:"85"`
}

type Auth struct {
	// JWTSecret enables bearer authentication of write routes when set.
	JWTSecret string `yaml:"jwtSecret" envconfig:"AUTH_JWT_SECRET"`
}

// Config.Storage is "postgres" (when empty) or "memory".
type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Storage  string       `yaml:"storage" envconfig:"STORAGE"`
	Database postgres.DB  `yaml:"db"`
	Image    Image        `yaml:"image"`
	Kafka    kafka.Config `yaml:"kafka"`
	Auth     Auth         `yaml:"auth"`
	Log      logger.Log   `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
	})

	return cfg
}
