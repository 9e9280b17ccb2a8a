package conf

import (
	"github.com/caarlos0/env/v6"
)

type App struct {
	PrometheusBind string `env:"PROMETHEUS_BIND" envDefault:":2112"`

	// PostgresDSN is a DSN for the postgres with catalogs and draw records.
	PostgresDSN string `env:"POSTGRES_DSN,required"`

	// Exitnode is a name of the current node.
	Exitnode string `env:"EXITNODE" envDefault:"local-laptop"`

	// Rules is a JSON array of rule descriptors to run.
	Rules string `env:"RULES" envDefault:"[]"`

	// RandomSeed for the urn randomness source. 0 means seed from time.
	RandomSeed int64 `env:"RANDOM_SEED"`

	// UseCopyRecorder switches draw persistence from per-row gorm saves to
	// batched pgx COPY.
	UseCopyRecorder bool `env:"USE_COPY_RECORDER"`

	// CopyFlushSize is the batch size for the copy recorder.
	CopyFlushSize int `env:"COPY_FLUSH_SIZE" envDefault:"256"`

	DebugDB bool `env:"DEBUG_DB"`
}

func ParseEnv() (*App, error) {
	cfg := App{}
	err := env.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
