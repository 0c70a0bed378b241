package config

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"mealhow"`
	Password string `env:"PASSWORD" envDefault:"mealhow"`
	Name     string `env:"NAME"     envDefault:"mealhow"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production

	// RunMigrationsOnStart applies embedded migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS" envDefault:"true"`

	// SeedDemoData inserts demo meals on startup. Only honored in dev mode.
	SeedDemoData bool `env:"SEED_DEMO_DATA" envDefault:"false"`
}

// RedisConfig contains Redis configuration. Redis backs the publish sink the
// generation workers subscribe to.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
