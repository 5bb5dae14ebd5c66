// pkg/config/types.go
package config

// Config is the application configuration, assembled from defaults, an
// optional YAML config file, and command-line flags.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Engine  EngineConfig  `koanf:"engine"`
	Recipes RecipesConfig `koanf:"recipes"`
}

// LogConfig controls global logging.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// EngineConfig controls the module scheduler.
type EngineConfig struct {
	// MaxConcurrentModules caps the module executions in flight at once.
	// Zero means unbounded.
	MaxConcurrentModules int `koanf:"max_concurrent_modules"`
}

// RecipesConfig controls recipe discovery.
type RecipesConfig struct {
	// Directories are searched, in order, for .json/.yaml recipe files.
	// Later directories shadow earlier ones on name collisions.
	Directories []string `koanf:"directories"`
}
