package cli

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type (
	migrationsSection struct {
		LocalFolder string `yaml:"local_folder"`
		DatabaseURL string `yaml:"database_url"`
		Table       string `yaml:"table"`
	}

	configFile struct {
		Version    string            `yaml:"version"`
		Migrations migrationsSection `yaml:"migrations"`
	}
)

func createConfigFromYaml(path string) (Config, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "could not read configuration file")
	}

	var cfgFile configFile
	if err := yaml.Unmarshal(b, &cfgFile); err != nil {
		return cfg, errors.Wrap(err, "could not parse configuration file")
	}

	cfg.DatabaseURL = expandEnvPlaceholder(cfgFile.Migrations.DatabaseURL)
	cfg.MigrationsFolder = expandEnvPlaceholder(cfgFile.Migrations.LocalFolder)
	cfg.MigrationsTable = expandEnvPlaceholder(cfgFile.Migrations.Table)

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("database url was not defined")
	}

	return cfg, nil
}

// expandEnvPlaceholder resolves values of the form %%VAR_NAME%% from
// the environment; anything else passes through verbatim.
func expandEnvPlaceholder(value string) string {
	if strings.HasPrefix(value, "%%") && strings.HasSuffix(value, "%%") {
		return os.Getenv(strings.ReplaceAll(value, "%%", ""))
	}

	return value
}
