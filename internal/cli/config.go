package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config mirrors the run command's flags for file-based configuration.
// Keys match the flag names. Values apply only where the corresponding
// flag was not set on the command line, so flags always win; zero values
// are treated as unset.
type Config struct {
	Nodes      int     `yaml:"nodes"`
	Planner    string  `yaml:"planner"`
	Threshold  float64 `yaml:"threshold"`
	Gold       string  `yaml:"gold"`
	GoldHeader bool    `yaml:"gold-header"`
	MaxWorkers int     `yaml:"max-workers"`
	Rate       float64 `yaml:"rate"`
	RunID      string  `yaml:"run-id"`

	Store       string `yaml:"store"`
	Dir         string `yaml:"dir"`
	S3Bucket    string `yaml:"s3-bucket"`
	S3Prefix    string `yaml:"s3-prefix"`
	LedgerTable string `yaml:"ledger-table"`
	LedgerScope string `yaml:"ledger-scope"`

	MinioEndpoint  string `yaml:"minio-endpoint"`
	MinioAccessKey string `yaml:"minio-access-key"`
	MinioSecretKey string `yaml:"minio-secret-key"`
	MinioBucket    string `yaml:"minio-bucket"`
	MinioSecure    bool   `yaml:"minio-secure"`

	Compression string `yaml:"compression"`
	Codec       string `yaml:"codec"`
}

// LoadConfig reads a YAML config file. Unknown keys are an error, so
// typos in config files surface instead of being silently ignored.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// apply copies config values into opts for every flag the user did not set
// explicitly.
func (c *Config) apply(cmd *cobra.Command, opts *RunOptions) {
	changed := cmd.Flags().Changed

	applyInt(changed("nodes"), c.Nodes, &opts.Nodes)
	applyString(changed("planner"), c.Planner, &opts.Planner)
	applyFloat(changed("threshold"), c.Threshold, &opts.Threshold)
	applyString(changed("gold"), c.Gold, &opts.Gold)
	applyBool(changed("gold-header"), c.GoldHeader, &opts.GoldHeader)
	applyInt(changed("max-workers"), c.MaxWorkers, &opts.MaxWorkers)
	applyFloat(changed("rate"), c.Rate, &opts.Rate)
	applyString(changed("run-id"), c.RunID, &opts.RunID)

	applyString(changed("store"), c.Store, &opts.Store)
	applyString(changed("dir"), c.Dir, &opts.Dir)
	applyString(changed("s3-bucket"), c.S3Bucket, &opts.S3Bucket)
	applyString(changed("s3-prefix"), c.S3Prefix, &opts.S3Prefix)
	applyString(changed("ledger-table"), c.LedgerTable, &opts.LedgerTable)
	applyString(changed("ledger-scope"), c.LedgerScope, &opts.LedgerScope)

	applyString(changed("minio-endpoint"), c.MinioEndpoint, &opts.MinioEndpoint)
	applyString(changed("minio-access-key"), c.MinioAccessKey, &opts.MinioAccessKey)
	applyString(changed("minio-secret-key"), c.MinioSecretKey, &opts.MinioSecretKey)
	applyString(changed("minio-bucket"), c.MinioBucket, &opts.MinioBucket)
	applyBool(changed("minio-secure"), c.MinioSecure, &opts.MinioSecure)

	applyString(changed("compression"), c.Compression, &opts.Compression)
	applyString(changed("codec"), c.Codec, &opts.Codec)
}

func applyString(changed bool, value string, target *string) {
	if !changed && value != "" {
		*target = value
	}
}

func applyInt(changed bool, value int, target *int) {
	if !changed && value != 0 {
		*target = value
	}
}

func applyFloat(changed bool, value float64, target *float64) {
	if !changed && value != 0 {
		*target = value
	}
}

func applyBool(changed bool, value bool, target *bool) {
	if !changed && value {
		*target = value
	}
}
