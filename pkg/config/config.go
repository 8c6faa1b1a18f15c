// Package config resolves workspace paths and engine settings from
// defaults, an optional config file, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	jsoniter "github.com/json-iterator/go"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvWorkspace   = "LOCALSYNAPSE_WORKSPACE"
	EnvSparkRemote = "SPARK_REMOTE"
)

const DefaultWorkspace = "/workspace"

type Config struct {
	// Workspace is the root every relative path below is resolved against.
	Workspace string `yaml:"workspace" toml:"workspace" json:"workspace"`
	DataDir   string `yaml:"data_dir" toml:"data_dir" json:"data_dir"`
	OutDir    string `yaml:"out_dir" toml:"out_dir" json:"out_dir"`
	Ledger    string `yaml:"ledger" toml:"ledger" json:"ledger"`

	DuckDB struct {
		DSN    string `yaml:"dsn" toml:"dsn" json:"dsn"`
		SQLDir string `yaml:"sql_dir" toml:"sql_dir" json:"sql_dir"`
	} `yaml:"duckdb" toml:"duckdb" json:"duckdb"`

	Spark struct {
		Remote string `yaml:"remote" toml:"remote" json:"remote"`
		SQLDir string `yaml:"sql_dir" toml:"sql_dir" json:"sql_dir"`
	} `yaml:"spark" toml:"spark" json:"spark"`

	PreviewRows int `yaml:"preview_rows" toml:"preview_rows" json:"preview_rows"`
	ChunkSize   int `yaml:"chunk_size" toml:"chunk_size" json:"chunk_size"`
}

func Default() Config {
	var c Config
	c.Workspace = DefaultWorkspace
	c.DataDir = "data"
	c.OutDir = "outputs"
	c.Ledger = filepath.Join("outputs", "runs.sqlite")
	c.DuckDB.DSN = ":memory:"
	c.DuckDB.SQLDir = filepath.Join("duckdb", "sql")
	c.Spark.Remote = "sc://localhost:15002"
	c.Spark.SQLDir = filepath.Join("spark", "sql")
	c.PreviewRows = 20
	c.ChunkSize = 4096
	return c
}

// Load starts from Default, applies the file at path (if any) and then the
// environment. envFile is loaded into the process environment first when it
// exists; existing variables win.
func Load(path, envFile string) (Config, error) {
	c := Default()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return c, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := decode(path, b, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if v := os.Getenv(EnvWorkspace); v != "" {
		c.Workspace = v
	}
	if v := os.Getenv(EnvSparkRemote); v != "" {
		c.Spark.Remote = v
	}
	return c, c.Validate()
}

func decode(path string, b []byte, c *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, c)
	case ".toml":
		return toml.Unmarshal(b, c)
	case ".json":
		return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(b, c)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

func (c Config) Validate() error {
	if c.Workspace == "" {
		return errors.New("workspace must not be empty")
	}
	if c.PreviewRows < 0 || c.ChunkSize < 0 {
		return errors.New("preview_rows and chunk_size must not be negative")
	}
	return nil
}

// resolve anchors p at the workspace unless it is absolute.
func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Workspace, p)
}

func (c Config) Data() string         { return c.resolve(c.DataDir) }
func (c Config) Outputs() string      { return c.resolve(c.OutDir) }
func (c Config) LedgerPath() string   { return c.resolve(c.Ledger) }
func (c Config) DuckDBSQLDir() string { return c.resolve(c.DuckDB.SQLDir) }
func (c Config) SparkSQLDir() string  { return c.resolve(c.Spark.SQLDir) }

func (c Config) ProductsCSV() string {
	return filepath.Join(c.Data(), "product_data", "products.csv")
}

func (c Config) ParquetDir() string {
	return filepath.Join(c.Data(), "parquet", "orders")
}
