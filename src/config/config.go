// Package config resolves process configuration from flags, environment
// variables, a dotenv file, and an optional YAML space list.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultSpace = "evalstate/FLUX.1-schnell"

// Config is the resolved process configuration.
type Config struct {
	// WorkDir is the artifact working directory.
	WorkDir string
	// Token is the opaque bearer token forwarded to Spaces.
	Token string
	// DesktopMode relaxes artifact persistence failures and swaps inline
	// audio blobs for file references.
	DesktopMode bool
	// ShowVersion requests printing the version and exiting.
	ShowVersion bool
	// Spaces are the endpoint paths to expose, owner/space[/endpoint].
	Spaces []string
}

// spacesFile is the YAML shape of an on-disk space list.
type spacesFile struct {
	Spaces []string `yaml:"spaces"`
}

// Load parses args (excluding the program name) into a Config. A .env file
// in the working directory is honored before the environment is read;
// flags override environment values.
func Load(args []string, errOut io.Writer) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		WorkDir:     envOr("MCP_HF_WORK_DIR", ""),
		Token:       os.Getenv("HF_TOKEN"),
		DesktopMode: envBool("CLAUDE_DESKTOP_MODE", true),
	}
	if cfg.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		cfg.WorkDir = wd
	}

	fs := flag.NewFlagSet("mcp-hfspace", flag.ContinueOnError)
	fs.SetOutput(errOut)
	workDir := fs.String("work-dir", cfg.WorkDir, "working directory for downloaded artifacts")
	token := fs.String("hf-token", cfg.Token, "Hugging Face token forwarded to Spaces")
	desktop := fs.Bool("desktop-mode", cfg.DesktopMode, "desktop client mode (file references instead of inline audio)")
	spacesPath := fs.String("spaces-file", "", "YAML file listing spaces to expose")
	version := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.WorkDir = *workDir
	cfg.Token = *token
	cfg.DesktopMode = *desktop
	cfg.ShowVersion = *version
	cfg.Spaces = append(cfg.Spaces, fs.Args()...)

	if *spacesPath != "" {
		fromFile, err := loadSpacesFile(*spacesPath)
		if err != nil {
			return nil, err
		}
		cfg.Spaces = append(cfg.Spaces, fromFile...)
	}
	if len(cfg.Spaces) == 0 {
		cfg.Spaces = []string{defaultSpace}
	}
	return cfg, nil
}

func loadSpacesFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spaces file: %w", err)
	}
	var f spacesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spaces file %s: %w", path, err)
	}
	return f.Spaces, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
