package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/frontierdb/frontier/pkg/flog"
	"gopkg.in/yaml.v2"
)

type Cluster struct {
	Host string `json:"host" toml:"host" yaml:"host"`
	Port int    `json:"port" toml:"port" yaml:"port"`
	SSL  bool   `json:"ssl" toml:"ssl" yaml:"ssl"`
}

type Codegen struct {
	Host string `json:"host" toml:"host" yaml:"host"`
	Port int    `json:"port" toml:"port" yaml:"port"`
}

type Frontend struct {
	LogLevel string `json:"log_level" toml:"log_level" yaml:"log_level"`
	HTTPAddr string `json:"http_addr" toml:"http_addr" yaml:"http_addr"`

	VersionFile string `json:"version_file" toml:"version_file" yaml:"version_file"`
	BranchFile  string `json:"branch_file" toml:"branch_file" yaml:"branch_file"`

	Cluster Cluster `json:"cluster" toml:"cluster" yaml:"cluster"`
	Codegen Codegen `json:"codegen" toml:"codegen" yaml:"codegen"`
}

var cfgFrontend = Defaults()

func Defaults() Frontend {
	return Frontend{
		LogLevel:    "info",
		HTTPAddr:    ":8753",
		VersionFile: "VERSION",
		BranchFile:  "BRANCH",
		Cluster: Cluster{
			Host: "localhost",
			Port: 1776,
		},
		Codegen: Codegen{
			Host: "localhost",
			Port: 1337,
		},
	}
}

// LoadFrontendCfg reads the config file at cfgPath, decoding by file
// extension: .toml via BurntSushi, anything else as YAML.
func LoadFrontendCfg(cfgPath string) error {
	file, err := os.Open(cfgPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			flog.Zero.Warn().Err(err).Msg("failed to close config file")
		}
	}()

	cfgFrontend = Defaults()
	if filepath.Ext(cfgPath) == ".toml" {
		if _, err := toml.NewDecoder(file).Decode(&cfgFrontend); err != nil {
			return err
		}
	} else {
		if err := yaml.NewDecoder(file).Decode(&cfgFrontend); err != nil {
			return err
		}
	}

	configBytes, err := json.MarshalIndent(cfgFrontend, "", "  ")
	if err != nil {
		return err
	}

	flog.Zero.Info().Msgf("running config: %s", string(configBytes))
	return nil
}

func FrontendConfig() *Frontend {
	return &cfgFrontend
}
