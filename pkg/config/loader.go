package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/kkyr/fig"
)

const (
	EnvPrefix = "SCREENKIT"
	FileName  = "config.yaml"

	emptyFile = "defaults.json"
)

// Load reads the configuration file with env overrides.
// The path param is a custom config file or a directory with config.yaml.
// Without a path it looks into the current dir, configs and ~/.screenkit
// and falls back to the defaults with env values if there is no file.
// Env params have the prefix SCREENKIT_ and the path of a param
// in uppercase separated with _, e.g. SCREENKIT_RECORDER_FPS.
func Load(path string) (conf Config, err error) {
	if path != "" {
		err = fig.Load(&conf, fileOptions(path)...)
	} else {
		err = fig.Load(&conf, fig.File(FileName), fig.Dirs(searchDirs()...), fig.UseEnv(EnvPrefix))
		if errors.Is(err, fig.ErrFileNotFound) {
			conf = Config{}
			err = LoadEnv(&conf)
		}
	}
	if err != nil {
		return conf, err
	}
	if err = conf.expandSpecialTags(); err != nil {
		return conf, err
	}
	return conf, conf.Validate()
}

// LoadEnv fills the config with defaults and env values only.
func LoadEnv(conf *Config) error {
	// fig always decodes a file, an empty object leaves defaults and env
	dir, err := os.MkdirTemp("", "screenkit-config")
	if err != nil {
		return err
	}
	defer func() { _ = os.RemoveAll(dir) }()
	if err = os.WriteFile(filepath.Join(dir, emptyFile), []byte("{}"), 0600); err != nil {
		return err
	}
	return fig.Load(conf, fig.File(emptyFile), fig.Dirs(dir), fig.UseEnv(EnvPrefix))
}

func fileOptions(path string) []fig.Option {
	file, dir := FileName, path
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" || ext == ".json" || ext == ".toml" {
		file, dir = filepath.Base(path), filepath.Dir(path)
	}
	return []fig.Option{fig.File(file), fig.Dirs(dir), fig.UseEnv(EnvPrefix)}
}

// File returns the full path of the config file, empty if not found.
func File(path string) string {
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return filepath.Join(path, FileName)
		}
		return path
	}
	for _, dir := range searchDirs() {
		p := filepath.Join(dir, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func searchDirs() []string {
	dirs := []string{".", "configs"}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".screenkit"))
	}
	return dirs
}
