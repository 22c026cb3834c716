package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/pypeline/errors"
	"github.com/kbukum/pypeline/logger"
)

// EnvConfigFile names the environment variable that points at a config file.
const EnvConfigFile = "PYPELINE_CONFIG"

// envPrefix is tried before the bare key when binding environment variables.
const envPrefix = "PYPELINE"

// FileSystem is what the loader needs from the host. Tests substitute it.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
	Getenv(key string) string
	UserConfigDir() (string, error)
}

// OSFileSystem is the real host.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

// LoadEnv loads a dotenv file without overriding variables already set.
func (OSFileSystem) LoadEnv(path string) error      { return godotenv.Load(path) }
func (OSFileSystem) Getenv(key string) string       { return os.Getenv(key) }
func (OSFileSystem) UserConfigDir() (string, error) { return os.UserConfigDir() }

// Resolver locates the config and dotenv files of a tool.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles holds the files found by a Resolver. Empty means none.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, or searches for them.
//
// Config files are looked up in order: $PYPELINE_CONFIG, ./<name>.yml,
// ./config.yml, ./config/config.yml, ./cmd/<name>/config.yml and finally
// <user config dir>/<name>/config.yml. Dotenv files: ./.env.<name>, ./.env.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(r.configCandidates(name))
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first([]string{".env." + name, ".env"})
	}
	return files
}

func (r *Resolver) configCandidates(name string) []string {
	var paths []string
	if p := r.FileSystem.Getenv(EnvConfigFile); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths,
		name+".yml",
		"config.yml",
		filepath.Join("config", "config.yml"),
		filepath.Join("cmd", name, "config.yml"),
	)
	if dir, err := r.FileSystem.UserConfigDir(); err == nil && dir != "" {
		paths = append(paths, filepath.Join(dir, name, "config.yml"))
	}
	return paths
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// LoaderConfig holds the loader's host and optional explicit files.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the host file system.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile loads path instead of searching. A missing file is not an error.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile loads the dotenv file at path instead of searching.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig fills cfg, a pointer to a struct with mapstructure tags, from
// the resolved config file and the environment. Every leaf key can be set
// through PYPELINE_<KEY>, where KEY is the dotted key upper-cased with dots
// replaced by underscores (engine.output_mode: PYPELINE_ENGINE_OUTPUT_MODE).
// Nested keys also accept the bare <KEY>.
// Dotenv variables are visible the same way; real environment variables win.
func LoadConfig(name string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(name, lc)
	log := logger.Get(logger.ComponentConfig)

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load dotenv file", logger.ErrorFields("load_env", err))
		}
	}

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Validation("cannot read config file " + files.ConfigFile).WithCause(err)
		}
		log.Debug("config loaded", logger.Fields(logger.FieldPath, files.ConfigFile))
	}

	for _, key := range Keys(cfg) {
		env := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		names := []string{envPrefix + "_" + env}
		if strings.Contains(key, ".") {
			names = append(names, env)
		}
		_ = v.BindEnv(append([]string{key}, names...)...)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return errors.Validation("cannot decode configuration for " + name).WithCause(err)
	}
	return nil
}

var durationType = reflect.TypeFor[time.Duration]()

// Keys lists the dotted mapstructure keys of every leaf field of cfg.
func Keys(cfg any) []string {
	t := reflect.TypeOf(cfg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return appendKeys(nil, t, "")
}

func appendKeys(keys []string, t reflect.Type, prefix string) []string {
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if tag == "-" {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Struct && ft != durationType {
			if strings.Contains(opts, "squash") {
				keys = appendKeys(keys, ft, prefix)
				continue
			}
		}
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := prefix + tag
		if ft.Kind() == reflect.Struct && ft != durationType {
			keys = appendKeys(keys, ft, key+".")
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
