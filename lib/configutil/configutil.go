package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// reads a configuration file, `name` should come with a file extension,
// it will automatically be lopped off to produce the other extensions.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// `out` holds the defaults, fields absent from both files keep their value.
func ReadConfigInto[T any](name string, out *T) error {
	allNotFound := true

	dirname := filepath.Dir(name)
	basename := filepath.Base(name)
	prefixname, ext := splitExt(basename)

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if len(defaultFile) > 0 {
		err = json5.Unmarshal(defaultFile, out)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		allNotFound = false
	}

	localFilepath := filepath.Join(
		dirname,
		fmt.Sprintf("%s.local.%s", prefixname, ext),
	)
	localFile, err := os.ReadFile(localFilepath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if len(localFile) > 0 {
		var override T
		err = json5.Unmarshal(localFile, &override)
		if err != nil {
			return fmt.Errorf("parse %s: %w", localFilepath, err)
		}
		err = mergo.Merge(out, override, mergo.WithOverride)
		if err != nil {
			return err
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
		allNotFound = false
	}

	if allNotFound {
		return os.ErrNotExist
	}
	return nil
}

// ReadRecursively is ReadConfigInto but it recursively goes up the filesystem
// until the root to find a configuration file matching the name. It returns the
// path of the file that was used.
func ReadRecursively[T any](name string, out *T) (string, error) {
	current, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(current, name)
		err := ReadConfigInto(path, out)
		if err == nil {
			return path, nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", os.ErrNotExist
		}
		current = parent
	}
}

// LoadDotenv loads the .env file in the working directory into the process
// environment when it exists. Variables already set are left untouched.
func LoadDotenv() error {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// OverrideBool replaces *target with the boolean value of the environment
// variable `name` when it is set.
func OverrideBool(name string, target *bool) error {
	raw, ok := os.LookupEnv(name)
	if !ok || raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("env %s: %w", name, err)
	}
	*target = value
	return nil
}

// OverrideString replaces *target with the environment variable `name` when
// it is set.
func OverrideString(name string, target *string) {
	raw, ok := os.LookupEnv(name)
	if ok && raw != "" {
		*target = raw
	}
}
