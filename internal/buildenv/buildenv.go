// SPDX-License-Identifier: MPL-2.0

// Package buildenv exposes the CI environment: the process environment, with
// an optional dotenv file filling in variables the process does not set.
// The file is read once and never written back into the process environment.
package buildenv

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrEnvFileNotFound is returned when a configured dotenv file does not exist.
var ErrEnvFileNotFound = errors.New("env file not found")

// Env resolves variables from the process and an optional dotenv file.
type Env struct {
	lookup func(string) (string, bool)
	file   map[string]string
}

// Load creates an Env over the process environment. An empty envFile means
// no file.
func Load(envFile string) (*Env, error) {
	return load(envFile, os.LookupEnv)
}

func load(envFile string, lookup func(string) (string, bool)) (*Env, error) {
	env := &Env{lookup: lookup, file: map[string]string{}}
	if envFile == "" {
		return env, nil
	}

	values, err := godotenv.Read(envFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrEnvFileNotFound, envFile)
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}
	slog.Debug("loaded env file", "path", envFile, "variables", len(values))
	env.file = values
	return env, nil
}

// Lookup returns the value of key. Blank values count as unset, so a blank
// process variable falls through to the file.
func (e *Env) Lookup(key string) (string, bool) {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	if v, ok := e.file[key]; ok && strings.TrimSpace(v) != "" {
		return v, true
	}
	return "", false
}
