// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config determines the process-wide configuration of the SPA server
once at startup: the root directory of the SPA build output, the entry
document inside it, and the port to listen on.

The port is taken from the PORT environment variable, which might also be set
in a "dotenv" file; variables from the process environment take precedence. An
absent or invalid PORT silently results in DefaultPort.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	// DefaultPort is used when there's no (valid) PORT.
	DefaultPort = 8080
	// DefaultRoot is the directory the SPA build output is served from.
	DefaultRoot = "build/web"
	// DefaultIndex is the name of the entry document inside the root.
	DefaultIndex = "index.html"
	// DefaultDotEnv is the environment file consulted, if present.
	DefaultDotEnv = ".env"
	// PortEnv names the environment variable specifying the port.
	PortEnv = "PORT"
)

// Config is the immutable configuration of an SPA server. Pass it by value.
type Config struct {
	root  string
	index string
	port  int
}

// Flags are the configuration settings explicitly given on the command line.
// Empty Root and Index mean "not set"; Port only counts when PortSet, so that
// an explicit port 0 gets rejected instead of ignored.
type Flags struct {
	Root    string
	Index   string
	Port    int
	PortSet bool
}

// LookupFunc looks up an environment variable, with the same semantics as
// os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load returns the configuration based on explicit flags, the process
// environment as seen by lookup, and the optional dotenv file. A missing
// dotenv file is fine, while a garbled one isn't.
func Load(flags Flags, lookup LookupFunc, dotenv string) (Config, error) {
	env, err := environment(lookup, dotenv)
	if err != nil {
		return Config{}, err
	}
	c := Config{
		root:  DefaultRoot,
		index: DefaultIndex,
		port:  DefaultPort,
	}
	if flags.Root != "" {
		c.root = flags.Root
	}
	if flags.Index != "" {
		c.index = flags.Index
	}
	if port, ok := ParsePort(env(PortEnv)); ok {
		c.port = port
	}
	if flags.PortSet {
		if !validPort(flags.Port) {
			return Config{}, errors.Errorf("invalid port %d", flags.Port)
		}
		c.port = flags.Port
	}
	return c, nil
}

// environment returns a getter for environment variables, consulting first
// lookup and then the contents of the dotenv file.
func environment(lookup LookupFunc, dotenv string) (func(string) string, error) {
	var fileEnv map[string]string
	if dotenv != "" {
		var err error
		fileEnv, err = godotenv.Read(dotenv)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "unable to load environment file (%s)", dotenv)
		}
	}
	return func(key string) string {
		if lookup != nil {
			if value, ok := lookup(key); ok {
				return value
			}
		}
		return fileEnv[key]
	}, nil
}

// ParsePort parses a port number, returning false if it isn't a valid TCP
// port number.
func ParsePort(s string) (int, bool) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !validPort(port) {
		return 0, false
	}
	return port, true
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}

// Root returns the root directory containing the SPA build output.
func (c Config) Root() string { return c.root }

// Index returns the slash-separated name of the entry document, relative to
// the root.
func (c Config) Index() string { return c.index }

// Port returns the TCP port to listen on.
func (c Config) Port() int { return c.port }

// Addr returns the listening address on all interfaces.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.port) }

// EntryDocument returns the OS path of the entry document. It always lives
// inside the root.
func (c Config) EntryDocument() string {
	return filepath.Join(c.root, filepath.FromSlash(c.index))
}
