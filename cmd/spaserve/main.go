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

// spaserve serves a single page application from its build output directory,
// answering all client-side routes with the entry document.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	spaserve "github.com/ISCODEVUTB/PublicTransitAgency"
	"github.com/ISCODEVUTB/PublicTransitAgency/internal/config"
	"github.com/ISCODEVUTB/PublicTransitAgency/internal/server"
)

// rootMain is the entry point for the root command.
func rootMain(command *cobra.Command, _ []string) error {
	cfg, err := configuration(os.LookupEnv)
	if err != nil {
		return err
	}
	log, err := newLogger(rootConfiguration.debug)
	if err != nil {
		return errors.Wrap(err, "unable to create logger")
	}
	defer func() { _ = log.Sync() }()
	return server.New(cfg, log, handlerOptions()...).ListenAndServe()
}

// rootCommand is the root command.
var rootCommand = &cobra.Command{
	Use:           "spaserve",
	Short:         "Serve a single page application, falling back to its entry document",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// rootConfiguration stores configuration for the root command.
var rootConfiguration struct {
	// help indicates whether or not to show help information and exit.
	help bool
	// root is the directory containing the SPA build output.
	root string
	// index is the entry document inside root.
	index string
	// port overrides the PORT environment variable, if non-zero.
	port int
	// dotenv names the optional environment file.
	dotenv string
	// rewriteBase enables rewriting the entry document's base element.
	rewriteBase bool
	// debug enables development logging.
	debug bool
}

func init() {
	rootCommand.RunE = rootMain
	flags := rootCommand.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&rootConfiguration.help, "help", "h", false, "Show help information")
	flags.StringVarP(&rootConfiguration.root, "root", "r", config.DefaultRoot, "Directory containing the SPA build output")
	flags.StringVarP(&rootConfiguration.index, "index", "i", config.DefaultIndex, "Entry document, relative to the root directory")
	flags.IntVarP(&rootConfiguration.port, "port", "p", 0, "Port to listen on (overrides the PORT environment variable)")
	flags.StringVar(&rootConfiguration.dotenv, "env-file", config.DefaultDotEnv, "Optional environment file")
	flags.BoolVar(&rootConfiguration.rewriteBase, "rewrite-base", false, "Rewrite the entry document's <base href> using X-Forwarded-Prefix/X-Forwarded-Uri")
	flags.BoolVar(&rootConfiguration.debug, "debug", false, "Enable debug logging")
}

// configuration returns the server configuration from the command line flags
// and the environment.
func configuration(lookup config.LookupFunc) (config.Config, error) {
	return config.Load(config.Flags{
		Root:    rootConfiguration.root,
		Index:   rootConfiguration.index,
		Port:    rootConfiguration.port,
		PortSet: rootCommand.Flags().Changed("port"),
	}, lookup, rootConfiguration.dotenv)
}

// handlerOptions returns the SPA handler options enabled on the command line.
func handlerOptions() []spaserve.SPAHandlerOption {
	var opts []spaserve.SPAHandlerOption
	if rootConfiguration.rewriteBase {
		opts = append(opts, spaserve.WithBaseRewriting())
	}
	return opts
}

// newLogger returns a logger writing to stdout, in JSON unless debugging.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stdout"}
	return cfg.Build()
}

// fatal prints an error message to standard error and then terminates the
// process with an error exit code.
func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		fatal(err)
	}
}
