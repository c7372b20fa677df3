// Command titresim runs a scenario file through the titre models and
// prints the predicted titres.
//
// Flags can also be set through TITRESIM_* environment variables, e.g.
// TITRESIM_SCENARIO=cohort.yaml.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lucasmaystre/titrekick/logging"
	"github.com/lucasmaystre/titrekick/report"
	"github.com/lucasmaystre/titrekick/scenario"
)

type options struct {
	Scenario string
	Model    string
	Plot     string
}

func loadOptions(args []string) (options, error) {
	fs := pflag.NewFlagSet("titresim", pflag.ContinueOnError)
	fs.String("scenario", "", "path to the YAML scenario file")
	fs.String("model", "", "override the scenario's model (base, strain_dependent, titre_dependent, fast)")
	fs.String("plot", "", "write a titre chart to this file (.png, .svg, .pdf)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("titresim")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return options{}, fmt.Errorf("bind flags: %w", err)
	}
	opts := options{
		Scenario: v.GetString("scenario"),
		Model:    v.GetString("model"),
		Plot:     v.GetString("plot"),
	}
	if opts.Scenario == "" {
		return options{}, errors.New("no scenario given (--scenario or TITRESIM_SCENARIO)")
	}
	return opts, nil
}

func run(opts options, stdout io.Writer, log logr.Logger) error {
	sc, err := scenario.Load(opts.Scenario)
	if err != nil {
		return err
	}
	if opts.Model != "" {
		sc.Model = opts.Model
		if err := sc.Validate(); err != nil {
			return err
		}
	}
	log.V(1).Info("Loaded scenario", "path", opts.Scenario, "model", sc.Model, "individuals", len(sc.Individuals))

	res, err := scenario.Run(sc, log)
	if err != nil {
		return err
	}
	if err := report.WriteTable(stdout, res); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	if opts.Plot != "" {
		if err := report.Plot(res, opts.Plot); err != nil {
			return err
		}
		log.Info("Saved plot", "path", opts.Plot)
	}
	return nil
}

func main() {
	cfg, err := logging.ConfigFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	opts, err := loadOptions(os.Args[1:])
	if err != nil {
		log.Error(err, "Invalid options")
		os.Exit(2)
	}
	if err := run(opts, os.Stdout, log); err != nil {
		log.Error(err, "Simulation failed")
		os.Exit(1)
	}
}
