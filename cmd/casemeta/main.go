// Command casemeta registers an FMU case: it writes the case-level
// metadata document to <casepath>/share/metadata/fmu_case.yml.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ErichSuter/fmu-dataio/pkg/dataio"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("casemeta", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  string
		casePath    string
		caseName    string
		user        string
		description string
	)
	fs.StringVar(&configPath, "config", "", "path to the global configuration yaml (defaults to $"+fmuresults.GlobalConfigEnv+")")
	fs.StringVar(&casePath, "casepath", "", "case root directory (required)")
	fs.StringVar(&caseName, "name", "", "case name (defaults to the casepath basename)")
	fs.StringVar(&user, "user", "", "user registering the case (defaults to the current user)")
	fs.StringVar(&description, "description", "", "free-form case description")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if casePath == "" {
		fmt.Fprintln(stderr, "casemeta: -casepath is required")
		fs.Usage()
		return 2
	}

	cfg, err := fmuresults.LoadGlobalConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "casemeta: %v\n", err)
		return 1
	}

	create := &dataio.CreateCaseMetadata{
		Config:   cfg,
		CasePath: casePath,
		CaseName: caseName,
		User:     user,
	}
	if description != "" {
		create.Description = []string{description}
	}
	marker, err := create.Run()
	if err != nil {
		fmt.Fprintf(stderr, "casemeta: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, marker)
	return 0
}
