package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alexandremahdhaoui/gentask/pkg/project"
)

// listUnits prints every declared unit with its lang, inputs and outputs.
func listUnits(w io.Writer, configPath string) error {
	config, err := project.ReadConfigFromPath(configPath)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLANG\tINPUTS\tOUTPUTS")

	for _, unit := range config.BuildAll() {
		lang := unit.Lang()
		if lang == "" {
			lang = "-"
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			unit.Name(), lang, strings.Join(unit.Inputs(), ","), strings.Join(unit.Outputs(), ","))
	}

	return tw.Flush()
}
