package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/3bit-techs/vvpctl/pkg/client/vvp"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"sigs.k8s.io/yaml"
)

// ErrInvalidOutputFormat is returned for an unknown -o value.
var ErrInvalidOutputFormat = errors.New("invalid output format")

// OutputFormat selects how resources are printed.
type OutputFormat string

const (
	// OutputTable prints one row per deployment.
	OutputTable OutputFormat = "table"
	// OutputYAML prints YAML documents.
	OutputYAML OutputFormat = "yaml"
	// OutputJSON prints indented JSON.
	OutputJSON OutputFormat = "json"
)

// Set implements pflag.Value.
func (o *OutputFormat) Set(value string) error {
	for _, format := range []OutputFormat{OutputTable, OutputYAML, OutputJSON} {
		if strings.EqualFold(value, string(format)) {
			*o = format

			return nil
		}
	}

	return fmt.Errorf("%w: %q (valid: table, yaml, json)", ErrInvalidOutputFormat, value)
}

// String implements pflag.Value.
func (o *OutputFormat) String() string {
	return string(*o)
}

// Type implements pflag.Value.
func (o *OutputFormat) Type() string {
	return "format"
}

func printYAML(out io.Writer, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func printJSON(out io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}

	_, err = fmt.Fprintln(out, string(data))
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func printTable(out io.Writer, resources []*vvp.Resource) error {
	table := tablewriter.NewTable(out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
	)
	table.Header("Namespace", "Name", "Desired", "Status", "Version")

	for _, resource := range resources {
		err := table.Append(
			resource.Namespace,
			resource.Name,
			resource.DesiredState,
			resource.StatusState,
			strconv.FormatInt(resource.ResourceVersion, 10),
		)
		if err != nil {
			return fmt.Errorf("failed to add table row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}
