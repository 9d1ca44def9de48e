package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/monitor"
)

// monitorInfo is the serialized form of a monitor for list output.
type monitorInfo struct {
	Index       int    `json:"index" yaml:"index"`
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Protocol    string `json:"protocol" yaml:"protocol"`
	Brightness  uint16 `json:"brightness" yaml:"brightness"`
	Max         uint16 `json:"max" yaml:"max"`
	TypicalMax  uint16 `json:"typical_max" yaml:"typical_max"`
	ExtendedMax uint16 `json:"extended_max" yaml:"extended_max"`
}

func describe(ms []*monitor.Monitor) []monitorInfo {
	out := make([]monitorInfo, 0, len(ms))
	for i, m := range ms {
		out = append(out, monitorInfo{
			Index:       i,
			ID:          m.ID(),
			Description: m.Describe(),
			Protocol:    string(m.Protocol()),
			Brightness:  m.Brightness(),
			Max:         m.MaxValue(),
			TypicalMax:  m.TypicalMax(),
			ExtendedMax: m.ExtendedMax(),
		})
	}
	return out
}

func newListCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List monitors that support brightness control",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), output, describe(reg.Monitors()))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, yaml or json")
	return cmd
}

func render(w io.Writer, format string, infos []monitorInfo) error {
	switch strings.ToLower(format) {
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tID\tPROTOCOL\tBRIGHTNESS\tMAX\tDESCRIPTION")
		for _, m := range infos {
			// Through the first hyphen, so the prefix never reads as an index.
			id := m.ID
			if len(id) > 13 {
				id = id[:13]
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d/%d\t%s\n", m.Index, id, m.Protocol, m.Brightness, m.TypicalMax, m.ExtendedMax, m.Description)
		}
		return tw.Flush()
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	default:
		return errors.Errorf(errors.ErrInvalidArg, "list", "unknown output format %q", format)
	}
}
