package main

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Spritan/climetlab"
	"github.com/Spritan/climetlab/availability"
	"github.com/Spritan/climetlab/fieldset"
	"github.com/Spritan/climetlab/sources"
)

func newAvailabilityCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Build, show and query availability resources",
	}
	cmd.AddCommand(newAvailabilityBuildCommand(a), newAvailabilityShowCommand(a), newAvailabilityCheckCommand(a))
	return cmd
}

func newAvailabilityBuildCommand(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "build RECORDS",
		Short: "Index a records file and save its availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := a.loadRecords(cmd, args[0])
			if err != nil {
				return err
			}
			av, err := fs.Availability()
			if err != nil {
				return err
			}
			if out == "" {
				out = defaultAvailabilityPath(a, args[0])
			}
			if out, err = abs(out); err != nil {
				return err
			}
			if err := av.Save(a.fs, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", av, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (.json, .yaml)")
	return cmd
}

func defaultAvailabilityPath(a *app, records string) string {
	var dir string
	if a.settings != nil {
		dir = a.settings.AvailabilityDir
	}
	return sources.AvailabilityPath(dir, records)
}

func newAvailabilityShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show AVAILABILITY",
		Short: "Print the keys and unique values of an availability resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			av, err := a.loadAvailability(args[0])
			if err != nil {
				return err
			}
			unique := av.UniqueValues()
			ordered := make([]map[string]any, 0, len(unique))
			for _, k := range av.Keys() {
				ordered = append(ordered, map[string]any{"key": k, "values": unique[k]})
			}
			data, err := json.MarshalIndent(map[string]any{
				"records":    av.Len(),
				"dimensions": av.Dimensions(),
				"keys":       ordered,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newAvailabilityCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check AVAILABILITY KEY=VALUE[,VALUE...]...",
		Short: "Check a request against an availability resource",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			av, err := a.loadAvailability(args[0])
			if err != nil {
				return err
			}
			req, err := parseRequest(args[1:])
			if err != nil {
				return err
			}
			if err := av.Check(req); err != nil {
				if iss, ok := climetlab.AsIssues(err); ok {
					for _, it := range iss {
						fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s %s\n", it.Code, it.Key, it.Message, it.Hint)
					}
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

// parseRequest turns key=v1,v2 arguments into kwargs. Values are read as YAML
// scalars, so 500 is a number and "500" a string.
func parseRequest(pairs []string) (map[string]any, error) {
	req := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			it := climetlab.IssueKV("", climetlab.CodeParseError, "arg", p)
			it.Hint = "expected KEY=VALUE[,VALUE...]"
			return nil, climetlab.Issues{it}
		}
		var vals []any
		for _, s := range strings.Split(v, ",") {
			var x any
			if err := yaml.Unmarshal([]byte(s), &x); err != nil || x == nil {
				x = s
			}
			vals = append(vals, x)
		}
		if len(vals) == 1 {
			req[k] = vals[0]
		} else {
			req[k] = vals
		}
	}
	return req, nil
}

func (a *app) loadAvailability(p string) (*availability.Availability, error) {
	p, err := abs(p)
	if err != nil {
		return nil, err
	}
	return availability.Load(a.fs, p)
}

func (a *app) loadRecords(cmd *cobra.Command, p string) (*fieldset.FieldSet, error) {
	p, err := abs(p)
	if err != nil {
		return nil, err
	}
	return a.registry.LoadSource(a.context(cmd.Context()), "file", map[string]any{"path": p})
}
