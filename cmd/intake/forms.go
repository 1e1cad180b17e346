package main

import (
	"fmt"
	"strings"

	"mediation-cms/internal/intake"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newFormsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List the available intake forms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			forms := intake.Forms()
			out := cmd.OutOrStdout()

			switch strings.ToLower(output) {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(forms)
			case "", "text":
				for _, f := range forms {
					fmt.Fprintf(out, "%s (%s)\n", f.Name, f.ServiceType)
					for i, s := range f.Steps {
						names := make([]string, 0, len(s.Fields))
						for _, fld := range s.Fields {
							names = append(names, fld.Name)
						}
						fmt.Fprintf(out, "  %d. %s: %s\n", i+1, s.Title, strings.Join(names, ", "))
					}
				}
				return nil
			default:
				return fmt.Errorf("unknown output %q (text|yaml)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text|yaml")
	return cmd
}
