package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"mediation-cms/internal/intake"
	"mediation-cms/internal/platform/httpclient"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type submitOptions struct {
	form    string
	answers string
	server  string
	dryRun  bool
	timeout time.Duration
}

func newSubmitCmd() *cobra.Command {
	var opts submitOptions

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate an answers file step by step and submit it",
		Example: `  intake submit --form mediation --answers answers.yaml --server http://localhost:8080
  intake submit --form facilitation --answers answers.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSubmit(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.form, "form", "", "Form name (see `intake forms`)")
	cmd.Flags().StringVar(&opts.answers, "answers", "", "YAML file with field answers")
	cmd.Flags().StringVar(&opts.server, "server", "http://localhost:8080", "Site base URL")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate every step and print the payload without sending it")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "HTTP timeout")
	_ = cmd.MarkFlagRequired("form")
	_ = cmd.MarkFlagRequired("answers")

	return cmd
}

func runSubmit(cmd *cobra.Command, opts submitOptions) error {
	out := cmd.OutOrStdout()

	form, ok := intake.Lookup(opts.form)
	if !ok {
		return fmt.Errorf("unknown form %q", opts.form)
	}

	answers, err := loadAnswers(opts.answers)
	if err != nil {
		return err
	}

	var sub intake.Submitter
	if !opts.dryRun {
		client, err := httpclient.New(opts.server, opts.timeout)
		if err != nil {
			return err
		}
		sub = intake.NewHTTPSubmitter(client)
	}

	w := intake.NewWizard(form, sub)
	for {
		idx, last := w.Step(), w.IsFinalStep()
		step := w.CurrentStep()
		for _, f := range step.Fields {
			if v, ok := answers[f.Name]; ok {
				if err := w.Set(f.Name, v); err != nil {
					return err
				}
			}
		}

		if !w.GoNext() {
			printErrors(out, w)
			return fmt.Errorf("step %d (%s) is invalid", idx+1, step.Title)
		}
		fmt.Fprintf(out, "✓ step %d/%d: %s\n", idx+1, w.TotalSteps(), step.Title)

		if last {
			break
		}
	}

	if opts.dryRun {
		payload := map[string]any{"serviceType": form.ServiceType, "formData": w.Values()}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	if err := w.Submit(cmd.Context()); err != nil {
		if errors.Is(err, intake.ErrStepInvalid) {
			printErrors(out, w)
		}
		return fmt.Errorf("submit failed: %w", err)
	}

	fmt.Fprintf(out, "%s\nsubmission id: %s\n", w.Message(), w.SubmissionID())
	return nil
}

// loadAnswers lee un YAML plano campo => valor. Bools y números se pasan a texto.
func loadAnswers(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse answers: %w", err)
	}

	out := make(map[string]string, len(doc))
	for k, v := range doc {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case bool:
			if t {
				out[k] = "Yes"
			} else {
				out[k] = "No"
			}
		case int:
			out[k] = strconv.Itoa(t)
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("answer %q must be a scalar", k)
		}
	}
	return out, nil
}

func printErrors(out io.Writer, w *intake.Wizard) {
	errs := w.Errors()
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		marker := " "
		if name == w.Focus() {
			marker = ">"
		}
		fmt.Fprintf(out, "%s %s: %s\n", marker, name, errs[name])
	}
}
