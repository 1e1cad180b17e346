// Command intake recorre un formulario de intake paso a paso desde la terminal
// y lo envía al endpoint del sitio.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "intake",
		Short: "Fill and submit mediation intake forms",
		Long: `intake walks one of the site's intake forms step by step,
validating each step the same way the web wizard does, and submits the
answers to /api/submit-service-request.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.AddCommand(newFormsCmd())
	root.AddCommand(newSubmitCmd())
	return root
}

const defaultTimeout = 10 * time.Second
