package main

import (
	"os"

	"github.com/spf13/cobra"

	"regportal-go/cmd/serve"
	"regportal-go/cmd/token"
	"regportal-go/cmd/validate"
)

func main() {
	root := &cobra.Command{
		Use:   "regportal",
		Short: "Regulatory return submission portal",
		Long: `Regulatory return submission portal.

Banks upload periodic returns as spreadsheets; each upload is validated against
the column schema of its return type and then approved or rejected by the
regulator.`,
		SilenceUsage: true,
	}
	root.AddCommand(serve.NewServeCommand())
	root.AddCommand(validate.NewValidateCommand())
	root.AddCommand(token.NewTokenCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
