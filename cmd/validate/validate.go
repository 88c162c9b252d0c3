package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"

	"regportal-go/ingest"
	"regportal-go/schema"
)

const typeFlag = "type"

var validateFlags = map[string]cobraflags.Flag{
	typeFlag: &cobraflags.StringFlag{
		Name:  typeFlag,
		Value: "",
		Usage: "Return type (" + strings.Join(schema.Names(), ", ") + ")",
	},
}

func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate --type <return-type> <file>...",
		Short: "Validate spreadsheets offline and print the outcome as JSON",
		Long: `Run the structural validator over local files without storing anything.

The output has the same shape as the validation block of an upload response.
The command exits non-zero when any file has errors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: validateCommand,
	}
	cobraflags.RegisterMap(cmd, validateFlags)
	return cmd
}

func validateCommand(cmd *cobra.Command, args []string) error {
	rt := schema.ReturnType(validateFlags[typeFlag].GetString())
	if !schema.IsKnown(rt) {
		return fmt.Errorf("--type must be one of %s", strings.Join(schema.Names(), ", "))
	}

	v := ingest.NewValidator(ingest.DefaultLimits())
	outcomes := make([]ingest.FileOutcome, 0, len(args))
	for _, path := range args {
		outcomes = append(outcomes, ingest.FileOutcome{
			FileName:   filepath.Base(path),
			Validation: validatePath(cmd, v, path, rt),
		})
	}
	summary := ingest.Aggregate(outcomes)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return err
	}
	if !summary.AllValid {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d error(s) in %d file(s)", summary.TotalErrors, len(args))
	}
	return nil
}

func validatePath(cmd *cobra.Command, v *ingest.Validator, path string, rt schema.ReturnType) ingest.Outcome {
	f, err := os.Open(path)
	if err != nil {
		return ingest.FailedOutcome(err)
	}
	defer f.Close()
	return v.ValidateFile(cmd.Context(), filepath.Base(path), f, rt)
}
