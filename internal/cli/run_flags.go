package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/borzacchiello/smtpipe"
)

// addRunFlags adds the flags of the run command. Flags left unset keep the value of the
// options file, or the defaults without one.
func addRunFlags() {
	defaults := smtpipe.DefaultOptions()

	// Prevent alphabetical sorting of usage message
	runCmd.Flags().SortFlags = false

	runCmd.Flags().String("options-file", "", "path to a JSON options file")
	runCmd.Flags().Bool("incremental", defaults.Incremental, "allow multiple check-sat, push and pop")
	runCmd.Flags().Bool("produce-models", defaults.ProduceModels, "allow get-model and get-value")
	runCmd.Flags().Bool("print-success", defaults.PrintSuccess, "answer success to every command that has no other output")
	runCmd.Flags().String("output-language", string(defaults.OutputLanguage),
		fmt.Sprintf("language terms are printed in, %q or %q", smtpipe.LANG_SMT2, smtpipe.LANG_INFIX))
	runCmd.Flags().Bool("check-models", defaults.CheckModels, "validate every sat model against the assertions")
	runCmd.Flags().Bool("global-declarations", defaults.GlobalDeclarations, "keep declarations across pop")
	runCmd.Flags().Bool("echo-commands", false, "print every command before invoking it")
}

// updateOptionsWithRunFlags applies the flags that were set on the command line.
func updateOptionsWithRunFlags(cmd *cobra.Command, opts *smtpipe.Options) error {
	boolFlags := []struct {
		name   string
		target *bool
	}{
		{"incremental", &opts.Incremental},
		{"produce-models", &opts.ProduceModels},
		{"print-success", &opts.PrintSuccess},
		{"check-models", &opts.CheckModels},
		{"global-declarations", &opts.GlobalDeclarations},
	}
	for _, f := range boolFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetBool(f.name)
		if err != nil {
			return err
		}
		*f.target = v
	}

	if cmd.Flags().Changed("output-language") {
		v, err := cmd.Flags().GetString("output-language")
		if err != nil {
			return err
		}
		opts.OutputLanguage, err = smtpipe.ParseOutputLanguage(v)
		if err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("verbosity") {
		v, err := cmd.Flags().GetInt("verbosity")
		if err != nil {
			return err
		}
		opts.Verbosity = v
	}
	return opts.Validate()
}
