package smtpipe

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// OutputLanguage selects the notation used to print terms and responses.
type OutputLanguage string

const (
	LANG_SMT2  OutputLanguage = "smt2"
	LANG_INFIX OutputLanguage = "infix"
)

// ParseOutputLanguage accepts the usual aliases of the SMT-LIB v2 language name.
func ParseOutputLanguage(s string) (OutputLanguage, error) {
	switch strings.ToLower(s) {
	case "smt2", "smtlib2", "smt2.6", "smtlib2.6", "smtlib", "smt":
		return LANG_SMT2, nil
	case "infix", "ast":
		return LANG_INFIX, nil
	}
	return "", fmt.Errorf("unknown output language %q", s)
}

// ErrUnsupportedOption is returned for option names the engine does not know.
var ErrUnsupportedOption = errors.New("unsupported option")

// Options configures an Engine. Every field maps to an SMT-LIB option named in Set.
type Options struct {
	Incremental             bool           `json:"incremental"`
	ProduceModels           bool           `json:"produceModels"`
	PrintSuccess            bool           `json:"printSuccess"`
	OutputLanguage          OutputLanguage `json:"outputLanguage"`
	CheckModels             bool           `json:"checkModels"`
	GlobalDeclarations      bool           `json:"globalDeclarations"`
	Verbosity               int            `json:"verbosity"`
	RandomSeed              int            `json:"randomSeed"`
	RegularOutputChannel    string         `json:"regularOutputChannel"`
	DiagnosticOutputChannel string         `json:"diagnosticOutputChannel"`
}

func DefaultOptions() Options {
	return Options{
		OutputLanguage:          LANG_SMT2,
		Verbosity:               0,
		RegularOutputChannel:    "stdout",
		DiagnosticOutputChannel: "stderr",
	}
}

// ReadOptionsFromFile reads a JSON options file on top of the defaults.
func ReadOptionsFromFile(path string) (Options, error) {
	opts := DefaultOptions()
	b, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.Wrapf(err, "could not read options file %s", path)
	}
	if err := json.Unmarshal(b, &opts); err != nil {
		return opts, errors.Wrapf(err, "could not parse options file %s", path)
	}
	return opts, opts.Validate()
}

// WriteToFile stores the options as indented JSON.
func (o Options) WriteToFile(path string) error {
	b, err := json.MarshalIndent(o, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (o Options) Validate() error {
	if _, err := ParseOutputLanguage(string(o.OutputLanguage)); err != nil {
		return err
	}
	if o.Verbosity < 0 || o.Verbosity > 5 {
		return fmt.Errorf("verbosity must be between 0 and 5, got %d", o.Verbosity)
	}
	return nil
}

func parseBoolOption(name, value string) (bool, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("option %s expects true or false, got %s", name, value)
}

func parseIntOption(name, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("option %s expects a numeral, got %s", name, value)
	}
	return v, nil
}

// normalizeOptionName strips the leading colon of an SMT-LIB keyword.
func normalizeOptionName(name string) string {
	return strings.TrimPrefix(name, ":")
}

// Set updates the option name (with or without the leading colon) from its textual value.
func (o *Options) Set(name, value string) error {
	var err error
	switch normalizeOptionName(name) {
	case "incremental":
		o.Incremental, err = parseBoolOption(name, value)
	case "produce-models":
		o.ProduceModels, err = parseBoolOption(name, value)
	case "print-success":
		o.PrintSuccess, err = parseBoolOption(name, value)
	case "check-models":
		o.CheckModels, err = parseBoolOption(name, value)
	case "global-declarations":
		o.GlobalDeclarations, err = parseBoolOption(name, value)
	case "output-language":
		o.OutputLanguage, err = ParseOutputLanguage(value)
	case "verbosity":
		var v int
		v, err = parseIntOption(name, value)
		if err == nil && (v < 0 || v > 5) {
			err = fmt.Errorf("verbosity must be between 0 and 5, got %d", v)
		}
		if err == nil {
			o.Verbosity = v
		}
	case "random-seed":
		o.RandomSeed, err = parseIntOption(name, value)
	case "regular-output-channel":
		o.RegularOutputChannel = value
	case "diagnostic-output-channel":
		o.DiagnosticOutputChannel = value
	default:
		return ErrUnsupportedOption
	}
	return err
}

// Get returns the SMT-LIB rendering of an option value.
func (o *Options) Get(name string) (string, error) {
	switch normalizeOptionName(name) {
	case "incremental":
		return strconv.FormatBool(o.Incremental), nil
	case "produce-models":
		return strconv.FormatBool(o.ProduceModels), nil
	case "print-success":
		return strconv.FormatBool(o.PrintSuccess), nil
	case "check-models":
		return strconv.FormatBool(o.CheckModels), nil
	case "global-declarations":
		return strconv.FormatBool(o.GlobalDeclarations), nil
	case "output-language":
		return string(o.OutputLanguage), nil
	case "verbosity":
		return strconv.Itoa(o.Verbosity), nil
	case "random-seed":
		return strconv.Itoa(o.RandomSeed), nil
	case "regular-output-channel":
		return QuoteString(o.RegularOutputChannel), nil
	case "diagnostic-output-channel":
		return QuoteString(o.DiagnosticOutputChannel), nil
	}
	return "", ErrUnsupportedOption
}
