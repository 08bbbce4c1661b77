package smtpipe

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestOptionsSetGet(t *testing.T) {
	opts := DefaultOptions()

	if err := opts.Set(":incremental", "true"); isErr(t, err) {
		return
	}
	if v, _ := opts.Get(":incremental"); v != "true" {
		t.Errorf("unexpected %s", v)
	}
	if err := opts.Set("produce-models", "yes"); err == nil {
		t.Error("booleans only accept true and false")
	}
	if err := opts.Set(":verbosity", "9"); err == nil {
		t.Error("verbosity out of range should fail")
	}
	if err := opts.Set(":output-language", "smtlib2.6"); isErr(t, err) {
		return
	}
	if opts.OutputLanguage != LANG_SMT2 {
		t.Errorf("unexpected %s", opts.OutputLanguage)
	}
	if v, _ := opts.Get(":regular-output-channel"); v != "\"stdout\"" {
		t.Errorf("unexpected %s", v)
	}
	if err := opts.Set(":no-such-option", "1"); !errors.Is(err, ErrUnsupportedOption) {
		t.Errorf("unexpected %v", err)
	}
	if _, err := opts.Get(":no-such-option"); !errors.Is(err, ErrUnsupportedOption) {
		t.Errorf("unexpected %v", err)
	}
}

func TestOptionsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")

	opts := DefaultOptions()
	opts.Incremental = true
	opts.OutputLanguage = LANG_INFIX
	opts.Verbosity = 2
	if err := opts.WriteToFile(path); isErr(t, err) {
		return
	}

	read, err := ReadOptionsFromFile(path)
	if isErr(t, err) {
		return
	}
	if read != opts {
		t.Errorf("unexpected options %+v", read)
	}

	if _, err := ReadOptionsFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("reading a missing file should fail")
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	opts.OutputLanguage = "latex"
	if err := opts.Validate(); err == nil {
		t.Error("unknown output languages should be rejected")
	}
}
