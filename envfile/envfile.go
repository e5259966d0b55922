// Copyright (c) 2025 BVK Chaitanya

// Package envfile loads KEY=VALUE files into the process environment.
package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

type options struct {
	variableNamePrefix string

	overwriteIfExists bool

	ignoreMissing bool
}

// Variable is a single assignment from an env file.
type Variable struct {
	Key   string
	Value string
}

// Parse reads variable assignments from r. Blank lines and lines starting
// with # are ignored. An optional "export " prefix is allowed. Values may be
// single or double quoted; double quoted values are unquoted with Go string
// escapes. Unquoted values end at an inline " #" comment.
func Parse(r io.Reader) ([]Variable, error) {
	var vars []Variable
	scanner := bufio.NewScanner(r)
	for i := 1; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid/unrecognized variable assignment on line %d: %w", i, os.ErrInvalid)
		}
		key = strings.TrimSpace(key)
		if !nameRe.MatchString(key) {
			return nil, fmt.Errorf("invalid environment variable name %q on line %d: %w", key, i, os.ErrInvalid)
		}
		v, err := parseValue(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid value for %q on line %d: %w", key, i, err)
		}
		vars = append(vars, Variable{Key: key, Value: v})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

func parseValue(s string) (string, error) {
	if len(s) == 0 {
		return "", nil
	}
	switch s[0] {
	case '"':
		end := strings.LastIndexByte(s, '"')
		if end == 0 {
			return "", fmt.Errorf("unterminated double quote: %w", os.ErrInvalid)
		}
		return strconv.Unquote(s[:end+1])
	case '\'':
		end := strings.LastIndexByte(s, '\'')
		if end == 0 {
			return "", fmt.Errorf("unterminated single quote: %w", os.ErrInvalid)
		}
		return s[1:end], nil
	}
	if p := strings.Index(s, " #"); p != -1 {
		s = s[:p]
	}
	return strings.TrimSpace(s), nil
}

// Load updates the current process's environment with the variables in the
// env file. Variables that already have a non-empty value are not
// overwritten unless the OverwriteIfExists option is given.
func Load(fpath string, opts ...Option) error {
	var fopts options
	for _, v := range opts {
		if err := v.apply(&fopts); err != nil {
			return err
		}
	}

	fp, err := os.Open(fpath)
	if err != nil {
		if fopts.ignoreMissing && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open env file: %w", err)
	}
	defer fp.Close()

	vars, err := Parse(fp)
	if err != nil {
		return fmt.Errorf("could not parse env file %q: %w", fpath, err)
	}
	for _, v := range vars {
		key := fopts.variableNamePrefix + v.Key
		if len(os.Getenv(key)) != 0 && !fopts.overwriteIfExists {
			continue
		}
		if err := os.Setenv(key, v.Value); err != nil {
			return fmt.Errorf("could not set environment variable %q: %w", key, err)
		}
	}
	return nil
}
