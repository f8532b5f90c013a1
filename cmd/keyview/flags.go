// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Supports -profile, -escape-timeout, -discard, -json, -query-cursor, -list-profiles, -config, -log-level, -version

package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
)

type cliArgs struct {
	profiles      []string
	profileFiles  []string
	escapeTimeout time.Duration // negative: not set
	discard       string
	json          bool
	queryCursor   bool
	listProfiles  bool
	configPath    string
	logLevel      string
	version       bool
}

func parseFlags(args []string, errOut io.Writer) (cliArgs, error) {
	a := cliArgs{escapeTimeout: -1}
	var profiles, files string

	fs := flag.NewFlagSet("keyview", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&profiles, "profile", "", "Comma-separated built-in profiles to register (default, vt100, kitty)")
	fs.StringVar(&files, "profile-file", "", "Comma-separated profile files (YAML or Markdown) registered after the built-ins")
	fs.DurationVar(&a.escapeTimeout, "escape-timeout", -1, "Grace period for completing an escape sequence (e.g. 250ms, 0 to disable)")
	fs.StringVar(&a.discard, "discard", "", "How unmatched input is dropped: prefix or first")
	fs.BoolVar(&a.json, "json", false, "Print one JSON object per decoded key instead of the interactive view")
	fs.BoolVar(&a.queryCursor, "query-cursor", false, "Ask the terminal for the cursor position at startup")
	fs.BoolVar(&a.listProfiles, "list-profiles", false, "List available profiles and exit")
	fs.StringVar(&a.configPath, "config", "", "Settings file to use instead of the global and project config")
	fs.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&a.version, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return a, err
	}
	if fs.NArg() > 0 {
		return a, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	a.profiles = splitList(profiles)
	a.profileFiles = splitList(files)
	return a, nil
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
