// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"pinsmith/internal/analyzer"
	"pinsmith/internal/config"
	"pinsmith/internal/ir"
	"pinsmith/internal/transform"
)

type transpileOptions struct {
	output     string
	configPath string
	watch      bool

	noAlloc        bool
	lazyEntrypoint bool
	inlineCPI      bool
	anchorCompat   bool
	noLogs         bool
	unsafeMath     bool
}

func newTranspileCommand() *cobra.Command {
	opts := &transpileOptions{}

	cmd := &cobra.Command{
		Use:   "transpile <program.json>",
		Short: "Lower a source program model to a target program model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := resolveOptions(cmd, opts)
			if err != nil {
				return err
			}
			if opts.watch {
				return watchAndTranspile(args[0], opts.output, options)
			}
			return runTranspile(args[0], opts.output, options)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file path (default: <input>.pinocchio.json)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML options file")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-run whenever the input file changes")

	cmd.Flags().BoolVar(&opts.noAlloc, "no-alloc", false, "lower collections to fixed-backing forms")
	cmd.Flags().BoolVar(&opts.lazyEntrypoint, "lazy-entrypoint", false, "mark the target for deferred account parsing")
	cmd.Flags().BoolVar(&opts.inlineCPI, "inline-cpi", false, "expand system transfers to direct lamport arithmetic")
	cmd.Flags().BoolVar(&opts.anchorCompat, "anchor-compat", true, "derive content-based discriminators")
	cmd.Flags().BoolVar(&opts.noLogs, "no-logs", false, "strip diagnostic output from instruction bodies")
	cmd.Flags().BoolVar(&opts.unsafeMath, "unsafe-math", false, "accepted for config compatibility, no effect")

	return cmd
}

// resolveOptions layers the config file over the defaults and explicitly set
// flags over the config file. Flags left at their default never override a
// file setting.
func resolveOptions(cmd *cobra.Command, opts *transpileOptions) (config.Options, error) {
	options := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return options, err
		}
		options = loaded
	}

	set := map[string]*bool{
		"no-alloc":        &opts.noAlloc,
		"lazy-entrypoint": &opts.lazyEntrypoint,
		"inline-cpi":      &opts.inlineCPI,
		"anchor-compat":   &opts.anchorCompat,
		"no-logs":         &opts.noLogs,
		"unsafe-math":     &opts.unsafeMath,
	}
	dst := map[string]*bool{
		"no-alloc":        &options.NoAlloc,
		"lazy-entrypoint": &options.LazyEntrypoint,
		"inline-cpi":      &options.InlineCPI,
		"anchor-compat":   &options.AnchorCompat,
		"no-logs":         &options.NoLogs,
		"unsafe-math":     &options.UnsafeMath,
	}
	for name, value := range set {
		if cmd.Flags().Changed(name) {
			*dst[name] = *value
		}
	}
	return options, nil
}

func runTranspile(input, output string, options config.Options) error {
	startTime := time.Now()

	if output == "" {
		output = input + ".pinocchio.json"
	}

	program, err := ir.ReadProgram(input)
	if err != nil {
		color.Red("Failed: %v", err)
		return err
	}

	facts := analyzer.Analyze(program)
	target, err := transform.Transform(program, facts, options)
	if err != nil {
		color.Red("Failed: %v", err)
		return err
	}

	if err := ir.WriteTarget(output, target); err != nil {
		color.Red("Failed: %v", err)
		return err
	}

	duration := formatDuration(time.Since(startTime))
	color.Green("Transpiled %s (%d instructions, %d state records) to %s in %s",
		program.Name, len(target.Instructions), len(target.StateRecords), output, duration)

	issues := 0
	for _, inst := range target.Instructions {
		issues += len(inst.Issues)
	}
	if issues > 0 {
		color.Yellow("%d issue(s) need manual review:", issues)
		for _, inst := range target.Instructions {
			for _, issue := range inst.Issues {
				fmt.Printf("  %s: [%s] %s\n", inst.Name, issue.Kind, issue.Detail)
			}
		}
	}
	return nil
}

// watchAndTranspile re-runs the conversion on every write to the input file.
// Per-run failures are reported and watching continues; only a watcher
// breakdown ends the loop.
func watchAndTranspile(input, output string, options config.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(input); err != nil {
		return fmt.Errorf("failed to watch %s: %w", input, err)
	}

	_ = runTranspile(input, output, options)
	color.Cyan("Watching %s for changes...", input)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// Editors replace files on save; re-add so renames keep working.
			_ = watcher.Add(input)
			_ = runTranspile(input, output, options)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
