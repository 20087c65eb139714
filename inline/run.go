// Package inline implements the inline subcommand: moving document-level CSS
// rules into per-element style attributes, running post-processing transforms
// and reporting what was applied.
package inline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"smover/css"
	"smover/document"
	"smover/misc"
	"smover/state"
	"smover/style"
	"smover/transform"
)

// runState aggregates per-document results for final reporting. It is owned
// by Run - there are no process-wide accumulators.
type runState struct {
	stats     style.UsageStats
	diags     []string
	processed int
}

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inline")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	// resolve per-run options from configuration and flags
	env.WrapClass = ""
	if cmd.Bool("wrap") || cmd.IsSet("wrap-class") {
		env.WrapClass = env.Cfg.Document.WrapClass
		if class := cmd.String("wrap-class"); class != "" {
			env.WrapClass = class
		}
	}
	env.NormalizeHeadings = env.Cfg.Document.NormalizeHeadings || cmd.Bool("capitalize")
	env.ShowStats = cmd.Bool("stat")
	env.CollectStats = env.Cfg.Document.CollectStats || env.ShowStats
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	if path := env.Cfg.Document.StylesheetPath; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("unable to read fallback stylesheet from %q: %w", path, err)
		}
		env.FallbackStyle = data
	}

	// input may come in an archaic encoding the document does not declare
	cp := cmd.String("force-charset")
	if len(cp) > 0 {
		env.CodePage, err = htmlindex.Get(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := htmlindex.Name(env.CodePage)
			log.Debug("Forcefully decoding all inputs", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	run := &runState{stats: make(style.UsageStats)}
	if err := process(ctx, src, dst, run, log); err != nil {
		return err
	}

	return report(ctx, dst, run, log)
}

// process determines the input type (directory or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, run *runState, log *zap.Logger) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	if fi.Mode().IsDir() {
		return processDir(ctx, src, dst, run, log)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
	return processFile(ctx, src, filepath.Base(src), dst, run, log)
}

// processDir walks directory tree finding markup files and processes them.
// Individual file failures are logged and do not stop the walk.
func processDir(ctx context.Context, dir, dst string, run *runState, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if !isDocFile(path) {
			log.Debug("Skipping file, not recognized as markup", zap.String("file", path))
			return nil
		}

		count++

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processFile(ctx, path, src, dst, run, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// isDocFile recognizes inputs worth processing by extension.
func isDocFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// processFile runs the whole pipeline over a single document. "src" is the
// source path relative to the original input (used to build the output
// path), "dst" is the destination directory.
func processFile(ctx context.Context, path, src, dst string, run *runState, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Inlining starting", zap.String("from", src))
	defer func(start time.Time) {
		log.Info("Inlining completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
	}(time.Now())

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	doc, err := document.Parse(data, src, env.CodePage, log)
	if err != nil {
		return fmt.Errorf("unable to parse markup source (%s): %w", src, err)
	}

	// style resolution and merge
	styleNode := doc.FindStyle()
	cssText := env.FallbackStyle
	if styleNode != nil {
		cssText = []byte(document.Text(styleNode))
	} else {
		log.Info("No style node found in the document. Proceeding with other operations.", zap.String("source", src))
	}

	if len(cssText) > 0 {
		sheet := css.NewParser(log).Parse(cssText, src)
		for _, w := range sheet.Warnings {
			log.Debug("Stylesheet warning", zap.String("source", src), zap.String("warning", w))
		}

		applier := style.NewApplier(log)
		applier.Apply(doc.Root(), sheet)

		if env.CollectStats {
			run.stats.Merge(applier.Stats())
		}
		run.diags = append(run.diags, applier.Diagnostics()...)
	}

	// the style node goes away regardless of how rule application went
	document.Detach(styleNode)

	// post-processing transforms, fixed order, class stripping always last
	if env.WrapClass != "" {
		wrapped := transform.WrapPreByClass(doc.Root(), env.WrapClass)
		log.Info("Wrapping content in pre blocks", zap.String("class", env.WrapClass), zap.Int("elements", wrapped))
	}
	if env.NormalizeHeadings {
		adjusted := transform.NormalizeHeadingCase(doc.Root())
		log.Debug("Normalized heading case", zap.Int("headings", adjusted))
	}
	transform.StripClassAttributes(doc.Root())

	// determine output file name and path based on input and configuration
	outputName = buildOutputPath(doc, src, dst, env)

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	out, err := os.Create(outputName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer out.Close()

	if err := doc.WriteTo(out); err != nil {
		return fmt.Errorf("unable to write output file '%s': %w", outputName, err)
	}

	run.processed++
	env.Rpt.Store(fmt.Sprintf("result/%s", filepath.ToSlash(src)), outputName)

	return nil
}

// report presents accumulated statistics and diagnostics once all inputs are
// done. In batch mode diagnostics go to an error file next to the outputs,
// otherwise they are logged.
func report(ctx context.Context, dst string, run *runState, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	if env.ShowStats && !env.Batch {
		printStats(run.stats)
	}

	if len(run.diags) == 0 {
		return nil
	}

	env.Rpt.StoreData("diagnostics.txt", []byte(strings.Join(run.diags, "\n")+"\n"))

	if !env.Batch {
		for _, d := range run.diags {
			log.Error(d)
		}
		return nil
	}

	errFile := filepath.Join(dst, misc.GetAppName()+".err")
	if err := os.WriteFile(errFile, []byte(strings.Join(run.diags, "\n")+"\n"), 0644); err != nil {
		// last resort - this is the only output batch mode is allowed to make
		fmt.Fprintf(os.Stderr, "Critical: could not write to %s: %v\n", errFile, err)
		for _, d := range run.diags {
			fmt.Fprintln(os.Stderr, d)
		}
		return nil
	}
	log.Debug("Diagnostics written", zap.String("file", errFile), zap.Int("entries", len(run.diags)))
	return nil
}

func printStats(stats style.UsageStats) {
	fmt.Println("\n--- Style Application Stats ---")
	if len(stats) == 0 {
		fmt.Println("No styles were applied.")
	} else {
		for _, line := range stats.Lines() {
			fmt.Println(line)
		}
	}
	fmt.Print("-----------------------------\n\n")
}
