// Command qrcard turns user records into QR codes and reads them back.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/zoobzio/qrcard"
	"github.com/zoobzio/qrcard/internal/app"
	"github.com/zoobzio/qrcard/internal/config"
	"github.com/zoobzio/qrcard/internal/display"
	"github.com/zoobzio/qrcard/internal/logging"
)

const usage = `Usage: qrcard <command> [flags] [args]

Commands:
  generate <id>...    render a QR code for each user
  decode <text>       decode payload text ("-" reads stdin)
  scan <image>        read a QR code from a PNG or JPEG file
  link <url>          decode the payload of a carrier link
  export <id>         write the sanitized record as json, yaml, msgpack, bson or xml
  import <file>       read an exported record

Run "qrcard <command> --help" for command flags.
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// command is a subcommand body. fs has already been parsed.
type command struct {
	args  string
	flags func(fs *pflag.FlagSet)
	run   func(ctx context.Context, env *env, fs *pflag.FlagSet) error
}

var commands = map[string]command{
	"generate": {args: "<id>...", flags: generateFlags, run: runGenerate},
	"decode":   {args: "<text>", flags: outputFlags, run: runDecode},
	"scan":     {args: "<image>", flags: outputFlags, run: runScan},
	"link":     {args: "<url>", flags: outputFlags, run: runLink},
	"export":   {args: "<id>", flags: exportFlags, run: runExport},
	"import":   {args: "<file>", flags: importFlags, run: runImport},
}

// env carries what every command needs.
type env struct {
	svc    *app.Service
	stdin  io.Reader
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		if len(args) == 0 {
			return 1
		}
		return 0
	}

	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n%s", name, usage)
		return 1
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	config.RegisterFlags(fs)
	cmd.flags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	configPath, _ := fs.GetString("config")
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	lc := cfg.LoggerConfig()
	lc.Output = stderr
	logger := logging.NewLogger(lc)

	ctx = logging.SetRunID(ctx, logging.NewRunID())
	logger.WithContext(ctx).WithField("command", name).Debug("starting")

	svc, err := app.New(cfg, app.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	e := &env{svc: svc, stdin: stdin, stdout: stdout}
	if err := cmd.run(ctx, e, fs); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Usage: qrcard %s [flags] %s\n", name, cmd.args)
			fs.PrintDefaults()
			return 1
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func outputFlags(fs *pflag.FlagSet) {
	fs.Bool("json", false, "print the record as indented JSON instead of sections")
}

func generateFlags(fs *pflag.FlagSet) {
	fs.StringP("out", "o", ".", "directory for PNG files")
	fs.Bool("no-png", false, "do not write PNG files")
	fs.BoolP("terminal", "t", false, "draw the code in the terminal")
	fs.Bool("payload", false, "print the encoded payload")
}

func exportFlags(fs *pflag.FlagSet) {
	fs.StringP("format", "f", "", "json, yaml, msgpack, bson or xml (default from --out, else json)")
	fs.StringP("out", "o", "", "output file (default stdout)")
}

func importFlags(fs *pflag.FlagSet) {
	outputFlags(fs)
	fs.StringP("format", "f", "", "json, yaml, msgpack, bson or xml (default from file extension)")
}

func runGenerate(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	ids := fs.Args()
	if len(ids) == 0 {
		return errUsage
	}
	outDir, _ := fs.GetString("out")
	noPNG, _ := fs.GetBool("no-png")
	terminal, _ := fs.GetBool("terminal")
	showPayload, _ := fs.GetBool("payload")

	gens, err := e.svc.GenerateAll(ctx, ids)
	if err != nil {
		return err
	}

	for _, g := range gens {
		fmt.Fprintf(e.stdout, "User %s\n", g.ID)
		if !noPNG {
			path := filepath.Join(outDir, pngName(g.ID))
			if err := g.Code.WritePNG(path, e.svc.PNGSize()); err != nil {
				return err
			}
			fmt.Fprintf(e.stdout, "  PNG:         %s\n", path)
		}
		fmt.Fprintf(e.stdout, "  Link:        %s\n", g.Link)
		fmt.Fprintf(e.stdout, "  Fingerprint: %s\n", g.Fingerprint)
		if showPayload {
			fmt.Fprintf(e.stdout, "  Payload:     %s\n", g.Payload)
		}
		if terminal {
			fmt.Fprint(e.stdout, g.Code.Terminal())
		}
	}
	return nil
}

// pngName is the default file name for a user's code.
func pngName(id string) string {
	return fmt.Sprintf("user-%s-qrcode.png", id)
}

func runDecode(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return errUsage
	}
	text := fs.Arg(0)
	if text == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	r, err := e.svc.Decode(ctx, text)
	if err != nil {
		return err
	}
	return printRecord(e.stdout, fs, r)
}

func runScan(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return errUsage
	}
	r, err := e.svc.Scan(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return printRecord(e.stdout, fs, r)
}

func runLink(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return errUsage
	}
	r, err := e.svc.DecodeLink(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	return printRecord(e.stdout, fs, r)
}

func runExport(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return errUsage
	}
	out, _ := fs.GetString("out")
	name, _ := fs.GetString("format")

	f := app.FormatJSON
	var err error
	switch {
	case name != "":
		f, err = app.ParseFormat(name)
	case out != "":
		f, err = app.FormatFromPath(out)
	}
	if err != nil {
		return err
	}

	data, err := e.svc.Export(ctx, fs.Arg(0), f)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = e.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(e.stdout, "Exported user %s to %s\n", fs.Arg(0), out)
	return nil
}

func runImport(ctx context.Context, e *env, fs *pflag.FlagSet) error {
	if fs.NArg() != 1 {
		return errUsage
	}
	path := fs.Arg(0)
	name, _ := fs.GetString("format")

	var (
		f   app.Format
		err error
	)
	if name != "" {
		f, err = app.ParseFormat(name)
	} else {
		f, err = app.FormatFromPath(path)
	}
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	r, err := e.svc.Import(ctx, data, f)
	if err != nil {
		return err
	}
	return printRecord(e.stdout, fs, r)
}

// printRecord writes r as display sections, or as indented JSON with --json.
func printRecord(w io.Writer, fs *pflag.FlagSet, r *qrcard.Record) error {
	if asJSON, _ := fs.GetBool("json"); asJSON {
		data, err := qrcard.TaggedIndent("", "  ").Marshal(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	return display.Write(w, r)
}
