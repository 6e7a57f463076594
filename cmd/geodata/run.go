package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"geodata-api/internal/geodata"

	flag "github.com/spf13/pflag"
)

var (
	errArgsRequired = errors.New("missing argument")
	errNoMatch      = errors.New("not found")
	errInconsistent = errors.New("json and csv encodings differ")
	errOutRequired  = errors.New("--out is required")
)

// env 由调用方注入，便于测试
type env struct {
	out  io.Writer
	repo *geodata.Repository
	json bool
}

func (e *env) printf(format string, a ...any) { _, _ = fmt.Fprintf(e.out, format, a...) }

// emit：--json 时输出 v，否则调用 text
func (e *env) emit(v any, text func()) error {
	if !e.json {
		text()
		return nil
	}
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

type command struct {
	flags *flag.FlagSet
	usage string
	short string
	exec  func(e *env, args []string) error
}

func (c *command) name() string {
	name, _, _ := strings.Cut(c.usage, " ")
	return name
}

func commands() []*command {
	return []*command{
		statsCmd(), provinceCmd(), searchCmd(), districtsCmd(),
		hierarchyCmd(), verifyCmd(), exportCmd(),
	}
}

func printUsage(w io.Writer, global *flag.FlagSet) {
	_, _ = fmt.Fprintln(w, "Usage: geodata [global flags] <command> [args]")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Commands:")
	for _, c := range commands() {
		_, _ = fmt.Fprintf(w, "  %-36s %s\n", c.usage, c.short)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Global flags:")
	_, _ = fmt.Fprint(w, global.FlagUsages())
}

// run：解析全局参数并分发子命令，返回退出码
func run(args []string, out, errOut io.Writer) int {
	global := flag.NewFlagSet("geodata", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.SetOutput(io.Discard)
	base := global.String("base", "", "dataset base directory (default $GEODATA_BASE_PATH or data/geodata)")
	jsonDir := global.String("json-dir", "", "json subdirectory (default json)")
	csvDir := global.String("csv-dir", "", "csv subdirectory (default csv)")
	asJSON := global.Bool("json", false, "print results as JSON")

	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, global)
			return 0
		}
		_, _ = fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut, global)
		return 1
	}
	rest := global.Args()
	if len(rest) == 0 {
		printUsage(out, global)
		return 0
	}

	var repo *geodata.Repository
	if *base == "" && *jsonDir == "" && *csvDir == "" {
		repo = geodata.NewFromEnv()
	} else {
		if *base == "" {
			*base = "."
		}
		repo = geodata.NewFromConfig(geodata.Config{BasePath: *base, JSONDir: *jsonDir, CSVDir: *csvDir})
	}
	e := &env{out: out, repo: repo, json: *asJSON}

	for _, c := range commands() {
		if c.name() != rest[0] {
			continue
		}
		if err := c.flags.Parse(rest[1:]); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				_, _ = fmt.Fprintln(out, "Usage: geodata", c.usage)
				_, _ = fmt.Fprint(out, c.flags.FlagUsages())
				return 0
			}
			_, _ = fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		if err := c.exec(e, c.flags.Args()); err != nil {
			_, _ = fmt.Fprintln(errOut, "error:", err)
			return 1
		}
		return 0
	}
	_, _ = fmt.Fprintln(errOut, "error: unknown command:", rest[0])
	printUsage(errOut, global)
	return 1
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}
