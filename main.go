package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/presetctl/cmd"
	"grimm.is/presetctl/internal/brand"
)

var printer = cmd.Printer

func main() {
	global := flag.NewFlagSet(brand.BinaryName, flag.ExitOnError)
	configFile := global.String("config", "", "Engine configuration file (default "+brand.DefaultConfigPath()+")")
	global.StringVar(configFile, "c", "", "Engine configuration file (short)")
	global.Usage = printUsage
	global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(cmd.ExitWarn)
	}

	name, rest := args[0], args[1:]
	switch name {
	case "version", "--version":
		cmd.RunVersion(cmd.NewOutput(os.Stdout, false))
		return
	case "help", "-h", "--help":
		printUsage()
		return
	}

	rt, err := cmd.NewRuntime(*configFile, os.Stdout)
	if err != nil {
		printer.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(cmd.ExitFail)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, rt, name, rest)
	stop()

	if err := rt.Close(); err != nil {
		printer.Fprintf(os.Stderr, "%v\n", err)
	}
	os.Exit(code)
}

func run(ctx context.Context, rt *cmd.Runtime, name string, args []string) int {
	fail := func(format string, err error) int {
		printer.Fprintf(os.Stderr, format+": %v\n", err)
		return cmd.ExitFail
	}

	switch name {
	case "list":
		listFlags := flag.NewFlagSet("list", flag.ExitOnError)
		dir := listFlags.String("dir", "", "Presets directory")
		listFlags.StringVar(dir, "d", "", "Presets directory (short)")
		listFlags.Parse(args)

		if err := cmd.RunList(rt, *dir); err != nil {
			return fail("List failed", err)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		lenient := checkFlags.Bool("lenient", false, "Skip unparsable lines instead of failing")
		checkFlags.Parse(args)

		if err := cmd.RunCheck(rt, checkFlags.Arg(0), *lenient); err != nil {
			return fail("Check failed", err)
		}

	case "apply":
		applyFlags := flag.NewFlagSet("apply", flag.ExitOnError)
		dryRun := applyFlags.Bool("dry-run", false, "Show planned changes without applying")
		applyFlags.BoolVar(dryRun, "n", false, "Dry run (short)")
		applyFlags.Parse(args)

		code, err := cmd.RunApply(ctx, rt, applyFlags.Arg(0), applyFlags.Arg(1), *dryRun)
		if err != nil {
			return fail("Apply failed", err)
		}
		return code

	case "validate":
		validateFlags := flag.NewFlagSet("validate", flag.ExitOnError)
		validateFlags.Parse(args)

		code, err := cmd.RunValidate(ctx, rt, validateFlags.Arg(0), validateFlags.Arg(1))
		if err != nil {
			return fail("Validate failed", err)
		}
		return code

	case "report":
		reportFlags := flag.NewFlagSet("report", flag.ExitOnError)
		format := reportFlags.String("output", "json", "Output format: json or yaml")
		reportFlags.StringVar(format, "o", "json", "Output format (short)")
		save := reportFlags.Bool("save", false, "Also save the report under the state directory")
		reportFlags.Parse(args)

		if err := cmd.RunReport(ctx, rt, reportFlags.Arg(0), reportFlags.Arg(1), *format, *save); err != nil {
			return fail("Report failed", err)
		}

	case "backups":
		if err := cmd.RunBackups(rt, firstArg(args)); err != nil {
			return fail("Backups failed", err)
		}

	case "history":
		historyFlags := flag.NewFlagSet("history", flag.ExitOnError)
		limit := historyFlags.Int("n", 20, "Number of runs to show (0 = all)")
		historyFlags.Parse(args)

		if err := cmd.RunHistory(rt, historyFlags.Arg(0), *limit); err != nil {
			return fail("History failed", err)
		}

	case "config":
		if err := cmd.RunConfig(rt); err != nil {
			return fail("Config failed", err)
		}

	default:
		printer.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		return cmd.ExitWarn
	}
	return cmd.ExitOK
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `%s - %s

Usage:
  %s [-c <config>] <command> [options]

Commands:
  list      List available presets
            Options: --dir (-d) <dir>
  check     Structurally validate a preset file
            Options: --lenient
  apply     Apply a preset to a site
            Options: --dry-run (-n)
  validate  Compare a site against a preset (exit 0 OK, 1 WARN, 2 ERROR)
  report    Snapshot the live settings of a site
            Options: --output (-o) json|yaml, --save
  backups   List config-block backups of a site
  history   Show recorded runs
            Options: -n <count>
  config    Print the effective engine configuration
  version   Show version

Examples:
  %s list
  %s apply -n example.com fast
  %s validate example.com fast
  %s report -o yaml --save example.com /etc/presetctl/presets/fast.preset
`, brand.Name, brand.Description, brand.BinaryName,
		brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
