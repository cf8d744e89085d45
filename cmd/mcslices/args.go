package main

import (
	"strings"

	"github.com/urfave/cli/v2"
)

// normalizeArgs moves the root command's flags in front of its positional
// arguments so they can be given in any order, e.g. "world -p palette.txt".
// Arguments of subcommands are left untouched.
func normalizeArgs(app *cli.App, args []string) []string {
	if len(args) < 2 {
		return args
	}
	for _, cmd := range app.Commands {
		if cmd.HasName(args[1]) {
			return args
		}
	}

	takesValue := map[string]bool{}
	for _, f := range app.Flags {
		_, isBool := f.(*cli.BoolFlag)
		for _, name := range f.Names() {
			takesValue[name] = !isBool
		}
	}

	flags := []string{}
	positional := []string{}
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(arg) < 2 || !strings.HasPrefix(arg, "-") {
			positional = append(positional, arg)
			continue
		}

		flags = append(flags, arg)
		name := strings.TrimLeft(arg, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if takesValue[name] && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	result := append([]string{args[0]}, flags...)
	return append(result, positional...)
}
