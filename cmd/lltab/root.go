package main

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"
)

var traceKeys = []string{
	"lltab.automaton",
	"lltab.serial",
	"lltab.lexical",
	"lltab.spec",
	"lltab.grammar",
}

var rootFlags = struct {
	trace *string
}{}

var rootCmd = &cobra.Command{
	Use:   "lltab",
	Short: "Generate lexer automata and LL(1) parsing tables",
	Long: `lltab provides two features:
- Compiles token specifications into one deterministic automaton and serializes it.
- Derives the LL(1) parsing table of a grammar.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := tracing.TraceLevelFromString(*rootFlags.trace)
		for _, key := range traceKeys {
			tracing.Select(key).SetTraceLevel(level)
		}
	},
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
}

func Execute() error {
	return rootCmd.Execute()
}
