package main

import (
	"fmt"
	"os"

	"github.com/nihei9/lltab/automaton"
	"github.com/nihei9/lltab/automaton/serial"
	verr "github.com/nihei9/lltab/error"
	"github.com/nihei9/lltab/lexical"
	"github.com/nihei9/lltab/spec"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var lexerFlags = struct {
	output         *string
	parallel       *bool
	skipWhitespace *bool
	expandWildcard *bool
	text           *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "lexer",
		Short:   "Compile token specifications into a serialized automaton",
		Example: `  lltab lexer tokens.json -o lexer`,
		Args:    cobra.ExactArgs(1),
		RunE:    runLexer,
	}
	lexerFlags.output = cmd.Flags().StringP("output", "o", "lexer", "output path without extension; writes <output>.automata and <output>.labels")
	lexerFlags.parallel = cmd.Flags().Bool("parallel", false, "build the automata of the token kinds concurrently")
	lexerFlags.skipWhitespace = cmd.Flags().Bool("skip-whitespace", true, "let the initial state loop on white space")
	lexerFlags.expandWildcard = cmd.Flags().Bool("expand-wildcard", false, "write wildcard transitions as explicit characters")
	lexerFlags.text = cmd.Flags().Bool("text", false, "also print the automaton in text form")
	rootCmd.AddCommand(cmd)
}

func runLexer(cmd *cobra.Command, args []string) error {
	specs, err := readTokenSpecs(args[0])
	if err != nil {
		return err
	}

	opts := []lexical.CompileOption{
		lexical.SkipWhitespace(*lexerFlags.skipWhitespace),
	}
	if *lexerFlags.parallel {
		opts = append(opts, lexical.Parallel())
	}
	dfa, err, cerrs := lexical.Compile(specs, opts...)
	for _, cerr := range cerrs {
		pterm.Error.Println(cerr.Error())
	}
	if err != nil {
		return err
	}

	err = writeAutomaton(dfa, *lexerFlags.output)
	if err != nil {
		return fmt.Errorf("Cannot write the automaton: %w", err)
	}
	if *lexerFlags.text {
		fmt.Fprintln(os.Stdout, dfa.Text())
	}
	pterm.Success.Printf("%v states, %v final states\n", dfa.StateCount(), len(dfa.Finals()))

	return nil
}

func writeAutomaton(dfa *automaton.Automaton, output string) error {
	var opts []serial.EncodeOption
	if *lexerFlags.expandWildcard {
		opts = append(opts, serial.ExpandWildcard())
	}
	data, err := serial.Encode(dfa, opts...)
	if err != nil {
		return err
	}
	labels, err := serial.EncodeLabels(dfa)
	if err != nil {
		return err
	}
	err = os.WriteFile(output+".automata", data, 0644)
	if err != nil {
		return err
	}
	return os.WriteFile(output+".labels", labels, 0644)
}

func readTokenSpecs(path string) (specs []spec.TokenSpec, retErr error) {
	defer func() {
		if retErr != nil {
			setSourcePath(retErr, path)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the token specifications %s: %w", path, err)
	}
	defer f.Close()

	return spec.ReadTokenSpecs(f)
}

func setSourcePath(err error, path string) {
	specErrs, ok := err.(verr.SpecErrors)
	if !ok {
		return
	}
	for _, e := range specErrs {
		e.FilePath = path
		e.SourceName = path
	}
}
