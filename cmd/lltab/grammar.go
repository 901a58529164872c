package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/lltab/grammar"
	"github.com/nihei9/lltab/lexical"
	spec "github.com/nihei9/lltab/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var grammarFlags = struct {
	output      *string
	tokens      *string
	name        *string
	upperCase   *bool
	text        *bool
	firstFollow *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "grammar",
		Short:   "Derive the LL(1) parsing table of a grammar",
		Example: `  lltab grammar expr.grammar --tokens tokens.json -o expr.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runGrammar,
	}
	grammarFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	grammarFlags.tokens = cmd.Flags().StringP("tokens", "t", "", "token specifications; checked against the terminals and bundled as the label table")
	grammarFlags.name = cmd.Flags().String("name", "", "grammar name (default the base name of the grammar file)")
	grammarFlags.upperCase = cmd.Flags().Bool("upper-case", false, "treat upper case symbols as non-terminals instead of the heads of the rules")
	grammarFlags.text = cmd.Flags().Bool("text", false, "print the table in text form instead of JSON")
	grammarFlags.firstFollow = cmd.Flags().Bool("first-follow", false, "print the First and Follow sets")
	rootCmd.AddCommand(cmd)
}

func runGrammar(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0], *grammarFlags.upperCase)
	if err != nil {
		return err
	}
	if *grammarFlags.firstFollow {
		fmt.Fprintln(os.Stdout, gram.FirstFollowString())
	}

	name := *grammarFlags.name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	cgram, err := grammar.Compile(name, gram)
	if err != nil {
		return err
	}

	if *grammarFlags.tokens != "" {
		specs, err := readTokenSpecs(*grammarFlags.tokens)
		if err != nil {
			return err
		}
		var kinds []string
		for _, s := range specs {
			kinds = append(kinds, s.KindName())
		}
		if err := reportTokenErrors(grammar.CheckTokens(gram, kinds)); err != nil {
			return err
		}
		dfa, err, _ := lexical.Compile(specs)
		if err != nil {
			return err
		}
		cgram.Lexical, err = lexical.NewLabelTable(dfa, specs)
		if err != nil {
			return err
		}
	}

	var w io.Writer = os.Stdout
	if *grammarFlags.output != "" {
		f, err := os.OpenFile(*grammarFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return writeCompiledGrammar(w, gram, cgram)
}

func writeCompiledGrammar(w io.Writer, gram *grammar.Grammar, cgram *spec.CompiledGrammar) error {
	if *grammarFlags.text {
		tab, err := grammar.GenParsingTable(gram)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, tab.Text())
		return err
	}

	b, err := json.Marshal(cgram)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%v\n", string(b))
	return err
}

func readGrammar(path string, upperCase bool) (gram *grammar.Grammar, retErr error) {
	defer func() {
		if retErr != nil {
			setSourcePath(retErr, path)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	var opts []grammar.BuildOption
	if upperCase {
		opts = append(opts, grammar.WithClassifier(grammar.UpperCaseClassifier))
	}
	return grammar.Read(f, opts...)
}

// reportTokenErrors prints every mismatch and fails when a terminal has no token.
func reportTokenErrors(errs []*grammar.TokenError) error {
	fatal := 0
	for _, err := range errs {
		if err.IsFatal() {
			pterm.Error.Println(err.Error())
			fatal++
			continue
		}
		pterm.Warning.Println(err.Error())
	}
	if fatal > 0 {
		return fmt.Errorf("%v terminals have no token definition", fatal)
	}
	return nil
}
