package main

import (
	"fmt"

	"github.com/nihei9/lltab/grammar"
	"github.com/nihei9/lltab/lexical"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var checkFlags = struct {
	upperCase *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Check token specifications and a grammar without writing anything",
		Example: `  lltab check expr.grammar tokens.json`,
		Args:    cobra.ExactArgs(2),
		RunE:    runCheck,
	}
	checkFlags.upperCase = cmd.Flags().Bool("upper-case", false, "treat upper case symbols as non-terminals instead of the heads of the rules")
	rootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	specs, err := readTokenSpecs(args[1])
	if err != nil {
		return err
	}
	failed := 0
	err = lexical.Validate(specs)
	if err != nil {
		pterm.Error.Println(err.Error())
		failed++
	}
	_, _, cerrs := lexical.Compile(specs)
	for _, cerr := range cerrs {
		pterm.Error.Println(cerr.Error())
		failed++
	}

	gram, err := readGrammar(args[0], *checkFlags.upperCase)
	if err != nil {
		return err
	}
	var kinds []string
	for _, s := range specs {
		kinds = append(kinds, s.KindName())
	}
	if err := reportTokenErrors(grammar.CheckTokens(gram, kinds)); err != nil {
		pterm.Error.Println(err.Error())
		failed++
	}

	_, err = grammar.GenParsingTable(gram)
	if err != nil {
		notLL1, ok := grammar.IsNotLL1(err)
		if !ok {
			return err
		}
		for _, r := range notLL1.LeftRecursions {
			pterm.Error.Println(r.String())
		}
		for _, c := range notLL1.FirstConflicts {
			pterm.Error.Println(c.String())
		}
		for _, c := range notLL1.TableConflicts {
			pterm.Error.Println(c.String())
		}
		failed++
	}

	if failed > 0 {
		return fmt.Errorf("%v checks failed", failed)
	}
	pterm.Success.Printf("%v token kinds, %v non-terminals, %v rules: the grammar is LL(1)\n", len(specs), len(gram.NonTerminals()), len(gram.Rules()))
	return nil
}
