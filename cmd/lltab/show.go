package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/nihei9/lltab/automaton/serial"
	spec "github.com/nihei9/lltab/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var showFlags = struct {
	labels *string
	input  *string
	lookup *[]string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a serialized automaton or a parsing table in readable form",
	}

	automatonCmd := &cobra.Command{
		Use:     "automaton",
		Short:   "Print the states of a serialized automaton",
		Example: `  lltab show automaton lexer.automata --labels lexer.labels --input 'if'`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShowAutomaton,
	}
	showFlags.labels = automatonCmd.Flags().StringP("labels", "l", "", "label table written along with the automaton")
	showFlags.input = automatonCmd.Flags().StringP("input", "i", "", "run the automaton on this input")
	cmd.AddCommand(automatonCmd)

	tableCmd := &cobra.Command{
		Use:     "table",
		Short:   "Print the entries of a compiled grammar",
		Example: `  lltab show table expr.json --lookup E,id`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShowTable,
	}
	showFlags.lookup = tableCmd.Flags().StringSlice("lookup", nil, "look up a cell given as NON_TERMINAL,LOOKAHEAD")
	cmd.AddCommand(tableCmd)

	rootCmd.AddCommand(cmd)
}

func runShowAutomaton(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var tab *serial.Table
	if *showFlags.labels != "" {
		labels, err := os.ReadFile(*showFlags.labels)
		if err != nil {
			return err
		}
		tab, err = serial.Decode(data, bytes.NewReader(labels))
		if err != nil {
			return err
		}
	} else {
		tab, err = serial.Decode(data, nil)
		if err != nil {
			return err
		}
	}

	rows := pterm.TableData{
		{"State", "Symbol", "Next"},
	}
	for _, id := range tab.States() {
		row := tab.Transitions(id)
		syms := make([]int, 0, len(row))
		for c := range row {
			syms = append(syms, int(c))
		}
		sort.Ints(syms)
		for _, c := range syms {
			rows = append(rows, []string{fmt.Sprint(id), byteText(byte(c)), fmt.Sprint(row[byte(c)])})
		}
	}
	err = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	if err != nil {
		return err
	}

	finals := pterm.TableData{
		{"Final", "Kinds"},
	}
	for _, id := range tab.Finals() {
		finals = append(finals, []string{fmt.Sprint(id), strings.Join(tab.Labels(id), ", ")})
	}
	err = pterm.DefaultTable.WithHasHeader().WithData(finals).Render()
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("input") {
		kinds, ok := tab.Accepts(*showFlags.input)
		if !ok {
			pterm.Warning.Printf("%q is rejected\n", *showFlags.input)
			return nil
		}
		pterm.Success.Printf("%q is accepted: %v\n", *showFlags.input, strings.Join(kinds, ", "))
	}
	return nil
}

func byteText(c byte) string {
	if c == serial.AnyByte {
		return "ANY"
	}
	if c > 0x20 && c < 0x7f {
		return string(rune(c))
	}
	return fmt.Sprintf("0x%02x", c)
}

func runShowTable(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	cgram := &spec.CompiledGrammar{}
	err = json.Unmarshal(data, cgram)
	if err != nil {
		return fmt.Errorf("Cannot read the compiled grammar %s: %w", args[0], err)
	}
	syn := cgram.Syntactic
	if syn == nil {
		return fmt.Errorf("%s has no parsing table", args[0])
	}
	fp, err := syn.GenFingerprint()
	if err != nil {
		return err
	}
	if fp != syn.Fingerprint {
		pterm.Warning.Printf("the fingerprint does not match the table; want: %v, got: %v\n", syn.Fingerprint, fp)
	}

	pterm.Info.Printf("%v: start %v, %v non-terminals, %v terminals, %v rules\n", cgram.Name, syn.Start, len(syn.NonTerminals), len(syn.Terminals), len(syn.Rules))
	rows := pterm.TableData{
		{"Non-terminal", "Lookahead", "Rule"},
	}
	for _, e := range syn.Entries {
		if e.Rule < 1 || e.Rule > len(syn.Rules) {
			return fmt.Errorf("an entry refers to an unknown rule: %v", e.Rule)
		}
		r := syn.Rules[e.Rule-1]
		rows = append(rows, []string{e.NonTerminal, e.Lookahead, fmt.Sprintf("%v: %v", r.ID, ruleText(r))})
	}
	err = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	if err != nil {
		return err
	}

	for _, cell := range *showFlags.lookup {
		nt, la, ok := strings.Cut(cell, ",")
		if !ok {
			return fmt.Errorf("a cell must be NON_TERMINAL,LOOKAHEAD: %v", cell)
		}
		r, ok, err := syn.Lookup(nt, la)
		if err != nil {
			return err
		}
		if !ok {
			pterm.Warning.Printf("[%v, %v] is empty\n", nt, la)
			continue
		}
		pterm.Success.Printf("[%v, %v] = %v: %v\n", nt, la, r.ID, ruleText(r))
	}
	return nil
}

func ruleText(r *spec.Rule) string {
	if len(r.Body) == 0 {
		return fmt.Sprintf("%v -> ''", r.Head)
	}
	return fmt.Sprintf("%v -> %v", r.Head, strings.Join(r.Body, " "))
}
