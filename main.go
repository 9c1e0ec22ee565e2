package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gcl_go/pkg/config"
	gclerrors "gcl_go/pkg/errors"
	"gcl_go/pkg/gc"
	"gcl_go/pkg/interp"
	"gcl_go/pkg/parser"
)

var (
	evalExpr   string
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "gcl [file.gcl]",
	Short: "An interpreter for a minimalist garbage-collected language",
	Long: `gcl is an interpreter for a minimalist Lisp-like language whose heap is
managed by a Schorr-Waite mark-sweep garbage collector.

Syntax:
  EXPR ::= ATOM              variable lookup
         | (EXPR EXPR)       function application
         | (fun (PARAM BODY)) lambda expression
         | (quote EXPR)      evaluates to EXPR itself

Examples:
  gcl -e '(print_atom (quote Hello_world!))'
  gcl program.gcl
  echo '(print_atom (quote hi))' | gcl
  gcl                         # interactive REPL`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "Evaluate expression from command line")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print collector statistics")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) (err error) {
	// Usage errors in the core are raised as RuntimeError panics; the
	// language has no exception mechanism, so they terminate evaluation.
	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(*gclerrors.RuntimeError)
			if !ok {
				panic(r)
			}
			err = fault
		}
	}()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	heap := gc.New(cfg.Heap.Capacity)
	in := interp.New(heap, os.Stdout)
	in.SetStepLimit(cfg.Interp.StepLimit)

	var input string
	switch {
	case evalExpr != "":
		input = evalExpr
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}
		input = string(data)
	default:
		// An interactive terminal gets the REPL directly. Otherwise read
		// stdin; an empty stream drops into the REPL.
		if fi, serr := os.Stdin.Stat(); serr == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return runREPL(heap, in)
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		input = string(data)
	}

	if strings.TrimSpace(input) == "" {
		return runREPL(heap, in)
	}
	return runSource(heap, in, input)
}

// runSource evaluates every expression in input in order.
func runSource(heap *gc.Heap, in *interp.Interp, input string) error {
	p := parser.New(heap, input)
	for {
		expr, err := p.Parse()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := in.Run(expr); err != nil {
			return err
		}
		if verbose {
			printStats(heap)
		}
	}
}

func runREPL(heap *gc.Heap, in *interp.Interp) error {
	fmt.Println("GCL REPL - Schorr-Waite mark-sweep heap")
	fmt.Printf("  capacity: %d objects\n", heap.Capacity())
	fmt.Println()
	fmt.Println("Type 'help' for commands, 'quit' to exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("gcl> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			fmt.Println("Goodbye!")
			return nil
		case "stats":
			printStats(heap)
			continue
		case "help":
			printREPLHelp()
			continue
		}

		if err := replEval(heap, in, line); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if verbose {
			printStats(heap)
		}
	}
}

// replEval evaluates one line, printing each expression's value. Usage
// faults abort the process as they do in batch mode, except unbound
// variables, which are common enough interactively to report and continue.
func replEval(heap *gc.Heap, in *interp.Interp, line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fault, ok := r.(*gclerrors.RuntimeError)
			if !ok || !errors.Is(fault, gclerrors.New(gclerrors.CodeUnboundAtom, "")) {
				panic(r)
			}
			heap.ResetStacks()
			err = fault
		}
	}()

	p := parser.New(heap, line)
	for {
		expr, perr := p.Parse()
		if perr == io.EOF {
			return nil
		}
		if perr != nil {
			return perr
		}
		result, rerr := in.Run(expr)
		if rerr != nil {
			return rerr
		}
		fmt.Println(in.Format(result))
	}
}

func printStats(heap *gc.Heap) {
	st := heap.Stats()
	fmt.Fprintf(os.Stderr, "heap: %d live, %d collections, %d reclaimed\n",
		st.LiveObjects, st.Collections, st.ObjectsReclaimed)
}

func printREPLHelp() {
	fmt.Println("Commands:")
	fmt.Println("  quit     - exit the REPL")
	fmt.Println("  stats    - print collector statistics")
	fmt.Println("  help     - show this help")
	fmt.Println()
	fmt.Println("Language:")
	fmt.Println("  ATOM                    - variable lookup")
	fmt.Println("  (EXPR EXPR)             - function application")
	fmt.Println("  (fun (PARAM BODY))      - lambda expression")
	fmt.Println("  (quote EXPR)            - literal expression")
	fmt.Println()
	fmt.Println("Built-ins:")
	fmt.Println("  print_atom              - print an atom's text")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  (print_atom (quote Hello_world!))")
	fmt.Println("  ((fun (x x)) (quote self))")
}
