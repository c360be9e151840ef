package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"quill/config"
	"quill/eval"
	"quill/native"
	"quill/scan"
	"quill/trace"
	"quill/types"
)

func main() {
	configPath := flag.String("config", "", "Runtime tuning file (yaml)")
	evalExpr := flag.String("eval", "", "Evaluate an expression (e.g., \"add 1 2\")")

	traceEnabled := flag.Bool("trace", false, "Enable execution tracing")
	traceFilter := flag.String("trace-filter", "", "Trace filter pattern (glob, e.g., 'do' or 'fulfill')")

	showStats := flag.Bool("stats", false, "Print heap statistics after evaluation")
	flag.Parse()

	opts := eval.Options{}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		opts = cfg.Options()
	}

	m, err := eval.NewMachine(opts)
	if err != nil {
		log.Fatalf("Failed to create machine: %v", err)
	}
	if err := native.Install(m); err != nil {
		log.Fatalf("Failed to install natives: %v", err)
	}

	var filters []string
	if *traceFilter != "" {
		filters = strings.Split(*traceFilter, ",")
	}
	trace.New(*traceEnabled, filters, nil).Attach(m)

	source := *evalExpr
	if source == "" {
		if flag.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "usage: quill [flags] script | quill -eval \"expression\"")
			flag.Usage()
			os.Exit(2)
		}
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			log.Fatalf("Failed to read script: %v", err)
		}
		source = string(data)
	}

	code, err := scan.Load(m.Heap, source)
	if err != nil {
		log.Fatalf("Failed to scan source: %v", err)
	}

	var out types.Cell
	if qerr := m.Do(&out, code); qerr != nil {
		if qerr.IsHalt() {
			fmt.Fprintln(os.Stderr, "** halted")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "** %s error: %s\n", qerr.ID, qerr.Error())
		os.Exit(1)
	}
	fmt.Println("==", m.Mold(&out))

	if *showStats {
		st := m.Heap.Stats()
		log.Printf("heap: units=%d free=%d outstanding=%d collections=%d swept=%d ticks=%d",
			st.UnitsTotal, st.UnitsFree, st.Outstanding, st.Collections, st.Swept, m.Tick())
	}
}
