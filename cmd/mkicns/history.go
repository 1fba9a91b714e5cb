package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Mavwarf/mkicns/internal/history"
	"github.com/Mavwarf/mkicns/internal/paths"
)

func historyCmd(args []string) {
	if len(args) > 0 {
		switch args[0] {
		case "clear":
			historyClear()
			return
		case "clean":
			historyClean(args[1:])
			return
		}
	}

	count := 10
	if len(args) > 0 {
		v := args[0]
		if v == "-n" && len(args) > 1 {
			v = args[1]
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "Error: count must be a positive integer\n")
			os.Exit(1)
		}
		count = n
	}

	path := paths.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No history found. Enable it with --log or \"log\": true in config.")
		return
	}

	store := openHistory(path)
	defer store.Close()
	runs, err := store.Recent(count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("History is empty.")
		return
	}
	printRuns(os.Stdout, runs)
}

func openHistory(path string) *history.Store {
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return store
}

// printRuns writes one block per run, newest first, separated by blank
// lines.
func printRuns(w io.Writer, runs []history.Record) {
	for i, r := range runs {
		fmt.Fprintf(w, "%s  %s  %s\n", r.Time.Local().Format("2006-01-02 15:04:05"), outcomeLabel(r.Outcome), r.Document)
		fmt.Fprintf(w, "  size:     %gx%g px\n", r.Width, r.Height)
		if len(r.Warnings) > 0 {
			fmt.Fprintf(w, "  warnings: %s\n", strings.Join(r.Warnings, ", "))
		}
		if r.IcnsPath != "" {
			fmt.Fprintf(w, "  icns:     %s\n", r.IcnsPath)
		}
		if len(r.ExitCodes) > 0 {
			codes := make([]string, len(r.ExitCodes))
			for j, c := range r.ExitCodes {
				codes[j] = strconv.Itoa(c)
			}
			fmt.Fprintf(w, "  exit:     %s\n", strings.Join(codes, ", "))
		}
		if r.Duration > 0 {
			fmt.Fprintf(w, "  took:     %s\n", r.Duration.Round(time.Millisecond))
		}
		if r.Message != "" {
			fmt.Fprintf(w, "  message:  %s\n", r.Message)
		}
		if i < len(runs)-1 {
			fmt.Fprintln(w)
		}
	}
}

func outcomeLabel(o history.Outcome) string {
	return fmt.Sprintf("%-9s", strings.ToUpper(string(o)))
}

func historyClear() {
	path := paths.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("History is empty.")
		return
	}
	store := openHistory(path)
	defer store.Close()
	if err := store.Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("History cleared.")
}

func historyClean(args []string) {
	if len(args) == 0 {
		historyClear()
		return
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days <= 0 {
		fmt.Fprintf(os.Stderr, "Error: days must be a positive integer\n")
		os.Exit(1)
	}
	path := paths.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("History is empty.")
		return
	}
	store := openHistory(path)
	defer store.Close()
	n, err := store.Clean(days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %d runs older than %d days.\n", n, days)
}
