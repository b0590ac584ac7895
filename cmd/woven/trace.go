package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/woven-lang/woven/pkg/evaluator"
)

// TraceSummary aggregates the NDJSON events written by `woven run --trace`.
type TraceSummary struct {
	RunID          string         `json:"runId"`
	TotalEvents    int            `json:"totalEvents"`
	Statements     int            `json:"statements"`
	FnCalls        int            `json:"fnCalls"`
	CallsByName    map[string]int `json:"callsByName"`
	NativeCalls    int            `json:"nativeCalls"`
	Instances      int            `json:"instances"`
	BudgetExceeded int            `json:"budgetExceeded"`
	Steps          int64          `json:"steps"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	DurationMs     float64        `json:"durationMs"`
}

func (a *app) cmdTrace(args []string) int {
	var file string
	textOutput := false
	for _, arg := range args {
		switch arg {
		case "--text":
			textOutput = true
		case "--json":
			textOutput = false
		default:
			if arg == "-" || !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(a.stderr, "usage: woven trace <file.jsonl> [--text]")
		return exitUsage
	}

	var r io.Reader = a.stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			fmt.Fprintf(a.stderr, "cannot read trace file: %s\n", file)
			return exitUsage
		}
		defer f.Close()
		r = f
	}

	summary := computeTraceSummary(r)
	if textOutput {
		printTraceSummaryText(a.stdout, summary)
		return exitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(a.stdout, string(b))
	return exitOK
}

func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{CallsByName: make(map[string]int)}
	haveDuration := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event evaluator.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue // skip invalid lines
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.Timestamp
			if n, err := strconv.ParseInt(event.Data["steps"], 10, 64); err == nil {
				summary.Steps += n
			}
			if ms, err := strconv.ParseFloat(event.Data["durationMs"], 64); err == nil {
				summary.DurationMs += ms
				haveDuration = true
			}
		case evaluator.TraceStmtStart:
			summary.Statements++
		case evaluator.TraceFnCallStart:
			summary.FnCalls++
			if name := event.Data["fn"]; name != "" {
				summary.CallsByName[name]++
			}
		case evaluator.TraceNativeCall:
			summary.NativeCalls++
			if name := event.Data["fn"]; name != "" {
				summary.CallsByName[name]++
			}
		case evaluator.TraceInstantiate:
			summary.Instances++
		case evaluator.TraceBudgetExceeded:
			summary.BudgetExceeded++
		}
	}

	if !haveDuration && summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := parseTime(summary.StartTime)
		end, err2 := parseTime(summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Milliseconds())
		}
	}

	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d (%d steps)\n", s.Statements, s.Steps)
	fmt.Fprintf(w, "Calls: %d user, %d native\n", s.FnCalls, s.NativeCalls)
	names := make([]string, 0, len(s.CallsByName))
	for name := range s.CallsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.CallsByName[name])
	}
	fmt.Fprintf(w, "Instances: %d\n", s.Instances)
	if s.BudgetExceeded > 0 {
		fmt.Fprintf(w, "Budget exceeded: %d\n", s.BudgetExceeded)
	}
	fmt.Fprintf(w, "Duration: %.0fms\n", s.DurationMs)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
