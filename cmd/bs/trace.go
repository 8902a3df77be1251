package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/blockcraft/blockscript/pkg/evaluator"
	"github.com/blockcraft/blockscript/pkg/runtime"
)

var (
	summaryFlag = cli.BoolFlag{
		Name:  "summary",
		Usage: "Print a summary of the run instead of every event",
	}

	traceCommand = cli.Command{
		Action:    withEnv(traceProgram),
		Name:      "trace",
		Usage:     "Run a program and print its trace events as JSON lines",
		ArgsUsage: "<file|->",
		Flags:     []cli.Flag{summaryFlag, prettyFlag},
	}
)

// TraceSummary aggregates the events of one run.
type TraceSummary struct {
	RunID       string         `json:"runId"`
	TotalEvents int            `json:"totalEvents"`
	Statements  int            `json:"statements"`
	Calls       int            `json:"calls"`
	CallsByName map[string]int `json:"callsByName"`
	Loops       int            `json:"loops"`
	Resolves    int            `json:"resolves"`
	Prints      int            `json:"prints"`
	StartTime   string         `json:"startTime,omitempty"`
	EndTime     string         `json:"endTime,omitempty"`
	DurationMs  float64        `json:"durationMs"`
}

func traceProgram(ctx *cli.Context, e *env) error {
	source, filename, err := readSource(ctx)
	if err != nil {
		return reportIO(ctx, err)
	}
	summarize := ctx.Bool(summaryFlag.Name)

	var events []evaluator.TraceEvent
	enc := json.NewEncoder(ctx.App.Writer)
	record := func(ev evaluator.TraceEvent) {
		if summarize {
			events = append(events, ev)
			return
		}
		enc.Encode(ev)
	}
	_, runErr := e.newRuntime(runtime.WithTrace(record)).Run(source, filename)

	if summarize {
		s := summarizeTrace(events)
		if ctx.Bool(prettyFlag.Name) {
			printTraceSummaryText(ctx.App.Writer, s)
		} else {
			enc.Encode(s)
		}
	}
	if runErr != nil {
		return report(ctx, runErr)
	}
	return nil
}

func summarizeTrace(events []evaluator.TraceEvent) *TraceSummary {
	summary := &TraceSummary{CallsByName: make(map[string]int)}
	for _, ev := range events {
		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = ev.RunID
		}
		switch ev.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = ev.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = ev.Timestamp
		case evaluator.TraceStmtStart:
			summary.Statements++
		case evaluator.TraceCallStart:
			summary.Calls++
			summary.CallsByName[ev.Data["fn"]]++
		case evaluator.TraceLoopStart:
			summary.Loops++
		case evaluator.TraceResolve:
			summary.Resolves++
		case evaluator.TracePrint:
			summary.Prints++
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}
	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Calls: %d\n", s.Calls)
	names := make([]string, 0, len(s.CallsByName))
	for name := range s.CallsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.CallsByName[name])
	}
	fmt.Fprintf(w, "Loops: %d\n", s.Loops)
	fmt.Fprintf(w, "Lazy resolves: %d\n", s.Resolves)
	fmt.Fprintf(w, "Prints: %d\n", s.Prints)
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}
