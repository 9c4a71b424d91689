package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ai-zerolab/lightblue/internal/events"
)

// StdoutRenderer streams events to a plain text writer.
type StdoutRenderer struct {
	w                  io.Writer
	mu                 sync.Mutex
	verbose            bool
	quiet              bool
	printedFinalHeader bool
	sawDelta           bool
	endedWithNewline   bool
}

// NewStdoutRenderer creates a renderer for plain text streaming.
func NewStdoutRenderer(w io.Writer, verbose bool, quiet bool) *StdoutRenderer {
	return &StdoutRenderer{w: w, verbose: verbose, quiet: quiet}
}

func (r *StdoutRenderer) Emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case events.RunStarted:
		if payload, ok := event.Payload.(events.RunStartedPayload); ok {
			if r.quiet {
				return
			}
			fmt.Fprintf(r.w, "lightblue v%s | model: %s | tools: %d | run: %s\n", payload.Version, payload.Model, payload.ToolCount, payload.RunID)
		}
	case events.ToolCallStarted:
		if payload, ok := event.Payload.(events.ToolCallStartedPayload); ok {
			if r.quiet || !r.verbose {
				return
			}
			fmt.Fprintf(r.w, "tool: %s start\n", payload.ToolName)
			fmt.Fprintf(r.w, "input: %v\n", payload.Input)
		}
	case events.ToolCallFinished, events.ToolCallFailed:
		if payload, ok := event.Payload.(events.ToolCallFinishedPayload); ok {
			if r.quiet {
				return
			}
			status := payload.Status
			if status == "success" {
				status = "ok"
			}
			fmt.Fprintf(r.w, "tool: %s %s (%dms)\n", payload.ToolName, status, payload.DurationMs)
			if r.verbose && payload.Preview != "" {
				fmt.Fprintln(r.w, payload.Preview)
			}
		}
	case events.ModelDelta:
		if payload, ok := event.Payload.(events.ModelDeltaPayload); ok {
			if !r.printedFinalHeader && !r.quiet {
				fmt.Fprintln(r.w)
				r.printedFinalHeader = true
			}
			r.sawDelta = true
			fmt.Fprint(r.w, payload.Delta)
			r.endedWithNewline = strings.HasSuffix(payload.Delta, "\n")
		}
	case events.FinalAnswerReady:
		if payload, ok := event.Payload.(events.FinalAnswerPayload); ok {
			if r.sawDelta {
				if !r.endedWithNewline {
					fmt.Fprintln(r.w)
				}
				return
			}
			fmt.Fprintln(r.w, payload.Answer)
		}
	case events.RunError:
		if payload, ok := event.Payload.(events.RunErrorPayload); ok {
			fmt.Fprintf(r.w, "error: %s\n", payload.Message)
		}
	}
}

func (r *StdoutRenderer) Close() error { return nil }
