package pipeline

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/ppiankov/claimsift/internal/model"
)

// Renderer prints human-readable run summaries
type Renderer struct {
	out     io.Writer
	heading *color.Color
	label   *color.Color
	labels  map[model.Classification]*color.Color
	faint   *color.Color
}

// NewRenderer creates a renderer writing to out
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	r := &Renderer{
		out:     out,
		heading: color.New(color.FgCyan, color.Bold),
		label:   color.New(color.Bold),
		faint:   color.New(color.Faint),
		labels: map[model.Classification]*color.Color{
			model.ClassificationTrue:         color.New(color.FgGreen, color.Bold),
			model.ClassificationFalse:        color.New(color.FgRed, color.Bold),
			model.ClassificationMisleading:   color.New(color.FgYellow, color.Bold),
			model.ClassificationUnverifiable: color.New(color.FgMagenta, color.Bold),
		},
	}
	if noColor {
		for _, c := range r.all() {
			c.DisableColor()
		}
	}
	return r
}

func (r *Renderer) all() []*color.Color {
	out := []*color.Color{r.heading, r.label, r.faint}
	for _, c := range r.labels {
		out = append(out, c)
	}
	return out
}

// RenderSummary prints the outcome of a run followed by its claims
func (r *Renderer) RenderSummary(result *RunResult) {
	rule := strings.Repeat("═", 59)

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.heading.Sprint(rule))
	fmt.Fprintln(r.out, r.heading.Sprint("  claimsift run complete"))
	fmt.Fprintln(r.out, r.heading.Sprint(rule))
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %s %s\n", r.label.Sprint("Run:     "), result.RunID)
	fmt.Fprintf(r.out, "  %s %d\n", r.label.Sprint("Chunks:  "), result.Chunks)
	fmt.Fprintf(r.out, "  %s %d\n", r.label.Sprint("Batches: "), result.Batches)
	fmt.Fprintf(r.out, "  %s %d\n", r.label.Sprint("Claims:  "), len(result.Claims))
	if result.ReportPath != "" {
		fmt.Fprintf(r.out, "  %s %s\n", r.label.Sprint("Report:  "), result.ReportPath)
	} else {
		fmt.Fprintf(r.out, "  %s %s\n", r.label.Sprint("Report:  "), r.faint.Sprint("not written (no claims)"))
	}
	fmt.Fprintf(r.out, "  %s %s\n", r.label.Sprint("Took:    "), result.Duration.Round(time.Millisecond))
	fmt.Fprintln(r.out)

	r.RenderClaims(result.Claims)
}

// RenderClaims prints one block per claim
func (r *Renderer) RenderClaims(claims []model.Claim) {
	for i, c := range claims {
		fmt.Fprintf(r.out, "  %d. [%s] %s\n", i+1, r.classification(c.Classification), c.Claim)
		if c.Reason != "" {
			fmt.Fprintf(r.out, "     %s\n", c.Reason)
		}
		fmt.Fprintf(r.out, "     %s\n", r.faint.Sprintf("%s, %d chunks", c.BatchID, c.ChunkCount))
	}
	if len(claims) > 0 {
		fmt.Fprintln(r.out)
	}
}

func (r *Renderer) classification(c model.Classification) string {
	if col, ok := r.labels[c]; ok {
		return col.Sprint(string(c))
	}
	return r.label.Sprint(string(c))
}
