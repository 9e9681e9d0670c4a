package cutplan

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"podknight/internal/timecode"
)

// Plan is the validated list of Parts for one source.
type Plan struct {
	Parts          []Part
	Start          float64
	End            float64
	SourceDuration float64
}

// Build walks the cut points and emits Parts. It returns an
// *InvalidPlanError when an interval runs backwards or past the source.
func Build(in Input) (Plan, error) {
	start := 0.0
	if in.Start != nil {
		start = *in.Start
	}
	end := in.SourceDuration
	if in.End != nil {
		end = *in.End
	}

	var (
		parts     []Part
		partStart = start
		partI     = 0
		skipNext  = false
	)
	emit := func(stop float64) {
		spec := in.PartSpecs.At(partI)
		if !spec.Disabled {
			parts = append(parts, Part{
				Index:    partI,
				Start:    partStart,
				End:      stop,
				Filename: spec.Filename(partI, in.BaseName),
			})
		}
	}

	for _, cut := range in.CutPoints {
		if cut.Skip {
			skipNext = true
			continue
		}
		if skipNext {
			skipNext = false
			partStart = cut.Seconds
			continue
		}
		emit(cut.Seconds)
		partStart = cut.Seconds
		partI++
	}
	emit(end)

	for _, part := range parts {
		if part.End < part.Start {
			return Plan{}, &InvalidPlanError{Index: part.Index, Start: part.Start, End: part.End, Reason: "ends before it starts"}
		}
	}
	if n := len(parts); n > 0 {
		last := parts[n-1]
		if last.End > in.SourceDuration {
			return Plan{}, &InvalidPlanError{
				Index:  last.Index,
				Start:  last.Start,
				End:    last.End,
				Reason: fmt.Sprintf("ends after the source (%s)", timecode.Format(in.SourceDuration)),
			}
		}
	}

	return Plan{Parts: parts, Start: start, End: end, SourceDuration: in.SourceDuration}, nil
}

// TotalDuration sums the emitted Parts.
func (p Plan) TotalDuration() float64 {
	var total float64
	for _, part := range p.Parts {
		total += part.Duration()
	}
	return total
}

// Summary renders every Part for operator confirmation.
func (p Plan) Summary() string {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault

	tw := table.NewWriter()
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"#", "Start", "End", "Duration", "File"})
	for _, part := range p.Parts {
		tw.AppendRow(table.Row{
			part.Index + 1,
			timecode.Format(part.Start),
			timecode.Format(part.End),
			timecode.Format(part.Duration()),
			part.Filename,
		})
	}
	tw.AppendFooter(table.Row{
		"",
		"",
		"",
		timecode.Format(p.TotalDuration()),
		fmt.Sprintf("%d part(s)", len(p.Parts)),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Source %s, using %s - %s\n", timecode.Format(p.SourceDuration), timecode.Format(p.Start), timecode.Format(p.End))
	b.WriteString(tw.Render())
	return b.String()
}
