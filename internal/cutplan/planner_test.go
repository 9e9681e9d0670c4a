package cutplan

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"podknight/internal/services"
)

func ptr(v float64) *float64 { return &v }

func TestBuildDefaultSuffixes(t *testing.T) {
	plan, err := Build(Input{
		SourceDuration: 4000,
		End:            ptr(240),
		CutPoints:      []CutPoint{At(60), At(120), At(180)},
		BaseName:       "ep",
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	want := []Part{
		{Index: 0, Start: 0, End: 60, Filename: "ep_1"},
		{Index: 1, Start: 60, End: 120, Filename: "ep_2"},
		{Index: 2, Start: 120, End: 180, Filename: "ep_3"},
		{Index: 3, Start: 180, End: 240, Filename: "ep_4"},
	}
	if !reflect.DeepEqual(plan.Parts, want) {
		t.Fatalf("unexpected parts:\n got %#v\nwant %#v", plan.Parts, want)
	}
}

func TestBuildSkipDiscardsInterval(t *testing.T) {
	plan, err := Build(Input{
		SourceDuration: 4000,
		Start:          ptr(60),
		End:            ptr(240),
		CutPoints:      []CutPoint{At(120), Skip(), At(180)},
		BaseName:       "ep",
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	want := []Part{
		{Index: 0, Start: 60, End: 120, Filename: "ep_1"},
		{Index: 1, Start: 180, End: 240, Filename: "ep_2"},
	}
	if !reflect.DeepEqual(plan.Parts, want) {
		t.Fatalf("unexpected parts:\n got %#v\nwant %#v", plan.Parts, want)
	}
}

func TestBuildDisabledPartConsumesBoundary(t *testing.T) {
	plan, err := Build(Input{
		SourceDuration: 4000,
		End:            ptr(300),
		CutPoints:      []CutPoint{At(100), At(200)},
		PartSpecs:      PartSpecs{{Suffix: "_episode"}, DisabledPart, {Suffix: "_bonus"}},
		BaseName:       "show",
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	want := []Part{
		{Index: 0, Start: 0, End: 100, Filename: "show_episode"},
		{Index: 2, Start: 200, End: 300, Filename: "show_bonus"},
	}
	if !reflect.DeepEqual(plan.Parts, want) {
		t.Fatalf("unexpected parts:\n got %#v\nwant %#v", plan.Parts, want)
	}
}

func TestBuildPrefixOverride(t *testing.T) {
	plan, err := Build(Input{
		SourceDuration: 100,
		CutPoints:      []CutPoint{At(50)},
		PartSpecs:      PartSpecs{{Prefix: "pre-"}},
		BaseName:       "ep",
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if plan.Parts[0].Filename != "pre-ep_1" || plan.Parts[1].Filename != "ep_2" {
		t.Fatalf("unexpected filenames: %q %q", plan.Parts[0].Filename, plan.Parts[1].Filename)
	}
}

func TestBuildRepeatedAndEdgeSkips(t *testing.T) {
	tests := []struct {
		name string
		cuts []CutPoint
		want []Part
	}{
		{
			name: "double skip",
			cuts: []CutPoint{At(10), Skip(), Skip(), At(20)},
			want: []Part{{Index: 0, Start: 0, End: 10, Filename: "x_1"}, {Index: 1, Start: 20, End: 30, Filename: "x_2"}},
		},
		{
			name: "leading skip",
			cuts: []CutPoint{Skip(), At(5)},
			want: []Part{{Index: 0, Start: 5, End: 30, Filename: "x_1"}},
		},
		{
			name: "trailing skip",
			cuts: []CutPoint{At(10), Skip()},
			want: []Part{{Index: 0, Start: 0, End: 10, Filename: "x_1"}, {Index: 1, Start: 10, End: 30, Filename: "x_2"}},
		},
		{
			name: "only skips",
			cuts: []CutPoint{Skip(), Skip()},
			want: []Part{{Index: 0, Start: 0, End: 30, Filename: "x_1"}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := Build(Input{SourceDuration: 30, CutPoints: tc.cuts, BaseName: "x"})
			if err != nil {
				t.Fatalf("Build returned error: %v", err)
			}
			if !reflect.DeepEqual(plan.Parts, tc.want) {
				t.Fatalf("unexpected parts:\n got %#v\nwant %#v", plan.Parts, tc.want)
			}
		})
	}
}

func TestBuildAllDisabledYieldsNoParts(t *testing.T) {
	plan, err := Build(Input{
		SourceDuration: 100,
		CutPoints:      []CutPoint{At(50)},
		PartSpecs:      PartSpecs{DisabledPart, DisabledPart},
		BaseName:       "ep",
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(plan.Parts) != 0 {
		t.Fatalf("expected no parts, got %#v", plan.Parts)
	}
}

func TestBuildRejectsBackwardsPart(t *testing.T) {
	_, err := Build(Input{
		SourceDuration: 400,
		CutPoints:      []CutPoint{At(120), At(60)},
		BaseName:       "ep",
	})
	if !errors.Is(err, services.ErrInvalidPlan) {
		t.Fatalf("expected invalid plan error, got %v", err)
	}
	var planErr *InvalidPlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("expected *InvalidPlanError, got %T", err)
	}
	if planErr.Index != 1 || planErr.Start != 120 || planErr.End != 60 {
		t.Fatalf("unexpected offending interval: %#v", planErr)
	}
	if !strings.Contains(err.Error(), "00:02:00.000") {
		t.Fatalf("expected interval in message, got %q", err.Error())
	}
}

func TestBuildRejectsEndPastSource(t *testing.T) {
	_, err := Build(Input{
		SourceDuration: 200,
		End:            ptr(240),
		CutPoints:      []CutPoint{At(60)},
		BaseName:       "ep",
	})
	var planErr *InvalidPlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("expected *InvalidPlanError, got %v", err)
	}
	if planErr.Index != 1 || planErr.End != 240 {
		t.Fatalf("unexpected offending interval: %#v", planErr)
	}
}

func TestParseCutPoints(t *testing.T) {
	points, err := ParseCutPoints([]string{"01:00", "SKIP", "1:02:03.5", " 90 "})
	if err != nil {
		t.Fatalf("ParseCutPoints returned error: %v", err)
	}
	want := []CutPoint{At(60), Skip(), At(3723.5), At(90)}
	if !reflect.DeepEqual(points, want) {
		t.Fatalf("unexpected points: %#v", points)
	}

	_, err = ParseCutPoints([]string{"01:00", "nope"})
	if !errors.Is(err, services.ErrFormat) {
		t.Fatalf("expected format error, got %v", err)
	}
	if !strings.Contains(err.Error(), "cut point 2") {
		t.Fatalf("expected position in error, got %q", err.Error())
	}
}

func TestSummaryListsEveryPart(t *testing.T) {
	plan, err := Build(Input{
		SourceDuration: 4000,
		End:            ptr(240),
		CutPoints:      []CutPoint{At(60), At(120)},
		BaseName:       "ep",
	})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	summary := plan.Summary()
	for _, fragment := range []string{"ep_1", "ep_2", "ep_3", "00:01:00.000", "00:02:00.000", "00:04:00.000", "3 part(s)", "01:06:40.000"} {
		if !strings.Contains(summary, fragment) {
			t.Fatalf("expected %q in summary:\n%s", fragment, summary)
		}
	}
	if plan.Summary() != summary {
		t.Fatal("summary must be deterministic")
	}
}

func genInput(rt *rapid.T) Input {
	duration := rapid.Float64Range(1, 20000).Draw(rt, "duration")
	n := rapid.IntRange(0, 8).Draw(rt, "cuts")
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		values = append(values, rapid.Float64Range(0, duration).Draw(rt, "cut"))
	}
	sort.Float64s(values)
	cuts := make([]CutPoint, 0, n)
	for _, v := range values {
		if rapid.Bool().Draw(rt, "skipBefore") {
			cuts = append(cuts, Skip())
		}
		cuts = append(cuts, At(v))
	}
	specs := make(PartSpecs, rapid.IntRange(0, 10).Draw(rt, "specs"))
	for i := range specs {
		specs[i].Disabled = rapid.Bool().Draw(rt, "disabled")
	}
	return Input{SourceDuration: duration, CutPoints: cuts, PartSpecs: specs, BaseName: "ep"}
}

func TestProperty_BuildIsDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := genInput(rt)
		first, err1 := Build(in)
		second, err2 := Build(in)
		if (err1 == nil) != (err2 == nil) {
			rt.Fatalf("inconsistent errors: %v vs %v", err1, err2)
		}
		if !reflect.DeepEqual(first, second) {
			rt.Fatalf("plans differ:\n%#v\n%#v", first, second)
		}
	})
}

func TestProperty_SortedCutsYieldOrderedDisjointParts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		in := genInput(rt)
		plan, err := Build(in)
		if err != nil {
			rt.Fatalf("sorted cuts inside the source must plan cleanly: %v", err)
		}
		for i, part := range plan.Parts {
			if part.End < part.Start {
				rt.Fatalf("part %d runs backwards: %#v", i, part)
			}
			if in.PartSpecs.Disabled(part.Index) {
				rt.Fatalf("disabled index %d emitted", part.Index)
			}
			if i > 0 {
				prev := plan.Parts[i-1]
				if part.Index <= prev.Index {
					rt.Fatalf("indexes not increasing: %d then %d", prev.Index, part.Index)
				}
				if part.Start < prev.End {
					rt.Fatalf("parts overlap: %#v and %#v", prev, part)
				}
			}
		}
	})
}
