package episode

import (
	"context"
	"fmt"

	"podknight/internal/tasktree"
)

type task = tasktree.Task[*RunContext]

func uploadEnabled(rc *RunContext) bool { return rc.Upload }

// buildTree lays out the run:
//
//	<name>                      sequential, rollback publishes the failure
//	├── Checklist               concurrent
//	├── Parts                   concurrent
//	│   └── Part N: <file>      concurrent over formats
//	│       └── <output>        sequential: Encode, Upload
//	└── Wrap up                 sequential
func (o *Orchestrator) buildTree(run *Run) *task {
	checklist := tasktree.Group("Checklist", tasktree.Concurrent, []*task{
		tasktree.Leaf("Encoder binaries", o.checkBinaries),
		tasktree.Leaf("Output directory", o.checkOutputDir),
		tasktree.Leaf("Free disk space", o.checkFreeSpace),
		tasktree.Leaf("Remote destination", o.checkRemote, tasktree.WithEnabled(uploadEnabled)),
	})

	parts := tasktree.Group[*RunContext]("Parts", tasktree.Concurrent, nil)
	for _, part := range run.Plan.Parts {
		partGroup := tasktree.Group[*RunContext](fmt.Sprintf("Part %d: %s", part.Index+1, part.Filename), tasktree.Concurrent, nil)
		for _, out := range run.OutputsFor(part) {
			partGroup.Add(tasktree.Group(out.Name, tasktree.Sequential, []*task{
				tasktree.Leaf("Encode", o.encodeStep(out)),
				tasktree.Leaf("Upload", o.uploadStep(out), tasktree.WithEnabled(uploadEnabled)),
			}))
		}
		parts.Add(partGroup)
	}

	wrapUp := tasktree.Group("Wrap up", tasktree.Sequential, []*task{
		tasktree.Leaf("Record history", o.recordHistory, tasktree.WithEnabled(func(*RunContext) bool {
			return o.history != nil
		})),
	})

	var root *task
	root = tasktree.Group(run.Name(), tasktree.Sequential, []*task{checklist, parts, wrapUp},
		tasktree.WithRollback(func(ctx context.Context, rc *RunContext, err error) {
			o.publishFailure(ctx, rc, root.Snapshot(rc), err)
		}))
	return root
}
