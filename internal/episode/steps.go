package episode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"podknight/internal/encoder"
	"podknight/internal/fileutil"
	"podknight/internal/history"
	"podknight/internal/logging"
	"podknight/internal/preflight"
	"podknight/internal/services"
	"podknight/internal/storage"
	"podknight/internal/tasktree"
	"podknight/internal/textutil"
	"podknight/internal/timecode"
)

// progressBucket is the percent step between logged encoder progress lines.
const progressBucket = 10

func report(t *task, r preflight.Result) error {
	t.SetOutput(r.Detail)
	return r.Err()
}

func (o *Orchestrator) checkBinaries(_ context.Context, _ *RunContext, t *task) error {
	return report(t, preflight.CheckEncoderBinaries(o.cfg.Encoder))
}

func (o *Orchestrator) checkOutputDir(_ context.Context, rc *RunContext, t *task) error {
	return report(t, preflight.CheckDirectoryAccess("Output directory", rc.Run.Request.OutputDir))
}

func (o *Orchestrator) checkFreeSpace(_ context.Context, rc *RunContext, t *task) error {
	minGiB := o.cfg.Encoder.MinFreeGiB
	scratch := preflight.CheckFreeSpace("Scratch space", rc.ScratchDir, minGiB)
	output := preflight.CheckFreeSpace("Output space", rc.Run.Request.OutputDir, minGiB)
	t.SetOutput(scratch.Detail + "; " + output.Detail)
	return errors.Join(scratch.Err(), output.Err())
}

func (o *Orchestrator) checkRemote(ctx context.Context, rc *RunContext, t *task) error {
	keys := make([]string, 0, len(rc.Run.Outputs))
	for _, out := range rc.Run.Outputs {
		keys = append(keys, out.Key)
	}
	return report(t, preflight.CheckRemote(ctx, o.store, o.cfg.Storage.Bucket, keys, o.cfg.Storage.OverwriteExisting))
}

// encodeStep renders out into the scratch directory behind the pool for its
// kind, then publishes it into the output directory.
func (o *Orchestrator) encodeStep(out Output) tasktree.RunFunc[*RunContext] {
	return func(ctx context.Context, rc *RunContext, t *task) error {
		ctx = services.WithStage(services.WithFormat(services.WithPart(ctx, out.Part.Index), out.Format.Label()), "encode")
		logger := logging.WithContext(ctx, o.logger)

		gate := rc.pools.For(out.Format.Kind)
		if gate.Ongoing() >= gate.Capacity() {
			t.SetOutput(fmt.Sprintf("waiting for %s encoder slot", gate.Name()))
		}
		if err := gate.Acquire(ctx); err != nil {
			return err
		}
		defer gate.Release()

		scratch := filepath.Join(rc.ScratchDir, out.Name)
		total := out.Part.Duration()
		sampler := logging.NewProgressSampler(progressBucket)
		runner := encoder.NewRunner(o.cfg.Encoder.FFmpegBinary, rc.ScratchDir, o.base)

		t.SetOutput("starting " + out.Name)
		logger.Info("encode started",
			logging.String(logging.FieldEventType, "encode_start"),
			logging.String("output", out.Name),
			logging.String("window", timecode.Format(out.Part.Start)+"-"+timecode.Format(out.Part.End)),
		)
		_, err := runner.Run(ctx, encoder.BuildArgs(rc.Run.Request.Source, out.Part, out.Format, scratch), func(line string) {
			percent, ok := encoder.ParseProgress(line, total)
			if !ok {
				t.SetOutput(line)
				return
			}
			t.SetOutput(fmt.Sprintf("%.0f%% %s", percent, line))
			if sampler.Crossed(percent) {
				logger.Info("encode progress", logging.Float64("percent", percent))
			}
		})
		if err != nil {
			_ = os.Remove(scratch)
			logging.ErrorWithContext(logger, "encode failed", "encode_failed",
				logging.String(logging.FieldErrorHint, "check the encoder output tail and the encoding flags for this format"),
				logging.Error(err),
			)
			return err
		}

		digest, err := fileutil.Publish(scratch, out.Path)
		if err != nil {
			return services.Wrap(services.ErrEnvironment, "encode", "publish",
				fmt.Sprintf("could not move %s into %s", out.Name, rc.Run.Request.OutputDir), err)
		}
		rc.results.encoded(out, digest)
		t.SetOutput(out.Path)
		logger.Info("encode completed",
			logging.String(logging.FieldEventType, "encode_complete"),
			logging.String("path", out.Path),
			logging.Int64("size_bytes", digest.Size),
			logging.String("sha256", digest.SHA256),
		)
		return nil
	}
}

// uploadStep places the published file in the object store.
func (o *Orchestrator) uploadStep(out Output) tasktree.RunFunc[*RunContext] {
	return func(ctx context.Context, rc *RunContext, t *task) error {
		ctx = services.WithStage(services.WithFormat(services.WithPart(ctx, out.Part.Index), out.Format.Label()), "upload")
		logger := logging.WithContext(ctx, o.logger)
		if o.store == nil {
			return services.Wrap(services.ErrConfiguration, "upload", "store", "object store not configured", nil)
		}

		meta := storage.Metadata{
			"podknight-run":  rc.Run.ID,
			"podknight-name": textutil.SanitizeToken(rc.Run.Name()),
			"podknight-part": strconv.Itoa(out.Part.Index + 1),
		}
		if digest, ok := rc.results.digest(out); ok {
			meta["sha256"] = digest.SHA256
		}

		t.SetOutput("uploading to " + out.Key)
		loc, err := storage.UploadFile(ctx, o.store, o.cfg.Storage.Bucket, out.Key, out.Path, meta)
		if err != nil {
			logging.ErrorWithContext(logger, "upload failed", "upload_failed",
				logging.String(logging.FieldErrorHint, "check storage credentials and bucket permissions"),
				logging.Error(err),
			)
			return err
		}
		rc.results.uploaded(out, loc)
		t.SetOutput(loc.String())
		logger.Info("upload completed",
			logging.String(logging.FieldEventType, "upload_complete"),
			logging.String("location", loc.String()),
		)
		return nil
	}
}

func (o *Orchestrator) recordHistory(ctx context.Context, rc *RunContext, t *task) error {
	recorded := 0
	for _, res := range rc.results.list() {
		if !res.Encoded {
			continue
		}
		err := o.history.RecordOutput(ctx, history.Output{
			RunID:          rc.Run.ID,
			PartIndex:      res.Output.Part.Index,
			Format:         res.Output.Format.Label(),
			LocalPath:      res.Output.Path,
			RemoteLocation: remoteString(res),
			SizeBytes:      res.Digest.Size,
			SHA256:         res.Digest.SHA256,
		})
		if err != nil {
			return services.Wrap(services.ErrStorage, "wrap up", "history", "output could not be recorded", err)
		}
		recorded++
	}
	t.SetOutput(fmt.Sprintf("%d output(s) recorded", recorded))
	return nil
}

func remoteString(res OutputResult) string {
	if !res.Uploaded {
		return ""
	}
	return res.Location.String()
}
