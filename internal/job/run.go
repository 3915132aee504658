package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/graymix"
	"github.com/gogpu/graymix/internal/cache"
	"github.com/gogpu/graymix/internal/parallel"
)

// imageCacheSize bounds the decoded inputs kept between jobs. Photo pairs
// and a shared alpha file are read by several jobs of one run.
const imageCacheSize = 16

// Report lists what a run wrote and what it skipped.
type Report struct {
	mu      sync.Mutex
	Written []string
	Skipped []string

	// Digests maps each written path to the BLAKE3 digest of its bytes.
	Digests map[string]string
}

func (r *Report) wrote(path, digest string) {
	r.mu.Lock()
	r.Written = append(r.Written, path)
	if r.Digests == nil {
		r.Digests = make(map[string]string)
	}
	r.Digests[path] = digest
	r.mu.Unlock()
}

func (r *Report) skip(name string) {
	r.mu.Lock()
	r.Skipped = append(r.Skipped, name)
	r.mu.Unlock()
}

type runner struct {
	cfg     *Config
	logger  *slog.Logger
	encoder graymix.Encoder
	report  *Report
	images  *cache.Cache[string, *graymix.Buffer]
}

// Run executes every section of cfg in order and returns what was written.
//
// A size mismatch between blend operands is logged at Warn and the job is
// skipped. Any other failure stops the run and is returned; jobs of the
// same section that already started are cancelled.
func Run(ctx context.Context, cfg *Config, logger *slog.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = graymix.Logger()
	}
	r := &runner{
		cfg:     cfg,
		logger:  logger,
		encoder: cfg.Encoder(),
		report:  &Report{},
		images:  cache.New[string, *graymix.Buffer](imageCacheSize),
	}

	sections := []struct {
		name  Section
		tasks []parallel.Task
	}{
		{SectionMask, r.maskTasks()},
		{SectionGenerate, r.generateTasks()},
		{SectionBlend, r.blendTasks()},
	}
	for _, s := range sections {
		if len(s.tasks) == 0 {
			continue
		}
		r.logger.Info("running section", "section", string(s.name), "jobs", len(s.tasks))
		if err := parallel.Run(ctx, cfg.Workers, s.tasks); err != nil {
			return r.report, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	st := r.images.Stats()
	r.logger.Debug("image cache", "hits", st.Hits, "misses", st.Misses)
	return r.report, nil
}

func (r *runner) maskTasks() []parallel.Task {
	tasks := make([]parallel.Task, len(r.cfg.Mask))
	for i, j := range r.cfg.Mask {
		tasks[i] = func(context.Context) error { return r.mask(j) }
	}
	return tasks
}

func (r *runner) generateTasks() []parallel.Task {
	tasks := make([]parallel.Task, len(r.cfg.Generate))
	for i, j := range r.cfg.Generate {
		tasks[i] = func(context.Context) error { return r.generate(j) }
	}
	return tasks
}

func (r *runner) blendTasks() []parallel.Task {
	tasks := make([]parallel.Task, len(r.cfg.Blend))
	for i, j := range r.cfg.Blend {
		if j.Name == "" {
			j.Name = j.Output
		}
		tasks[i] = func(ctx context.Context) error { return r.blend(ctx, j) }
	}
	return tasks
}

func (r *runner) mask(j MaskJob) error {
	img, err := r.load(j.Input)
	if err != nil {
		return err
	}
	out, err := graymix.ApplyCircularMask(img)
	if err != nil {
		return fmt.Errorf("mask %s: %w", j.Input, err)
	}
	if err := r.save(j.Output, out); err != nil {
		return err
	}
	r.logger.Info("applied circular mask", "input", j.Input, "output", j.Output, "width", out.Width(), "height", out.Height())
	return nil
}

func (r *runner) generate(j GenerateJob) error {
	b, err := render(j.Pattern, j.Width, j.Height, j.Value)
	if err != nil {
		return fmt.Errorf("generate %s: %w", j.Output, err)
	}
	if err := r.save(j.Output, b); err != nil {
		return err
	}
	r.logger.Info("generated pattern", "pattern", string(j.Pattern), "output", j.Output, "width", b.Width(), "height", b.Height())

	if !j.Verify {
		return nil
	}
	back, err := graymix.LoadPNG(r.cfg.Resolve(j.Output))
	if err != nil {
		return err
	}
	if !back.Equal(b) {
		return fmt.Errorf("%w: %s: read back %s differs from the rendered pattern",
			graymix.ErrDecode, j.Output, back.String())
	}
	r.logger.Info("read back", "path", j.Output, "width", back.Width(), "height", back.Height())
	return nil
}

func (r *runner) blend(ctx context.Context, j BlendJob) error {
	srcs := [3]*Source{&j.A, &j.B, &j.Alpha}
	var bufs [3]*graymix.Buffer

	// Files first, so generated operands can take their size.
	w, h := j.Width, j.Height
	for i, s := range srcs {
		if s.Path == "" {
			continue
		}
		b, err := r.load(s.Path)
		if err != nil {
			return err
		}
		bufs[i] = b
		if w == 0 {
			w, h = b.Width(), b.Height()
		}
	}
	for i, s := range srcs {
		if s.Path != "" {
			continue
		}
		b, err := render(s.Pattern, w, h, s.Value)
		if err != nil {
			return fmt.Errorf("blend %s: %w", j.Name, err)
		}
		bufs[i] = b
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, s := range srcs {
		if s.Save == "" {
			continue
		}
		if err := r.save(s.Save, bufs[i]); err != nil {
			return err
		}
	}

	out, err := graymix.Blend(bufs[0], bufs[1], bufs[2])
	var mismatch *graymix.SizeMismatch
	if errors.As(err, &mismatch) {
		r.logger.Warn("skipping blend", "job", j.Name, "error", mismatch.Error())
		r.report.skip(j.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("blend %s: %w", j.Name, err)
	}
	if err := r.save(j.Output, out); err != nil {
		return err
	}
	r.logger.Info("blended", "job", j.Name, "output", j.Output, "width", out.Width(), "height", out.Height())
	return nil
}

// load decodes path once per run. Buffers are immutable, so jobs share them.
func (r *runner) load(path string) (*graymix.Buffer, error) {
	full := r.cfg.Resolve(path)
	return r.images.GetOrLoad(full, func() (*graymix.Buffer, error) {
		return graymix.LoadPNG(full)
	})
}

func (r *runner) save(path string, b *graymix.Buffer) error {
	full := r.cfg.Resolve(path)
	r.images.Delete(full)
	if err := r.encoder.SavePNG(full, b); err != nil {
		return err
	}
	digest, err := fileDigest(full)
	if err != nil {
		return err
	}
	r.report.wrote(path, digest)
	r.logger.Debug("wrote", "path", path, "blake3", digest)
	return nil
}

func render(p graymix.Pattern, w, h int, value *int) (*graymix.Buffer, error) {
	if p == graymix.PatternUniform && value != nil {
		return graymix.UniformAlpha(w, h, uint8(*value))
	}
	return graymix.Generate(p, w, h)
}
