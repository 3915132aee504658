// Package job runs batches of graymix operations described by a YAML job
// file.
//
// A job file has three sections that run in order: mask, generate and
// blend. Jobs inside one section are independent and run concurrently.
// Relative paths resolve against the job file's base directory.
package job

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/graymix"
)

// Section names a group of jobs.
type Section string

// Sections, in execution order.
const (
	SectionMask     Section = "mask"
	SectionGenerate Section = "generate"
	SectionBlend    Section = "blend"
)

// Sections lists every section in execution order.
var Sections = []Section{SectionMask, SectionGenerate, SectionBlend}

// Compression names accepted in a job file.
var compressionLevels = map[string]graymix.CompressionLevel{
	"":        graymix.DefaultCompression,
	"default": graymix.DefaultCompression,
	"none":    graymix.NoCompression,
	"speed":   graymix.BestSpeed,
	"best":    graymix.BestCompression,
}

// Config is a complete job file.
type Config struct {
	// Dir is the base directory for relative paths. When loaded from a
	// file and left empty, it is the file's directory.
	Dir string `yaml:"dir,omitempty"`

	// Workers bounds concurrent jobs per section. 0 uses GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`

	// Compression is one of default, none, speed or best.
	Compression string `yaml:"compression,omitempty"`

	Mask     []MaskJob     `yaml:"mask,omitempty"`
	Generate []GenerateJob `yaml:"generate,omitempty"`
	Blend    []BlendJob    `yaml:"blend,omitempty"`
}

// MaskJob applies the circular mask to Input and writes Output.
type MaskJob struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// GenerateJob renders a pattern to Output. With Verify set the file is
// read back and compared with the rendered samples.
type GenerateJob struct {
	Pattern graymix.Pattern `yaml:"pattern"`
	Width   int             `yaml:"width"`
	Height  int             `yaml:"height"`
	Value   *int            `yaml:"value,omitempty"`
	Output  string          `yaml:"output"`
	Verify  bool            `yaml:"verify,omitempty"`
}

// Source is one blend operand: a PNG file or a generated pattern.
type Source struct {
	Path    string          `yaml:"path,omitempty"`
	Pattern graymix.Pattern `yaml:"pattern,omitempty"`

	// Value is the sample of the uniform pattern. Default 128.
	Value *int `yaml:"value,omitempty"`

	// Save, if set, writes the operand to this path before blending.
	Save string `yaml:"save,omitempty"`
}

// BlendJob blends A and B with Alpha and writes Output.
//
// Generated operands take Width x Height. When both are zero they take
// the size of the first file operand.
type BlendJob struct {
	Name   string `yaml:"name,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	A      Source `yaml:"a"`
	B      Source `yaml:"b"`
	Alpha  Source `yaml:"alpha"`
	Output string `yaml:"output"`
}

// Default returns the built-in job set: circle-mask three photos, render
// the halftone circle and read it back, blend three synthetic pairs over a
// radial alpha and blend three photos pairwise at 50%.
func Default() *Config {
	const size = 512
	cfg := &Config{Dir: "."}

	for i := 1; i <= 3; i++ {
		cfg.Mask = append(cfg.Mask, MaskJob{
			Input:  fmt.Sprintf("image%d.png", i),
			Output: fmt.Sprintf("output_image%d.png", i),
		})
	}

	cfg.Generate = []GenerateJob{
		{Pattern: graymix.PatternCircle, Width: size, Height: size, Output: "circle.png", Verify: true},
		{Pattern: graymix.PatternAlphaRadial, Width: size, Height: size, Output: "alpha.png"},
	}

	pairs := [][2]graymix.Pattern{
		{graymix.PatternDiagonal, graymix.PatternHorizontal},
		{graymix.PatternRadial, graymix.PatternCircle},
		{graymix.PatternHorizontal, graymix.PatternDiagonal},
	}
	for i, p := range pairs {
		n := i + 1
		cfg.Blend = append(cfg.Blend, BlendJob{
			Name:   fmt.Sprintf("synthetic %d", n),
			Width:  size,
			Height: size,
			A:      Source{Pattern: p[0], Save: fmt.Sprintf("input_a%d.png", n)},
			B:      Source{Pattern: p[1], Save: fmt.Sprintf("input_b%d.png", n)},
			Alpha:  Source{Path: "alpha.png"},
			Output: fmt.Sprintf("output_blended%d.png", n),
		})
	}

	for i := 1; i <= 3; i++ {
		j := i%3 + 1
		cfg.Blend = append(cfg.Blend, BlendJob{
			Name:   fmt.Sprintf("photo %d", i),
			A:      Source{Path: fmt.Sprintf("image%d_for_blending.png", i)},
			B:      Source{Path: fmt.Sprintf("image%d_for_blending.png", j)},
			Alpha:  Source{Pattern: graymix.PatternUniform},
			Output: fmt.Sprintf("output_image%d_for_blending.png", i),
		})
	}
	return cfg
}

// Load reads and validates the job file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.Dir == "" {
		cfg.Dir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(path), cfg.Dir)
	}
	return cfg, nil
}

// Parse decodes and validates a job file. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse job file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal returns cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate reports every problem in the job file at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be non-negative, got %d", c.Workers))
	}
	if _, ok := compressionLevels[c.Compression]; !ok {
		errs = append(errs, fmt.Errorf("unknown compression %q (supported: default, none, speed, best)", c.Compression))
	}
	if len(c.Mask)+len(c.Generate)+len(c.Blend) == 0 {
		errs = append(errs, errors.New("no jobs"))
	}

	for i, j := range c.Mask {
		if j.Input == "" {
			errs = append(errs, fmt.Errorf("mask[%d]: input is required", i))
		}
		if j.Output == "" {
			errs = append(errs, fmt.Errorf("mask[%d]: output is required", i))
		}
	}

	for i, j := range c.Generate {
		if !j.Pattern.Valid() {
			errs = append(errs, fmt.Errorf("generate[%d]: unknown pattern %q", i, j.Pattern))
		}
		if j.Width <= 0 || j.Height <= 0 {
			errs = append(errs, fmt.Errorf("generate[%d]: width and height must be positive, got %dx%d", i, j.Width, j.Height))
		}
		if err := checkValue(j.Pattern, j.Value); err != nil {
			errs = append(errs, fmt.Errorf("generate[%d]: %w", i, err))
		}
		if j.Output == "" {
			errs = append(errs, fmt.Errorf("generate[%d]: output is required", i))
		}
	}

	for i, j := range c.Blend {
		label := fmt.Sprintf("blend[%d]", i)
		if j.Name != "" {
			label = fmt.Sprintf("blend %q", j.Name)
		}
		files := 0
		for _, op := range []struct {
			name string
			src  Source
		}{{"a", j.A}, {"b", j.B}, {"alpha", j.Alpha}} {
			if err := op.src.validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %s: %w", label, op.name, err))
			}
			if op.src.Path != "" {
				files++
			}
		}
		if j.Width < 0 || j.Height < 0 || (j.Width == 0) != (j.Height == 0) {
			errs = append(errs, fmt.Errorf("%s: width and height must both be positive or both omitted, got %dx%d", label, j.Width, j.Height))
		} else if j.Width == 0 && files == 0 {
			errs = append(errs, fmt.Errorf("%s: width and height are required when no operand is a file", label))
		}
		if j.Output == "" {
			errs = append(errs, fmt.Errorf("%s: output is required", label))
		}
	}

	return errors.Join(errs...)
}

func (s Source) validate() error {
	switch {
	case s.Path != "" && s.Pattern != "":
		return errors.New("path and pattern are mutually exclusive")
	case s.Path == "" && s.Pattern == "":
		return errors.New("path or pattern is required")
	case s.Pattern != "" && !s.Pattern.Valid():
		return fmt.Errorf("unknown pattern %q", s.Pattern)
	}
	return checkValue(s.Pattern, s.Value)
}

// checkValue accepts a nil value, or a sample in range on the uniform pattern.
func checkValue(p graymix.Pattern, v *int) error {
	if v == nil {
		return nil
	}
	if p != graymix.PatternUniform {
		return errors.New("value applies only to the uniform pattern")
	}
	if *v < 0 || *v > 255 {
		return fmt.Errorf("value must be in [0, 255], got %d", *v)
	}
	return nil
}

// Select keeps only the named sections. An empty list keeps all of them.
func (c *Config) Select(sections ...string) error {
	if len(sections) == 0 {
		return nil
	}
	keep := make(map[Section]bool, len(sections))
	for _, s := range sections {
		sec := Section(s)
		if !slices.Contains(Sections, sec) {
			return fmt.Errorf("unknown section %q (supported: mask, generate, blend)", s)
		}
		keep[sec] = true
	}
	if !keep[SectionMask] {
		c.Mask = nil
	}
	if !keep[SectionGenerate] {
		c.Generate = nil
	}
	if !keep[SectionBlend] {
		c.Blend = nil
	}
	return nil
}

// Encoder returns the encoder for the configured compression.
func (c *Config) Encoder() graymix.Encoder {
	return graymix.Encoder{CompressionLevel: compressionLevels[c.Compression]}
}

// Resolve returns p relative to the base directory.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}
