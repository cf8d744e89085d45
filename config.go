package mcslices

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

type Config struct {
	Concurrency int                     `hcl:"concurrency,optional"`
	MetricsAddr string                  `hcl:"metrics_addr,optional"`
	Calibration *CalibrationConfigBlock `hcl:"calibration,block"`
	Slices      []*SliceConfigBlock     `hcl:"slice,block"`
}

type CalibrationConfigBlock struct {
	BytesPerPixel float64 `hcl:"bytes_per_pixel,optional"`
	OverheadMB    float64 `hcl:"overhead_mb,optional"`
}

type SliceConfigBlock struct {
	Name        string  `hcl:"name,label"`
	World       string  `hcl:"world"`
	Palette     string  `hcl:"palette"`
	Dimension   string  `hcl:"dimension,optional"`
	Output      string  `hcl:"output,optional"`
	MemoryMB    float64 `hcl:"memory_mb,optional"`
	Batch       int     `hcl:"batch,optional"`
	CacheChunks bool    `hcl:"cache_chunks,optional"`
}

// GetCalibration returns the configured memory model, filling unset values
// from DefaultCalibration.
func (c *Config) GetCalibration() Calibration {
	cal := DefaultCalibration
	if c.Calibration == nil {
		return cal
	}
	if c.Calibration.BytesPerPixel > 0 {
		cal.BytesPerPixel = c.Calibration.BytesPerPixel
	}
	if c.Calibration.OverheadMB > 0 {
		cal.Overhead = c.Calibration.OverheadMB * 1024 * 1024
	}
	return cal
}

// BatchOpts converts the slice's memory settings.
func (s *SliceConfigBlock) BatchOpts(cal Calibration) BatchOpts {
	return BatchOpts{
		BudgetBytes: s.MemoryMB * 1024 * 1024,
		Count:       s.Batch,
		Calibration: cal,
	}
}

// GetOutput is the directory layer images are written to.
func (s *SliceConfigBlock) GetOutput() string {
	if s.Output == "" {
		return "."
	}
	return s.Output
}

var envFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "name", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return cty.StringVal(os.Getenv(args[0].AsString())), nil
	},
})

func newHCLEvalContext(path string) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"config_dir": cty.StringVal(filepath.Dir(path)),
		},
		Functions: map[string]function.Function{
			"env":   envFunc,
			"upper": stdlib.UpperFunc,
			"lower": stdlib.LowerFunc,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config
	evalCtx := newHCLEvalContext(path)
	err := hclsimple.DecodeFile(path, evalCtx, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
