package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MaxSize is the (width, height) box an image is downscaled to fit.
type MaxSize struct {
	Width  int `yaml:"width" json:"width" validate:"gte=1"`
	Height int `yaml:"height" json:"height" validate:"gte=1"`
}

func (m MaxSize) String() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// OptimizationJob is one resize+recompress unit of work. The output
// path's extension selects the encoder.
type OptimizationJob struct {
	InputPath  string  `json:"input_path" validate:"required"`
	OutputPath string  `json:"output_path" validate:"required"`
	MaxSize    MaxSize `json:"max_size"`
	Quality    int     `json:"quality" validate:"gte=1,lte=100"` // JPEG/WebP only
}

// Validate checks paths, the box and the quality bounds.
func (j OptimizationJob) Validate() error {
	err := validate.Struct(j)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	problems := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			problems = append(problems, e.Field()+" is required")
		case "gte", "lte":
			problems = append(problems, fmt.Sprintf("%s %v out of allowed range", e.Namespace(), e.Value()))
		default:
			problems = append(problems, e.Namespace()+" is invalid")
		}
	}
	return fmt.Errorf("invalid job %q: %s", j.InputPath, strings.Join(problems, ", "))
}
