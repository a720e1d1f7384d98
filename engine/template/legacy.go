package template

import (
	"context"
	"encoding/json"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
	"gopkg.in/yaml.v3"
)

// LoadLegacy accepts a template that fails strict Validate, emitting a
// warning and structurally decoding by field name instead (spec.md
// §4.1's "legacy-vs-strict policy"). Discovery never calls this path —
// only direct, explicit loads do.
func LoadLegacy(ctx context.Context, document []byte, sourcePath string, format Format) (*Template, error) {
	tmpl, err := Validate(document, sourcePath, format)
	if err == nil {
		return tmpl, nil
	}

	log := logger.FromContext(ctx).With("source_path", sourcePath)
	log.Warn("loading workflow template despite validation errors", "error", err.Error())

	fallback := &Template{}
	var decodeErr error
	switch format {
	case FormatYAML:
		decodeErr = yaml.Unmarshal(document, fallback)
	default:
		decodeErr = json.Unmarshal(document, fallback)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	fallback.FilePath = sourcePath
	return fallback, nil
}
