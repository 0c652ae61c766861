package merger

import (
	_ "embed"
	"fmt"

	apperrors "automation-advisor/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

var (
	//go:embed schemas/workflows.schema.json
	workflowsSchemaJSON []byte
	//go:embed schemas/timeline.schema.json
	timelineSchemaJSON []byte

	workflowsSchema = mustSchema(workflowsSchemaJSON)
	timelineSchema  = mustSchema(timelineSchemaJSON)
)

func mustSchema(raw []byte) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return s
}

// schemaViolations checks a merged document. A violation means the merger
// itself produced something incomplete.
func schemaViolations(schema *gojsonschema.Schema, doc interface{}) []*apperrors.StandardError {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return []*apperrors.StandardError{apperrors.NewMergeFallbackWarning("schema", err.Error())}
	}
	if result.Valid() {
		return nil
	}
	out := make([]*apperrors.StandardError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		out = append(out, apperrors.NewMergeFallbackWarning("schema."+desc.Field(), desc.Description()))
	}
	return out
}

func validateWorkflows(r *WorkflowResult) {
	r.Warnings = append(r.Warnings, schemaViolations(workflowsSchema, r)...)
}
