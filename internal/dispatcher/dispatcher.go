// Package dispatcher is the Tool Dispatcher: the thin layer between the MCP
// tool registry and the Use-Case Orchestrator. It decodes a tool's raw JSON
// arguments into its typed parameter struct, validates the struct via
// go-playground/validator tags, and renders a usecase.Response as an
// mcp.ToolsCallResult.
package dispatcher

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/mcp"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode unmarshals raw into a T and runs struct-tag validation. A failure at
// either stage is returned as an apperrors.InvalidParameters error carrying
// the offending field names, matching the closed error taxonomy every other
// use-case failure flows through.
func Decode[T any](raw json.RawMessage) (T, error) {
	var params T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return params, apperrors.New(apperrors.InvalidParameters, "malformed arguments: "+err.Error())
		}
	}
	if err := validate.Struct(params); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fieldName(fe))
			}
			return params, apperrors.New(apperrors.InvalidParameters, "invalid parameters: "+strings.Join(fields, ", ")).
				WithFields(fields...)
		}
		return params, apperrors.New(apperrors.InvalidParameters, err.Error())
	}
	return params, nil
}

// fieldName renders a validator.FieldError as the Go struct field name
// followed by the failed validation tag, e.g. "TaskID (required)"; the
// json tag name callers used (task_id) is not looked up.
func fieldName(fe validator.FieldError) string {
	return fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
}

// Render turns a usecase.Response into the MCP tool-call result envelope.
// The Response is always the JSON payload; IsError mirrors Success so MCP
// clients that only look at isError still behave correctly.
func Render(resp usecase.Response) (*mcp.ToolsCallResult, error) {
	result, err := mcp.JSONResult(resp)
	if err != nil {
		return nil, err
	}
	result.IsError = !resp.Success
	return result, nil
}

// Invalid renders a parameter-decode failure as a tool-call result without
// ever reaching the orchestrator.
func Invalid(err error) (*mcp.ToolsCallResult, error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.New(apperrors.InvalidParameters, err.Error())
	}
	return Render(usecase.Response{
		Success: false,
		Error: &usecase.ErrorEnvelope{
			Code:           string(appErr.Code),
			Message:        appErr.Message,
			ResolutionHint: appErr.ResolutionHint,
			Fields:         appErr.Fields,
		},
	})
}
