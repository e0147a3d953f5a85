package usecase

import (
	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/hints"
)

// ErrorEnvelope is the error field of a Response.
type ErrorEnvelope struct {
	Code           string         `json:"code"`
	Message        string         `json:"message"`
	ResolutionHint string         `json:"resolution_hint,omitempty"`
	Fields         []string       `json:"fields,omitempty"`
	Details        map[string]any `json:"details,omitempty"`
}

// Response is the uniform envelope every use-case returns: a failed reply
// is shaped identically to a successful one except for the success flag,
// so callers can parse uniformly.
type Response struct {
	Success          bool            `json:"success"`
	Data             any             `json:"data,omitempty"`
	Error            *ErrorEnvelope  `json:"error,omitempty"`
	WorkflowGuidance hints.Guidance  `json:"workflow_guidance"`
}

func success(data any, guidance hints.Guidance) Response {
	return Response{Success: true, Data: data, WorkflowGuidance: guidance}
}

// failure builds an error Response from err. If err is not an
// *apperrors.Error it is wrapped as a generic STORAGE_UNAVAILABLE.
func failure(err error, guidance hints.Guidance) Response {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.New(apperrors.StorageUnavailable, err.Error())
	}
	return Response{
		Success: false,
		Error: &ErrorEnvelope{
			Code:           string(appErr.Code),
			Message:        appErr.Message,
			ResolutionHint: appErr.ResolutionHint,
			Fields:         appErr.Fields,
			Details:        appErr.Details,
		},
		WorkflowGuidance: guidance,
	}
}
