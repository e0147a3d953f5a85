package dispatcher

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/apperrors"
	"github.com/emergent-company/taskvision-mcp/internal/usecase"
)

type sampleParams struct {
	TaskID string `json:"task_id" validate:"required"`
	TopN   int    `json:"top_n" validate:"gte=0"`
}

func TestDecode_Success(t *testing.T) {
	raw := json.RawMessage(`{"task_id":"task_1","top_n":3}`)
	params, err := Decode[sampleParams](raw)
	require.NoError(t, err)
	assert.Equal(t, "task_1", params.TaskID)
	assert.Equal(t, 3, params.TopN)
}

func TestDecode_MissingRequiredFieldIsInvalidParameters(t *testing.T) {
	raw := json.RawMessage(`{"top_n":3}`)
	_, err := Decode[sampleParams](raw)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InvalidParameters, appErr.Code)
	assert.Contains(t, appErr.Fields, "TaskID (required)")
}

func TestDecode_MalformedJSONIsInvalidParameters(t *testing.T) {
	raw := json.RawMessage(`{not-json`)
	_, err := Decode[sampleParams](raw)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.InvalidParameters, appErr.Code)
}

func TestDecode_EmptyRawUsesZeroValueThenValidates(t *testing.T) {
	_, err := Decode[sampleParams](nil)
	require.Error(t, err) // TaskID required, zero value fails validation
}

func TestRender_MirrorsSuccessIntoIsError(t *testing.T) {
	okResult, err := Render(usecase.Response{Success: true, Data: map[string]any{"ok": true}})
	require.NoError(t, err)
	assert.False(t, okResult.IsError)

	failResult, err := Render(usecase.Response{Success: false, Error: &usecase.ErrorEnvelope{Code: "NOT_FOUND"}})
	require.NoError(t, err)
	assert.True(t, failResult.IsError)
}

func TestInvalid_RendersDecodeFailureWithoutReachingOrchestrator(t *testing.T) {
	_, decodeErr := Decode[sampleParams](json.RawMessage(`{}`))
	result, err := Invalid(decodeErr)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
