package cassidy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope_InlinePayload(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "COMPLETED",
			"actionResults": [
				{"status": "SUCCESS", "output": {"value": {"full_name": "Jane Doe"}}}
			]
		}
	}`)

	payload, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_name": "Jane Doe"}`, string(payload))
}

func TestDecodeEnvelope_StringEncodedPayload(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "completed",
			"actionResults": [
				{"status": "Completed", "output": {"value": "{\"full_name\": \"Jane Doe\"}"}}
			]
		}
	}`)

	payload, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_name": "Jane Doe"}`, string(payload))
}

func TestDecodeEnvelope_SingleElementArrayUnwrapped(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "COMPLETED",
			"actionResults": [
				{"status": "SUCCESS", "output": {"value": [{"full_name": "Jane Doe"}]}}
			]
		}
	}`)

	payload, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_name": "Jane Doe"}`, string(payload))
}

func TestDecodeEnvelope_MultiElementArrayKept(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "COMPLETED",
			"actionResults": [
				{"status": "SUCCESS", "output": {"value": [{"a": 1}, {"a": 2}]}}
			]
		}
	}`)

	payload, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"a": 1}, {"a": 2}]`, string(payload))
}

func TestDecodeEnvelope_SkipsFailedAndNullResults(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "COMPLETED",
			"actionResults": [
				{"status": "FAILED", "error": "scrape blocked"},
				{"status": "SUCCESS", "output": {"value": null}},
				{"status": "SUCCESS", "output": {"value": {"full_name": "Jane Doe"}}}
			]
		}
	}`)

	payload, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.JSONEq(t, `{"full_name": "Jane Doe"}`, string(payload))
}

func TestDecodeEnvelope_FailedRunCollectsAllErrors(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "FAILED",
			"actionResults": [
				{"status": "failed", "error": "login wall detected"},
				{"status": "FAILED", "error": "timeout scraping page"}
			]
		}
	}`)

	_, err := DecodeEnvelope(raw)
	require.Error(t, err)

	var wfErr *WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.Len(t, wfErr.Errors, 2)
	assert.Contains(t, err.Error(), "login wall detected")
	assert.Contains(t, err.Error(), "timeout scraping page")
}

func TestDecodeEnvelope_FailedRunWithoutErrors(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"workflowRun": {"status": "FAILED", "actionResults": []}}`)

	_, err := DecodeEnvelope(raw)
	var wfErr *WorkflowError
	require.ErrorAs(t, err, &wfErr)
	assert.NotEmpty(t, wfErr.Errors)
}

func TestDecodeEnvelope_NoUsableResult(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "COMPLETED",
			"actionResults": [
				{"status": "SUCCESS", "output": {"value": null}},
				{"status": "RUNNING"}
			]
		}
	}`)

	_, err := DecodeEnvelope(raw)
	require.ErrorIs(t, err, ErrNoPayload)
}

func TestDecodeEnvelope_EmptyStringValue(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "COMPLETED",
			"actionResults": [
				{"status": "SUCCESS", "output": {"value": ""}}
			]
		}
	}`)

	_, err := DecodeEnvelope(raw)
	require.ErrorIs(t, err, ErrNoPayload)
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	t.Parallel()
	_, err := DecodeEnvelope([]byte(`{not json`))
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeEnvelope_StringValueNotJSON(t *testing.T) {
	t.Parallel()
	raw := []byte(`{
		"workflowRun": {
			"status": "COMPLETED",
			"actionResults": [
				{"status": "SUCCESS", "output": {"value": "plain text, not json"}}
			]
		}
	}`)

	_, err := DecodeEnvelope(raw)
	require.ErrorIs(t, err, ErrMalformedResponse)
}
