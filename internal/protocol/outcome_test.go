package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProgressEvent(t *testing.T) {
	out, err := Normalize(StreamEvent{Step: KindIntent, Message: "Analyse de l'intention"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, out.Kind)
}

func TestNormalizeError(t *testing.T) {
	out, err := Normalize(StreamEvent{Step: KindError, Message: "timeout lors de l'exécution"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeError, out.Kind)
	assert.Equal(t, "timeout lors de l'exécution", out.ErrorText)
}

func TestNormalizeDedicatedAmbiguityEvent(t *testing.T) {
	payload := `{"hasAmbiguity":true,"questions":[{"question":"Quelle période ?","choices":["Ce mois-ci","Cette année"]}]}`
	out, err := Normalize(StreamEvent{Step: KindAmbiguityDetected, Data: json.RawMessage(payload)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmbiguity, out.Kind)
	require.NotNil(t, out.Ambiguity)
	require.Len(t, out.Ambiguity.Questions, 1)
	assert.Equal(t, "Quelle période ?", out.Ambiguity.Questions[0].Question)
}

func TestNormalizeResultWithEmbeddedAmbiguityFlag(t *testing.T) {
	// Older backend shape: the flag sits at the top level of the result.
	flat := `{"sessionId":"s1","hasAmbiguity":true,"questions":[{"question":"Quel canal ?","choices":["TV","Radio"]}]}`
	out, err := Normalize(StreamEvent{Step: KindResult, Data: json.RawMessage(flat)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmbiguity, out.Kind)
	require.NotNil(t, out.Ambiguity)
	assert.Len(t, out.Ambiguity.Questions, 1)

	// Newer shape: a nested AmbiguityResponse under "ambiguity".
	nested := `{"sessionId":"s1","answer":"","ambiguity":{"hasAmbiguity":true,"questions":[{"question":"Quel canal ?","choices":["TV","Radio","Display"]}]}}`
	out, err = Normalize(StreamEvent{Step: KindResult, Data: json.RawMessage(nested)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeAmbiguity, out.Kind)
	require.NotNil(t, out.Ambiguity)
	require.Len(t, out.Ambiguity.Questions, 1)
	assert.Len(t, out.Ambiguity.Questions[0].Choices, 3)
}

func TestNormalizeCleanResult(t *testing.T) {
	payload := `{"sessionId":"s2","answer":"12 campagnes ont été diffusées.","generatedSql":"SELECT count(*) FROM campagne","queryResults":[{"n":12}],"metadata":{"intent":"COUNT","resultCount":1,"sqlExecuted":true}}`
	out, err := Normalize(StreamEvent{Step: KindResult, Data: json.RawMessage(payload)})
	require.NoError(t, err)
	assert.Equal(t, OutcomeResult, out.Kind)
	require.NotNil(t, out.Response)
	assert.Equal(t, "s2", out.Response.SessionID)
	assert.Len(t, out.Response.QueryResults, 1)
	assert.True(t, out.Response.Metadata.SQLExecuted)
}

func TestNormalizeMalformedTerminalPayload(t *testing.T) {
	_, err := Normalize(StreamEvent{Step: KindResult, Data: json.RawMessage(`{"answer":`)})
	assert.Error(t, err)

	_, err = Normalize(StreamEvent{Step: KindAmbiguityDetected, Data: json.RawMessage(`not json`)})
	assert.Error(t, err)
}
