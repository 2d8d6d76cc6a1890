package emit

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_SuccessLine(t *testing.T) {
	var primary, diag bytes.Buffer
	w := NewWriter(&primary, &diag)

	require.NoError(t, w.Success(Measurement{
		URL:              "https://staging.internal/x?a=1",
		Status:           200,
		RequiredTime:     0.05,
		OriginalTime:     0.04,
		ChangePercentage: 25,
	}))
	require.NoError(t, w.Flush())

	assert.Equal(t,
		`{"url":"https://staging.internal/x?a=1","status":200,"required_time":0.05,"original_time":0.04,"change_percentage":25}`+"\n",
		primary.String())
	assert.Empty(t, diag.String())
}

func TestWriter_AmpersandsNotEscaped(t *testing.T) {
	var primary, diag bytes.Buffer
	w := NewWriter(&primary, &diag)

	require.NoError(t, w.Success(Measurement{URL: "http://h/x?a=1&b=2", Status: 204}))
	require.NoError(t, w.Flush())

	assert.Contains(t, primary.String(), `"url":"http://h/x?a=1&b=2"`)
	assert.NotContains(t, primary.String(), `&`)
}

func TestWriter_FailureGoesToDiagnosticStreamOnly(t *testing.T) {
	var primary, diag bytes.Buffer
	w := NewWriter(&primary, &diag)

	w.Failure(Failure{URL: "http://h/x", Cause: "HTTP 503"})
	require.NoError(t, w.Flush())

	assert.Empty(t, primary.String())
	assert.Equal(t, "request to http://h/x failed: HTTP 503\n", diag.String())
}

func TestWriter_FailureAcceptsAnyError(t *testing.T) {
	var primary, diag bytes.Buffer
	w := NewWriter(&primary, &diag)

	w.Failure(errors.New("connection refused"))
	assert.Equal(t, "connection refused\n", diag.String())
}

func TestWriter_OneLinePerMeasurement(t *testing.T) {
	var primary, diag bytes.Buffer
	w := NewWriter(&primary, &diag)

	require.NoError(t, w.Success(Measurement{URL: "http://h/a", Status: 200}))
	require.NoError(t, w.Success(Measurement{URL: "http://h/b", Status: 200}))
	require.NoError(t, w.Flush())

	lines := bytes.Split(bytes.TrimRight(primary.Bytes(), "\n"), []byte("\n"))
	assert.Len(t, lines, 2)
}
