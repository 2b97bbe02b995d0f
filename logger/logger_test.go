package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var testCases = []struct {
		description string
		level       string
		format      string
		expectDebug bool
		hasError    bool
	}{
		{description: "console at debug", level: "debug", format: FormatConsole, expectDebug: true},
		{description: "json at info", level: "info", format: FormatJSON},
		{description: "default format", level: "warn"},
		{description: "bad level", level: "loud", hasError: true},
		{description: "bad format", level: "info", format: "xml", hasError: true},
	}
	for _, testCase := range testCases {
		buffer := &bytes.Buffer{}
		log, err := New(buffer, testCase.level, testCase.format)
		if testCase.hasError {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		log.Debugw("checking", "module", "app")
		log.Errorw("failed", "module", "app")
		output := buffer.String()
		assert.Equal(t, testCase.expectDebug, bytes.Contains([]byte(output), []byte("checking")), testCase.description)
		assert.Contains(t, output, "failed", testCase.description)
		if testCase.format == FormatJSON {
			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(bytes.Split(buffer.Bytes(), []byte("\n"))[0], &entry), testCase.description)
			assert.Equal(t, "app", entry["module"], testCase.description)
		}
	}
}
