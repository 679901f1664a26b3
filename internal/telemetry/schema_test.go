package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLine(t *testing.T) {
	schema, err := CompileSampleSchema()
	assert.NoError(t, err)

	tests := []struct {
		name        string
		line        string
		expectedErr string
	}{
		{
			name: "Valid sample",
			line: `{"ts":"2026-08-29T10:30:00.000Z","t_sec":1.5,"layer_index":0,"run_id":"r1","faults_active":[],"signals":{"nozzle_temp_c":205.1}}`,
		},
		{
			name: "Minimal sample",
			line: `{"ts":"2026-08-29T10:30:00.000Z","t_sec":0,"signals":{"bed_temp_c":60}}`,
		},
		{
			name:        "Not JSON",
			line:        `{"ts":`,
			expectedErr: "invalid JSON",
		},
		{
			name:        "Missing signals",
			line:        `{"ts":"2026-08-29T10:30:00.000Z","t_sec":1.5}`,
			expectedErr: "schema validation",
		},
		{
			name:        "Non-numeric signal",
			line:        `{"ts":"2026-08-29T10:30:00.000Z","t_sec":1.5,"signals":{"nozzle_temp_c":"hot"}}`,
			expectedErr: "schema validation",
		},
		{
			name:        "Negative elapsed time",
			line:        `{"ts":"2026-08-29T10:30:00.000Z","t_sec":-1,"signals":{"bed_temp_c":60}}`,
			expectedErr: "schema validation",
		},
		{
			name:        "Unknown top-level field",
			line:        `{"ts":"2026-08-29T10:30:00.000Z","t_sec":1,"signals":{"bed_temp_c":60},"extra":true}`,
			expectedErr: "schema validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLine(schema, []byte(tt.line))
			if tt.expectedErr == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			}
		})
	}
}
