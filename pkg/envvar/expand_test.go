package envvar_test

import (
	"io"
	"testing"

	"github.com/3bit-techs/vvpctl/pkg/envvar"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestExpander(vars map[string]string) *envvar.Expander {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &envvar.Expander{
		Lookup: func(name string) (string, bool) {
			value, ok := vars[name]

			return value, ok
		},
		Logger: logger,
	}
}

func TestExpanderExpand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		input       string
		vars        map[string]string
		expected    string
		wantMissing []string
	}{
		{name: "empty string", input: "", expected: ""},
		{name: "no placeholders", input: "jarUri: s3://jobs/a.jar", expected: "jarUri: s3://jobs/a.jar"},
		{
			name:     "set variable",
			input:    "jarUri: ${JAR}",
			vars:     map[string]string{"JAR": "s3://jobs/a.jar"},
			expected: "jarUri: s3://jobs/a.jar",
		},
		{
			name:     "default used when unset",
			input:    "parallelism: ${PARALLELISM:-4}",
			expected: "parallelism: 4",
		},
		{
			name:     "set variable wins over default",
			input:    "parallelism: ${PARALLELISM:-4}",
			vars:     map[string]string{"PARALLELISM": "8"},
			expected: "parallelism: 8",
		},
		{
			name:     "default used when set but empty",
			input:    "parallelism: ${PARALLELISM:-4}",
			vars:     map[string]string{"PARALLELISM": ""},
			expected: "parallelism: 4",
		},
		{
			name:     "set but empty without default",
			input:    "tag: '${TAG}'",
			vars:     map[string]string{"TAG": ""},
			expected: "tag: ''",
		},
		{
			name:     "explicit empty default",
			input:    "tag: '${TAG:-}'",
			expected: "tag: ''",
		},
		{
			name:        "unset without default is reported once",
			input:       "${A}-${B}-${A}",
			expected:    "--",
			wantMissing: []string{"A", "B"},
		},
		{
			name:     "no braces is left alone",
			input:    "$VAR",
			vars:     map[string]string{"VAR": "value"},
			expected: "$VAR",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, missing := newTestExpander(testCase.vars).Expand(testCase.input)

			assert.Equal(t, testCase.expected, got)
			assert.Equal(t, testCase.wantMissing, missing)
		})
	}
}

func TestExpand_UsesProcessEnvironment(t *testing.T) {
	t.Setenv("VVPCTL_TEST_NAMESPACE", "analytics")

	assert.Equal(t, "namespace: analytics", envvar.Expand("namespace: ${VVPCTL_TEST_NAMESPACE}"))
}
