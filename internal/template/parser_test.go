package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	tc := Context{Project: "my-app", Stack: "dev", Worker: "Api"}

	t.Run("renders context fields", func(t *testing.T) {
		value, err := ParseTemplate("Workers__{{ .Worker }}__{{ .Stack }}", tc)
		require.NoError(t, err)
		assert.Equal(t, "Workers__Api__dev", value)
	})

	t.Run("plain text", func(t *testing.T) {
		value, err := ParseTemplate("true", tc)
		require.NoError(t, err)
		assert.Equal(t, "true", value)
	})

	t.Run("invalid template", func(t *testing.T) {
		_, err := ParseTemplate("{{ .Worker", tc)
		assert.Error(t, err)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParseTemplate("{{ .Tenant }}", tc)
		assert.Error(t, err)
	})
}

func TestParseValues(t *testing.T) {
	values := map[string]string{"STAGE": "{{ .Stack }}", "DEBUG": "true"}

	parsed, err := ParseValues(values, Context{Stack: "prod"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"STAGE": "prod", "DEBUG": "true"}, parsed)
	assert.Equal(t, "{{ .Stack }}", values["STAGE"])

	_, err = ParseValues(map[string]string{"BAD": "{{"}, Context{})
	assert.Error(t, err)
}
