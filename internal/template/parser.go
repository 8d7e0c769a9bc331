package template

import (
	"bytes"
	"text/template"
)

// Context is the data available to environment values and export key templates.
type Context struct {
	Project string
	Stack   string
	Worker  string
}

func ParseTemplate(text string, data interface{}) (string, error) {
	tmpl, err := template.New("value").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", err
	}

	var tpl bytes.Buffer
	if err = tmpl.Execute(&tpl, data); err != nil {
		return "", err
	}

	return tpl.String(), nil
}

// ParseValues renders every value of the map, leaving the input untouched.
func ParseValues(values map[string]string, data interface{}) (map[string]string, error) {
	result := make(map[string]string, len(values))
	for key, value := range values {
		parsed, err := ParseTemplate(value, data)
		if err != nil {
			return nil, err
		}
		result[key] = parsed
	}
	return result, nil
}
