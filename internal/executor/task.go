package executor

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// TaskInput is one decoded task payload: the URL to clean, plus any
// per-task context vars visible to StringSource.Var{TaskContext}.
type TaskInput struct {
	URL  string            `json:"url"`
	Vars map[string]string `json:"-"`
}

type taskContext struct {
	Vars map[string]string `json:"vars,omitempty"`
}

type taskObject struct {
	URL     string      `json:"url"`
	Context taskContext `json:"context,omitempty"`
}

// ParseTaskInput recognizes all three task-input shapes of spec.md §6.3
// without requiring the client to disambiguate: a bare URL string, a JSON
// object `{"url":"…","context":{"vars":{…}}}`, or a JSON string containing
// one of those two.
func ParseTaskInput(raw string) (TaskInput, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TaskInput{}, newParseErr("empty task input")
	}

	if trimmed[0] == '"' {
		var inner string
		if err := jsonAPI.UnmarshalFromString(trimmed, &inner); err != nil {
			return TaskInput{}, newParseErr("invalid JSON string task input: " + err.Error())
		}
		return ParseTaskInput(inner)
	}

	if trimmed[0] == '{' {
		var obj taskObject
		if err := jsonAPI.UnmarshalFromString(trimmed, &obj); err != nil {
			return TaskInput{}, newParseErr("invalid JSON object task input: " + err.Error())
		}
		if obj.URL == "" {
			return TaskInput{}, newParseErr("task object missing \"url\"")
		}
		return TaskInput{URL: obj.URL, Vars: obj.Context.Vars}, nil
	}

	return TaskInput{URL: trimmed}, nil
}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

func newParseErr(msg string) error { return &parseError{msg: msg} }
