package submission

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("submission not found")
	ErrFileNotFound     = errors.New("file not found")
	ErrResultNotFound   = errors.New("validation result not found")
	ErrNotPending       = errors.New("submission has already been validated")
	ErrNotValidated     = errors.New("submission has not completed automatic validation")
	ErrReviewerRequired = errors.New("reviewer identity is required")
	ErrCommentsRequired = errors.New("comments are required to reject a submission")
)

// InputError lists every invalid intake field at once, keyed by field name.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "invalid submission: " + strings.Join(msgs, "; ")
}

func (e *InputError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *InputError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
