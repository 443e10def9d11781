// Package apierror holds the error body shared by the store API and its clients:
//
//	{"detail": "plain message"}
//	{"detail": [{"type": "...", "loc": ["body", "email"], "msg": "...", "input": ...}]}
package apierror

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
	"unicode/utf8"
)

// GenericMessage is shown when a failure carries nothing displayable.
const GenericMessage = "Something went wrong, please try again"

// Loc is the path of the offending input, e.g. ["body", "email"].
type Loc []string

func (l *Loc) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Loc, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err == nil {
			out = append(out, s)
			continue
		}
		// list indexes arrive as numbers
		out = append(out, strings.TrimSpace(string(r)))
	}
	*l = out
	return nil
}

// Problem is one entry of a structured validation failure.
type Problem struct {
	Type  string         `json:"type"`
	Loc   Loc            `json:"loc"`
	Msg   string         `json:"msg"`
	Input any            `json:"input"`
	Ctx   map[string]any `json:"ctx,omitempty"`
}

// Field is the last element of the location path.
func (p Problem) Field() string {
	if len(p.Loc) == 0 {
		return ""
	}
	return p.Loc[len(p.Loc)-1]
}

// String renders the problem as "<Field>: <msg>" with the field name capitalized.
func (p Problem) String() string {
	field := p.Field()
	if field == "" {
		field = "Error"
	}
	return capitalize(field) + ": " + p.Msg
}

// Detail is either a plain message or a list of problems.
type Detail struct {
	Message  string
	Problems []Problem
}

func (d Detail) IsZero() bool {
	return d.Message == "" && len(d.Problems) == 0
}

// Format returns the text a user should see. Only the first problem is rendered.
func (d Detail) Format(fallback string) string {
	if len(d.Problems) > 0 {
		return d.Problems[0].String()
	}
	if d.Message != "" {
		return d.Message
	}
	if fallback != "" {
		return fallback
	}
	return GenericMessage
}

func (d Detail) MarshalJSON() ([]byte, error) {
	if len(d.Problems) > 0 {
		return json.Marshal(d.Problems)
	}
	return json.Marshal(d.Message)
}

func (d *Detail) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Detail{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Detail{Message: s}
	case '[':
		var problems []Problem
		if err := json.Unmarshal(data, &problems); err != nil {
			return err
		}
		*d = Detail{Problems: problems}
	default:
		*d = Detail{Message: string(data)}
	}
	return nil
}

// Body is the JSON error envelope.
type Body struct {
	Detail Detail `json:"detail"`
}

func Message(msg string) Body {
	return Body{Detail: Detail{Message: msg}}
}

func Validation(problems ...Problem) Body {
	return Body{Detail: Detail{Problems: problems}}
}

// BodyLoc builds the location of a request body field.
func BodyLoc(field string) Loc {
	return Loc{"body", field}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
