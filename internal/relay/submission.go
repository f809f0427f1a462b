package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field is one named value of a submission.
type Field struct {
	Name  string
	Value string
}

// Directives are relay-level instructions that travel alongside the fields.
type Directives struct {
	Subject      string
	ReplyTo      string
	AutoResponse string
}

// Submission is an ordered flat record handed to a relay.
type Submission struct {
	Fields     []Field
	Directives Directives
}

// Set stores value under name, replacing an earlier value in place so the
// original field order is kept.
func (s *Submission) Set(name, value string) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			s.Fields[i].Value = value
			return
		}
	}
	s.Fields = append(s.Fields, Field{Name: name, Value: value})
}

// Get returns the value stored under name.
func (s Submission) Get(name string) (string, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Text renders the fields as "name: value" lines.
func (s Submission) Text() string {
	var b strings.Builder
	for _, f := range s.Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
	}
	return b.String()
}

// encodeOrdered writes fields as a JSON object keeping their order.
func encodeOrdered(fields []Field) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
