package ai

import (
	"bytes"
	"encoding/json"
)

// ExtractAnswer reads the first choice of an OpenAI-style response body.
// Both the chat shape {"choices":[{"message":{"content":...}}]} and the
// prompt shape {"choices":[{"text":...}]} are accepted. Every level of the
// structure is checked before it is used; anything unexpected is a
// *ShapeError.
func ExtractAnswer(protocol string, body []byte) (string, error) {
	top, err := object(body)
	if err != nil {
		return "", shapeErrorf(protocol, "body is not a JSON object")
	}

	raw, ok := top["choices"]
	if !ok || isNull(raw) {
		return "", shapeErrorf(protocol, "missing choices")
	}
	var choices []json.RawMessage
	if err := json.Unmarshal(raw, &choices); err != nil {
		return "", shapeErrorf(protocol, "choices is not an array")
	}
	if len(choices) == 0 {
		return "", shapeErrorf(protocol, "no choices returned")
	}

	first, err := object(choices[0])
	if err != nil {
		return "", shapeErrorf(protocol, "choice is not an object")
	}

	if msgRaw, ok := first["message"]; ok && !isNull(msgRaw) {
		msg, err := object(msgRaw)
		if err != nil {
			return "", shapeErrorf(protocol, "choice message is not an object")
		}
		content, ok := msg["content"]
		if !ok {
			return "", shapeErrorf(protocol, "choice message has no content")
		}
		text, err := str(content)
		if err != nil {
			return "", shapeErrorf(protocol, "choice message content is not text")
		}
		return text, nil
	}

	if textRaw, ok := first["text"]; ok {
		text, err := str(textRaw)
		if err != nil {
			return "", shapeErrorf(protocol, "choice text is not a string")
		}
		return text, nil
	}

	return "", shapeErrorf(protocol, "choice has neither message content nor text")
}

func object(raw []byte) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errNull
	}
	return m, nil
}

func str(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", errNull
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

var errNull = &json.UnsupportedValueError{Str: "null"}
