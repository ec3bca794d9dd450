// Package extract pulls structured values out of free-form model replies.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var (
	listPattern = regexp.MustCompile(`(?s)\[.*?\]`)

	errSyntax = errors.New("invalid list literal")
)

// List finds the first bracketed list in text and parses it as a sequence of
// quoted strings. Both single and double quotes are accepted.
func List(text string) ([]string, bool) {
	literal := listPattern.FindString(text)
	if literal == "" {
		return nil, false
	}

	items, err := parseStringList(literal)
	if err != nil {
		return nil, false
	}

	return items, true
}

// JSONObject decodes the text between the first '{' and the last '}' as a JSON
// object. Numbers are kept as json.Number.
func JSONObject(text string) (map[string]any, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(text[start : end+1]))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}

	// Trailing data after the object makes the whole candidate invalid.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}

	return obj, obj != nil
}

func parseStringList(literal string) ([]string, error) {
	body := strings.TrimSpace(literal[1 : len(literal)-1])

	items := make([]string, 0)
	for body != "" {
		item, rest, err := readQuoted(body)
		if err != nil {
			return nil, err
		}
		items = append(items, item)

		rest = strings.TrimSpace(rest)
		if rest == "" {
			break
		}
		if rest[0] != ',' {
			return nil, fmt.Errorf("%w: expected ',' before %q", errSyntax, rest)
		}
		body = strings.TrimSpace(rest[1:])
	}

	return items, nil
}

// readQuoted consumes one quoted string from the start of s and returns its
// unescaped value along with the remaining input.
func readQuoted(s string) (string, string, error) {
	quote := s[0]
	if quote != '"' && quote != '\'' {
		return "", "", fmt.Errorf("%w: element is not a string: %q", errSyntax, s)
	}

	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == quote:
			return b.String(), s[i+1:], nil
		case c == '\n':
			return "", "", fmt.Errorf("%w: newline inside string", errSyntax)
		case c == '\\' && i+1 < len(s):
			i++
			switch esc := s[i]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(esc)
			default:
				b.WriteByte('\\')
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(c)
		}
	}

	return "", "", fmt.Errorf("%w: unterminated string", errSyntax)
}
