package shell

import (
	"fmt"
	"strings"
)

// splitArgs splits a command line on whitespace. Single or double quotes
// group words and a backslash escapes the next character, so names with
// spaces can be typed either as rm "Q1 Budget" or rm Q1\ Budget.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		escaped bool
		inToken bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inToken = true
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		cur.WriteRune('\\')
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}

// escapeArg backslash-escapes the characters splitArgs treats specially,
// so a completed name survives the round trip.
func escapeArg(name string) string {
	if !strings.ContainsAny(name, " \t\\\"'") {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		switch r {
		case ' ', '\t', '\\', '"', '\'':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// unescapeArg undoes escapeArg for the partially typed word under the cursor.
func unescapeArg(word string) string {
	if !strings.ContainsRune(word, '\\') {
		return word
	}
	var (
		b       strings.Builder
		escaped bool
	)
	for _, r := range word {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}
