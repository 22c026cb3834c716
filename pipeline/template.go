package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// fillTemplate substitutes {}, {N} and {name} placeholders in line.
// {{ and }} produce literal braces. Every placeholder must have a value.
func fillTemplate(line string, positional []any, named map[string]any) (string, error) {
	var b strings.Builder
	auto, manual := 0, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch c {
		case '{':
			if i+1 < len(line) && line[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(line[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unmatched '{' at offset %d", i)
			}
			key := line[i+1 : i+1+end]
			i += end + 1

			var val any
			switch n, err := strconv.Atoi(key); {
			case key == "":
				if manual {
					return "", fmt.Errorf("cannot mix automatic and manual field numbering")
				}
				if auto >= len(positional) {
					return "", fmt.Errorf("no positional value for placeholder %d", auto)
				}
				val = positional[auto]
				auto++
			case err == nil:
				if auto > 0 {
					return "", fmt.Errorf("cannot mix automatic and manual field numbering")
				}
				manual = true
				if n < 0 || n >= len(positional) {
					return "", fmt.Errorf("no positional value for placeholder {%d}", n)
				}
				val = positional[n]
			default:
				v, ok := named[key]
				if !ok {
					return "", fmt.Errorf("no value for placeholder {%s}", key)
				}
				val = v
			}
			b.WriteString(fmt.Sprint(val))
		case '}':
			if i+1 < len(line) && line[i+1] == '}' {
				i++
			} else {
				return "", fmt.Errorf("single '}' at offset %d", i)
			}
			b.WriteByte('}')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
