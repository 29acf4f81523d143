package llm

import "strings"

// fencePrefixes are the language tags models put on fenced driver code.
var fencePrefixes = []string{"cpp", "CPP", "C++", "c++", "c", "C", "\n"}

// StripCodeFence unwraps a fenced code block from a model reply. Prose before
// the opening fence is preserved as a block comment so the result stays a
// compilable translation unit; a reply without any fence is returned inside
// the same comment framing.
func StripCodeFence(input string) string {
	input = strings.TrimSpace(input)

	preface := ""
	if idx := strings.Index(input, "```"); idx >= 0 {
		preface = input[:idx]
		input = input[idx:]
	}

	for _, prefix := range fencePrefixes {
		input = strings.TrimPrefix(input, "```"+prefix)
	}

	if idx := strings.LastIndex(input, "```"); idx >= 0 {
		input = input[:idx]
	}

	return "/*" + preface + "*/\n" + input
}
