package chat

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxAnswerLines is how many bullet lines the widget renders
	maxAnswerLines = 3
	// maxAnswerLength bounds the whole formatted answer
	maxAnswerLength = 400
)

// FormatAnswer normalizes a model completion into at most three bullet
// lines capped at 400 characters. Model output is unpredictable, so
// numbering, stray bullets and blank lines are all cleaned up here.
func FormatAnswer(raw string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")

	bullets := make([]string, 0, maxAnswerLines)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = stripBulletPrefix(line)
		if line == "" {
			continue
		}
		bullets = append(bullets, "- "+line)
		if len(bullets) == maxAnswerLines {
			break
		}
	}

	if len(bullets) == 0 {
		return ""
	}

	answer := strings.Join(bullets, "\n")
	// The cap counts characters, not bytes; slicing runes keeps multi-byte
	// content valid UTF-8.
	if utf8.RuneCountInString(answer) > maxAnswerLength {
		runes := []rune(answer)
		answer = string(runes[:maxAnswerLength-3]) + "..."
	}
	return answer
}

// stripBulletPrefix removes leading bullet or numbering markers
func stripBulletPrefix(line string) string {
	for _, prefix := range []string{"-", "*", "•"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	// Numbered lists like "1. " or "2) "
	if len(line) > 2 && line[0] >= '0' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') {
		return strings.TrimSpace(line[2:])
	}
	return line
}
