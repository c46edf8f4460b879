package document

// OffsetsToLines maps character offsets found in one view onto line numbers,
// the only currency valid across both views. It walks the view's lines
// accumulating a running offset (line length plus one for the newline) and
// records the line whose [start, end] range contains each target offset.
// An end offset that is never contained (it can land exactly on a line
// boundary) falls back to the last line.
func OffsetsToLines(text string, startOffset, endOffset int) (startLine, endLine int) {
	lines := Lines(text)
	endLine = len(lines) - 1

	pos := 0
	for i, line := range lines {
		lineStart := pos
		lineEnd := pos + len(line)

		if lineStart <= startOffset && startOffset <= lineEnd {
			startLine = i
		}
		if lineStart <= endOffset && endOffset <= lineEnd {
			endLine = i
			break
		}
		pos = lineEnd + 1
	}
	return startLine, endLine
}

// SliceLines returns lines[start..end] (inclusive), clamped to the slice.
func SliceLines(lines []string, start, end int) []string {
	if len(lines) == 0 {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start > end {
		return nil
	}
	return lines[start : end+1]
}
