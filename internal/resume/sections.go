package resume

import "strings"

// collectSection finds the first line containing any header keyword and
// collects the following lines until a terminator line or end of text.
// Blank lines inside the block are kept so paragraph breaks survive; only
// trailing blanks are trimmed. With stopAtMarker set, any later line opening
// with the generic section marker also ends the block.
func collectSection(rawLines []string, headers, terminators []string, stopAtMarker bool) string {
	for i, line := range rawLines {
		if line == "" || !containsAny(line, headers) {
			continue
		}

		var block []string
		for _, cur := range rawLines[i+1:] {
			if cur != "" {
				if containsAny(cur, terminators) {
					break
				}
				if stopAtMarker && strings.HasPrefix(cur, sectionMarker) {
					break
				}
			}
			block = append(block, cur)
		}

		for len(block) > 0 && block[len(block)-1] == "" {
			block = block[:len(block)-1]
		}
		if len(block) == 0 {
			// Header with no content; a later duplicate header may have some.
			continue
		}
		return strings.Join(block, "\n")
	}
	return ""
}
