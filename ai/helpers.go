package ai

import "strings"

// CleanResponse strips chat template tokens some local models leak into their output.
// Newlines are kept since Discord renders them.
func CleanResponse(resp string) string {
	resp = strings.ReplaceAll(resp, "<|im_start|>", "")
	resp = strings.ReplaceAll(resp, "<|im_end|>", "")
	resp = strings.ReplaceAll(resp, "<|eot_id|>", "")
	return strings.TrimSpace(resp)
}
