package discord

import "github.com/Soypete/star-interview-bot/interview"

// MessageLimit is the largest message Discord accepts, in characters.
const MessageLimit = 2000

// ChunkMessage splits text into segments of at most limit characters at fixed offsets.
// Joining the segments gives back text. Empty text gives no segments.
func ChunkMessage(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 {
		return []string{text}
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// renderReply turns a reply into the messages to send. A body over the limit is sent as bare
// chunks; anything shorter gets its header and is chunked again in case the header pushed it over.
func renderReply(reply interview.Reply, limit int) []string {
	var out []string
	for _, msg := range reply.Messages {
		if len([]rune(msg.Body)) > limit {
			out = append(out, ChunkMessage(msg.Body, limit)...)
			continue
		}
		out = append(out, ChunkMessage(msg.Header+msg.Body, limit)...)
	}
	return out
}
