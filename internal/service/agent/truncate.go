package agent

const truncationMarker = "...[truncated]"

// truncateResult bounds a tool-result payload before it re-enters the
// model's context. The marker tells the model the data is partial.
func truncateResult(payload string, maxLen int) string {
	if maxLen <= 0 || len(payload) <= maxLen {
		return payload
	}

	cut := maxLen - len(truncationMarker)
	if cut < 0 {
		cut = 0
	}
	// Back off to a rune boundary so multi-byte text is not split.
	for cut > 0 && payload[cut]&0xC0 == 0x80 {
		cut--
	}
	return payload[:cut] + truncationMarker
}
