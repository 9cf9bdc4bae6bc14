package bridge

// clientEventAllowlist is the closed set of client event types permitted
// to reach upstream. Everything the browser needs to drive the
// conversation is here; anything else, including unknown or empty types,
// is rejected. The set is process-wide constant state.
var clientEventAllowlist = map[string]struct{}{
	"input_audio_buffer.append":  {},
	"input_audio_buffer.commit":  {},
	"response.cancel":            {},
	"conversation.item.truncate": {},
	"response.create":            {},
	"conversation.item.create":   {},
	"session.update":             {},
}

// clientEventAllowed reports whether a client event type may be forwarded
// upstream. Membership is exact string match.
func clientEventAllowed(eventType string) bool {
	_, ok := clientEventAllowlist[eventType]
	return ok
}
