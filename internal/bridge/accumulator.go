package bridge

import "strings"

// pendingCall assembles one streamed function call. The name may arrive
// on any fragment or only on the completion event.
type pendingCall struct {
	name      string
	fragments []string
}

// callAccumulator reassembles fragmented function-call arguments, keyed
// by call id. It is owned by the session's upstream read loop and needs
// no synchronization: events for a session are processed one at a time.
type callAccumulator struct {
	calls map[string]*pendingCall
}

func newCallAccumulator() *callAccumulator {
	return &callAccumulator{calls: make(map[string]*pendingCall)}
}

// appendFragment records an argument delta for a call, creating the entry
// on first sight. A non-empty name overwrites any previously recorded one.
func (a *callAccumulator) appendFragment(callID, name, delta string) {
	call, ok := a.calls[callID]
	if !ok {
		call = &pendingCall{}
		a.calls[callID] = call
	}
	if name != "" {
		call.name = name
	}
	call.fragments = append(call.fragments, delta)
}

// complete consumes the entry for a call and returns the effective tool
// name and argument string. An existing entry's concatenated fragments
// are always used as-is; only when no entry exists does the completion
// event's own arguments field apply, defaulting to an empty object. The
// entry never outlives its completion.
func (a *callAccumulator) complete(callID, eventName, eventArguments string) (name, arguments string) {
	name = eventName
	call, ok := a.calls[callID]
	if !ok {
		arguments = eventArguments
		if arguments == "" {
			arguments = "{}"
		}
		return name, arguments
	}
	arguments = strings.Join(call.fragments, "")
	if call.name != "" {
		name = call.name
	}
	delete(a.calls, callID)
	return name, arguments
}

// pending reports the number of calls still being assembled.
func (a *callAccumulator) pending() int {
	return len(a.calls)
}

// reset discards all pending call state on session teardown.
func (a *callAccumulator) reset() {
	a.calls = make(map[string]*pendingCall)
}
