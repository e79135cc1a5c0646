package resilience

import "context"

const (
	cmsMessage      = "Some content is temporarily unavailable. Please check back soon."
	authMessage     = "Your session has expired. Please sign in again."
	databaseMessage = "We're having trouble loading some data right now."
	networkMessage  = "Connection problem. Some content may be out of date."
	genericMessage  = "Something went wrong. Please try again later."
)

func defaultHandlers() map[Kind]Handler {
	return map[Kind]Handler{
		KindCMS:      staleOrNotify("warning", cmsMessage),
		KindAuth:     notifyHandler("warning", authMessage),
		KindDatabase: notifyHandler("warning", databaseMessage),
		KindNetwork:  staleOrNotify("warning", networkMessage),
		KindUnknown:  notifyHandler("error", genericMessage),
	}
}

// notifyHandler recovers nothing and shows message.
func notifyHandler(level, message string) Handler {
	return func(context.Context, Call, error, *FallbackStore) Recovery {
		return Recovery{Notice: &Notice{Level: level, Message: message}}
	}
}

// staleOrNotify serves the last known good value silently when there is one,
// otherwise shows message.
func staleOrNotify(level, message string) Handler {
	return func(ctx context.Context, call Call, _ error, fallbacks *FallbackStore) Recovery {
		if v, ok := lastKnownGood(ctx, call, fallbacks); ok {
			return Recovery{Value: v, Found: true}
		}
		return Recovery{Notice: &Notice{Level: level, Message: message}}
	}
}

func lastKnownGood(ctx context.Context, call Call, fallbacks *FallbackStore) (any, bool) {
	if fallbacks == nil || call.Decode == nil {
		return nil, false
	}
	raw, ok, err := fallbacks.Load(ctx, call.storeKey())
	if err != nil || !ok {
		return nil, false
	}
	v, err := call.Decode(raw)
	if err != nil {
		return nil, false
	}
	return v, true
}
