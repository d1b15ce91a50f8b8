package enum

import "encoding/json"

// NotificationKind distinguishes success toasts from error toasts
type NotificationKind int

const (
	NotificationKindSuccess NotificationKind = 0
	NotificationKindError   NotificationKind = 1
)

func (k NotificationKind) String() string {
	if k == NotificationKindError {
		return "error"
	}
	return "success"
}

func (k NotificationKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}
