package mirror

import "encoding/json"

// PayloadRecordID extracts the record id a notification payload concerns,
// or "" when the payload carries none.
func PayloadRecordID(payload any) string {
	switch p := payload.(type) {
	case string:
		return p
	case Record:
		return p.ID
	case UpdateStart:
		return p.ID
	case UpdateEnd:
		return p.Item.ID
	}
	return ""
}

// PayloadJSON encodes a notification payload for journaling or publishing.
// The UpdateEnd OnChange transform is not serializable and is dropped; only
// the observable fields go on the wire.
func PayloadJSON(payload any) ([]byte, error) {
	if p, ok := payload.(UpdateEnd); ok {
		payload = struct {
			ListName string `json:"list_name"`
			Item     Record `json:"item"`
		}{ListName: p.ListName, Item: p.Item}
	}
	return json.Marshal(payload)
}
