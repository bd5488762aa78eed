// internal/models/session_data.go
package models

import (
	"encoding/json"
	"fmt"
)

// SessionDataCategoryKey is the session_data key conversations are grouped by.
const SessionDataCategoryKey = "category"

// SessionData is the semi-structured conversations.session_data document.
// Values are of mixed type; only the category key is read here.
type SessionData map[string]interface{}

// Category returns nil when the key is absent, null, or not a string.
func (s SessionData) Category() *string {
	v, ok := s[SessionDataCategoryKey]
	if !ok || v == nil {
		return nil
	}
	str, ok := v.(string)
	if !ok {
		return nil
	}
	return &str
}

// Scan implements sql.Scanner for JSON/JSONB columns.
func (s *SessionData) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("session_data: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*s = nil
		return nil
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("session_data: %w", err)
	}
	*s = doc
	return nil
}
