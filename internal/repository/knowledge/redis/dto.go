package redis

import (
	"github.com/kailas-cloud/hybridchat/internal/domain/knowledge"
)

const (
	fieldID   = "id"
	fieldRaw  = "raw"
	fieldKey  = "key"
	fieldText = "text"
)

// recordToHash converts a knowledge record to a map for HSET.
// Products keep the raw markdown so title and category are re-derived on load.
func recordToHash(r knowledge.Record) map[string]string {
	switch v := r.(type) {
	case knowledge.Customer:
		return v.Fields()
	case knowledge.Product:
		return map[string]string{fieldID: v.ID, fieldRaw: v.RawText}
	case knowledge.Policy:
		return map[string]string{fieldKey: v.Name, fieldText: v.Text}
	}
	return nil
}

// recordFromHash hydrates a record of the given kind from an HGETALL result.
// Returns false for an empty hash (key vanished between SCAN and HGETALL).
func recordFromHash(kind knowledge.Kind, id string, m map[string]string) (knowledge.Record, bool) {
	if len(m) == 0 {
		return nil, false
	}
	switch kind {
	case knowledge.KindCustomer:
		return knowledge.CustomerFromFields(m, id), true
	case knowledge.KindProduct:
		if m[fieldID] != "" {
			id = m[fieldID]
		}
		return knowledge.ParseProduct(id, m[fieldRaw]), true
	case knowledge.KindPolicy:
		name := m[fieldKey]
		if name == "" {
			name = id
		}
		return knowledge.Policy{Name: name, Text: m[fieldText]}, true
	}
	return nil, false
}
