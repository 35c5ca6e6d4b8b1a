package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Collection names present in every document
const (
	CollectionUsers         = "users"
	CollectionProjects      = "projects"
	CollectionTasks         = "tasks"
	CollectionSessions      = "sessions"
	CollectionNotifications = "notifications"
)

// DefaultCollections lists the collections of an empty document
var DefaultCollections = []string{
	CollectionUsers,
	CollectionProjects,
	CollectionTasks,
	CollectionSessions,
	CollectionNotifications,
}

// Record is an untyped JSON object. Numbers are held as json.Number so they
// keep their literal text through a load/save cycle.
type Record map[string]interface{}

// ID returns the string form of the record's id field, or "" when absent.
func (r Record) ID() string {
	return IDString(r["id"])
}

// Merge returns a copy of r with every field of fields written over it.
func (r Record) Merge(fields Record) Record {
	out := make(Record, len(r)+len(fields))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// NewRecord converts a typed entity into a Record.
func NewRecord(v interface{}) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	return DecodeRecord(raw)
}

// DecodeRecord parses a JSON object, preserving number literals.
func DecodeRecord(raw []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if rec == nil {
		return nil, ErrInvalidRecord
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidRecord)
	}
	return rec, nil
}

// IDString renders an id value the way it appears in JSON text.
func IDString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case bool:
		if id {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(id)
	}
}

// Document is the whole persisted state: collection name to records.
type Document map[string][]Record

// NewDocument returns a document holding every default collection, empty.
func NewDocument() Document {
	doc := make(Document, len(DefaultCollections))
	for _, name := range DefaultCollections {
		doc[name] = []Record{}
	}
	return doc
}

// Extra holds top-level document keys whose values are not arrays of
// objects. They are kept as raw JSON and written back unchanged.
type Extra map[string]json.RawMessage

// ParseDocument decodes raw JSON into a document. Default collections are
// filled in when missing. Keys that do not hold an array of objects are
// returned in Extra rather than failing the whole document.
func ParseDocument(raw []byte) (Document, Extra, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, nil, fmt.Errorf("parse document: %w", err)
	}
	if top == nil {
		return nil, nil, fmt.Errorf("parse document: not an object")
	}

	doc := NewDocument()
	var extra Extra
	for name, value := range top {
		records, ok := decodeCollection(value)
		if !ok {
			if extra == nil {
				extra = make(Extra)
			}
			extra[name] = value
			delete(doc, name)
			continue
		}
		doc[name] = records
	}
	return doc, extra, nil
}

func decodeCollection(raw json.RawMessage) ([]Record, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []Record{}, true
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var records []Record
	if err := dec.Decode(&records); err != nil {
		return nil, false
	}
	for _, rec := range records {
		if rec == nil {
			return nil, false
		}
	}
	if records == nil {
		records = []Record{}
	}
	return records, true
}

// Encode renders the document as 2-space indented JSON.
func (d Document) Encode() ([]byte, error) {
	return EncodeDocument(d, nil)
}

// EncodeDocument renders the document together with its extra keys. A
// collection shadows an extra key of the same name.
func EncodeDocument(d Document, extra Extra) ([]byte, error) {
	out := make(map[string]interface{}, len(d)+len(extra))
	for name, value := range extra {
		out[name] = value
	}
	for name, records := range d {
		out[name] = records
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}

// Names returns the document's collection names in sorted order.
func (d Document) Names() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IndexOf returns the position of the first record in collection whose id
// matches, or -1.
func (d Document) IndexOf(collection, id string) int {
	for i, rec := range d[collection] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}
