// Package answers models persisted questionnaire answers as a tagged variant
// tree. The variant kind is decided when a payload is decoded or normalized;
// downstream consumers (the compiler in particular) dispatch on Kind and never
// re-infer shape from raw JSON.
package answers

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Kind tags the runtime shape of a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindScalarList
	KindRecord
	KindRecordList
	KindAttachment
	KindAttachmentList
	KindBlob
	KindBlobList
)

// Attachment is the storage metadata that replaces an uploaded binary inside
// an answer tree. Immutable once created; copied by value, never aliased.
type Attachment struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	StoragePath string `json:"storagePath"`
	Bucket      string `json:"bucket"`
}

// Blob is an in-memory binary awaiting upload. Blobs exist only between form
// submission and normalization; they must never reach persistence.
type Blob struct {
	Name        string
	ContentType string
	Data        []byte
}

// Value is one node of an answer tree.
type Value struct {
	Kind       Kind
	Scalar     any // string, float64, bool, or nil
	List       []Value
	Record     map[string]Value
	Attachment Attachment
	Blob       *Blob
}

// Tree maps field names to answer values for one section.
type Tree map[string]Value

var errBlobNotNormalized = errors.New("answers: binary value reached persistence without normalization")

func String(s string) Value     { return Value{Kind: KindScalar, Scalar: s} }
func Number(f float64) Value    { return Value{Kind: KindScalar, Scalar: f} }
func Bool(b bool) Value         { return Value{Kind: KindScalar, Scalar: b} }
func Null() Value               { return Value{Kind: KindScalar, Scalar: nil} }
func FileValue(b Blob) Value    { return Value{Kind: KindBlob, Blob: &b} }
func Stored(a Attachment) Value { return Value{Kind: KindAttachment, Attachment: a} }

// StringList builds a ScalarList of strings (multi-select answers).
func StringList(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return Value{Kind: KindScalarList, List: list}
}

// RecordValue builds a Record node.
func RecordValue(fields map[string]Value) Value {
	return Value{Kind: KindRecord, Record: fields}
}

// Records builds a RecordList node (repeater answers).
func Records(rows ...map[string]Value) Value {
	list := make([]Value, len(rows))
	for i, row := range rows {
		list[i] = RecordValue(row)
	}
	return Value{Kind: KindRecordList, List: list}
}

// FileList builds a BlobList node (multi-file answers).
func FileList(blobs ...Blob) Value {
	list := make([]Value, len(blobs))
	for i, b := range blobs {
		list[i] = FileValue(b)
	}
	return Value{Kind: KindBlobList, List: list}
}

// IsEmpty reports whether the value renders as nothing: nil or empty-string
// scalars and empty lists/records are omitted from compiled output.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindScalar:
		if v.Scalar == nil {
			return true
		}
		s, ok := v.Scalar.(string)
		return ok && s == ""
	case KindScalarList, KindRecordList, KindAttachmentList, KindBlobList:
		return len(v.List) == 0
	case KindRecord:
		return len(v.Record) == 0
	}
	return false
}

// SortedKeys returns a Record's field names in lexicographic order, so every
// consumer iterates records deterministically.
func (v Value) SortedKeys() []string {
	keys := make([]string, 0, len(v.Record))
	for k := range v.Record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a structurally independent copy of the value.
func (v Value) Clone() Value {
	out := Value{Kind: v.Kind, Scalar: v.Scalar, Attachment: v.Attachment}
	if v.Blob != nil {
		b := Blob{Name: v.Blob.Name, ContentType: v.Blob.ContentType, Data: append([]byte(nil), v.Blob.Data...)}
		out.Blob = &b
	}
	if v.List != nil {
		out.List = make([]Value, len(v.List))
		for i, item := range v.List {
			out.List[i] = item.Clone()
		}
	}
	if v.Record != nil {
		out.Record = make(map[string]Value, len(v.Record))
		for k, item := range v.Record {
			out.Record[k] = item.Clone()
		}
	}
	return out
}

// Clone returns a structurally independent copy of the tree.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		out[k] = v.Clone()
	}
	return out
}

// MarshalJSON emits the plain JSON shape persisted documents use:
// scalars as themselves, records as objects, lists as arrays, attachments as
// their metadata object. Blobs are a persistence error by construction.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindScalar:
		return json.Marshal(v.Scalar)
	case KindScalarList, KindRecordList, KindAttachmentList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindRecord:
		return json.Marshal(v.Record)
	case KindAttachment:
		return json.Marshal(v.Attachment)
	case KindBlob, KindBlobList:
		return nil, errBlobNotNormalized
	}
	return nil, fmt.Errorf("answers: unknown value kind %d", v.Kind)
}

// UnmarshalJSON decides the variant kind from the JSON shape once, at decode
// time. An object carrying the full attachment metadata key set is an
// Attachment; any other object is a Record. An array takes its kind from its
// first element.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := decodeValue(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func decodeValue(data []byte) (Value, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return Value{}, err
	}
	return fromAny(probe)
}

func fromAny(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(val), nil
	case float64:
		return Number(val), nil
	case bool:
		return Bool(val), nil
	case []any:
		return listFromAny(val)
	case map[string]any:
		return objectFromAny(val)
	}
	return Value{}, fmt.Errorf("answers: unsupported JSON shape %T", raw)
}

func listFromAny(items []any) (Value, error) {
	if len(items) == 0 {
		return Value{Kind: KindScalarList, List: []Value{}}, nil
	}
	list := make([]Value, len(items))
	for i, item := range items {
		decoded, err := fromAny(item)
		if err != nil {
			return Value{}, err
		}
		list[i] = decoded
	}
	switch list[0].Kind {
	case KindAttachment:
		return Value{Kind: KindAttachmentList, List: list}, nil
	case KindRecord:
		return Value{Kind: KindRecordList, List: list}, nil
	default:
		return Value{Kind: KindScalarList, List: list}, nil
	}
}

func objectFromAny(fields map[string]any) (Value, error) {
	if att, ok := attachmentFromAny(fields); ok {
		return Stored(att), nil
	}
	record := make(map[string]Value, len(fields))
	for k, item := range fields {
		decoded, err := fromAny(item)
		if err != nil {
			return Value{}, err
		}
		record[k] = decoded
	}
	return RecordValue(record), nil
}

// attachmentFromAny recognizes the exact metadata shape the uploader writes.
// Requiring storagePath and bucket keeps repeater rows that merely mention a
// "name" column from being misread as attachments.
func attachmentFromAny(fields map[string]any) (Attachment, bool) {
	path, okPath := fields["storagePath"].(string)
	bucket, okBucket := fields["bucket"].(string)
	if !okPath || !okBucket || path == "" || bucket == "" {
		return Attachment{}, false
	}
	att := Attachment{StoragePath: path, Bucket: bucket}
	if name, ok := fields["name"].(string); ok {
		att.Name = name
	}
	if ct, ok := fields["contentType"].(string); ok {
		att.ContentType = ct
	}
	if size, ok := fields["size"].(float64); ok {
		att.Size = int64(size)
	}
	return att, true
}

// DecodeTree parses a persisted answers document into a tree.
func DecodeTree(data []byte) (Tree, error) {
	if len(data) == 0 {
		return Tree{}, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	tree := make(Tree, len(raw))
	for k, msg := range raw {
		decoded, err := decodeValue(msg)
		if err != nil {
			return nil, fmt.Errorf("decode answer %q: %w", k, err)
		}
		tree[k] = decoded
	}
	return tree, nil
}
