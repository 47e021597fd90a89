// Package projectfile reads and writes carbon project files.
//
// A project file is a single JSON document listing every collection with its
// objects in pre-order. Objects refer to their parent by ID, and field
// overrides refer to the inherited field they replace by ID, so the tree and
// the override links are rebuilt after all objects have been read.
package projectfile

import (
	"encoding/json"
	"strconv"
)

// Extension is the file name extension of project files.
const Extension = ".carbon"

// DefaultFileName is suggested when a project is saved for the first time.
const DefaultFileName = "project" + Extension

// Record is the top-level document.
type Record struct {
	Version     string             `json:"version"`
	Collections []CollectionRecord `json:"collections"`
}

// CollectionRecord is one collection and its objects, root first.
type CollectionRecord struct {
	Name    string         `json:"name"`
	ID      string         `json:"id"`
	Objects []ObjectRecord `json:"objects"`
}

// ObjectRecord is one object. Parent is null for the root.
type ObjectRecord struct {
	Name           string           `json:"name"`
	ID             string           `json:"id"`
	Parent         *string          `json:"parent"`
	IsType         *bool            `json:"is_type"`
	Fields         []FieldRecord    `json:"fields"`
	FieldOverrides []OverrideRecord `json:"field_overrides"`
}

// FieldRecord is a field declared by an object.
type FieldRecord struct {
	Name    string   `json:"name"`
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Data    Data     `json:"data"`
	Options []string `json:"options,omitempty"`
}

// OverrideRecord replaces the value of the inherited field with ID Override.
type OverrideRecord struct {
	Override string `json:"override"`
	Data     Data   `json:"data"`
}

// Data is the string form of a field value.
//
// Files written by hand or by older tools sometimes store numbers and booleans
// as JSON literals, so those are accepted and converted to their string form.
// Set records whether the key was present at all.
type Data struct {
	Value string
	Set   bool
}

// StringData wraps s as present data.
func StringData(s string) Data { return Data{Value: s, Set: true} }

func (d Data) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Value)
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	d.Set = true
	switch x := v.(type) {
	case string:
		d.Value = x
	case float64:
		d.Value = strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		d.Value = strconv.FormatBool(x)
	default:
		d.Value = ""
	}
	return nil
}
