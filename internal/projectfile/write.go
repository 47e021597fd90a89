package projectfile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/glint-tools/carbon/internal/project"
)

// Write converts p to its record. Objects are listed in pre-order, so every
// parent precedes its children.
func Write(p *project.Project) Record {
	rec := Record{Version: project.FormatVersion, Collections: []CollectionRecord{}}
	for _, c := range p.Collections() {
		cr := CollectionRecord{
			Name:    c.Name().String(),
			ID:      c.ID().String(),
			Objects: make([]ObjectRecord, 0, c.Len()),
		}
		for _, obj := range c.Objects() {
			cr.Objects = append(cr.Objects, writeObject(obj))
		}
		rec.Collections = append(rec.Collections, cr)
	}
	return rec
}

func writeObject(obj *project.Object) ObjectRecord {
	isType := obj.IsType()
	or := ObjectRecord{
		Name:           obj.Name().String(),
		ID:             obj.ID().String(),
		IsType:         &isType,
		Fields:         make([]FieldRecord, 0, obj.FieldCount()),
		FieldOverrides: []OverrideRecord{},
	}
	if obj.HasParent() {
		parent := obj.ParentID().String()
		or.Parent = &parent
	}

	for _, f := range obj.Fields() {
		or.Fields = append(or.Fields, FieldRecord{
			Name:    f.Name().String(),
			ID:      f.ID().String(),
			Type:    f.Type().String(),
			Data:    StringData(f.EncodeData()),
			Options: f.Options(),
		})
	}
	for _, ov := range obj.Overrides() {
		or.FieldOverrides = append(or.FieldOverrides, OverrideRecord{
			Override: ov.Key.String(),
			Data:     StringData(ov.Field.EncodeData()),
		})
	}
	return or
}

// Marshal encodes p as a tab-indented project file.
func Marshal(p *project.Project) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(Write(p)); err != nil {
		return nil, fmt.Errorf("failed to encode project: %w", err)
	}
	return buf.Bytes(), nil
}
