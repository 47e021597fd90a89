package projectfile

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"

	"github.com/glint-tools/carbon/internal/names"
	"github.com/glint-tools/carbon/internal/project"
)

// Option configures Read and the functions built on it.
type Option func(*reader)

// WithLogger reports skipped or repaired entities to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *reader) {
		if logger != nil {
			r.log = logger
		}
	}
}

type reader struct {
	log *slog.Logger
}

func newReader(opts []Option) *reader {
	r := &reader{log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Unmarshal parses a project file.
func Unmarshal(data []byte, opts ...Option) (*project.Project, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse project file: %w", err)
	}
	return Read(rec, opts...), nil
}

// Read rebuilds a project from its record.
//
// Reading is tolerant: unknown field types and overrides whose target cannot be
// found are skipped, malformed IDs are replaced with fresh ones, and objects
// with a missing or unknown parent are attached to the collection root.
func Read(rec Record, opts ...Option) *project.Project {
	r := newReader(opts)

	p := project.New()
	p.Version = r.version(rec.Version)
	for _, cr := range rec.Collections {
		p.AddCollection(r.collection(cr))
	}
	return p
}

func (r *reader) version(v string) string {
	if v == "" {
		return project.FormatVersion
	}
	got, err := semver.NewVersion(v)
	if err != nil {
		r.log.Warn("unrecognised project version", "version", v, "err", err)
		return v
	}
	if got.GreaterThan(semver.MustParse(project.FormatVersion)) {
		r.log.Warn("project was written by a newer version", "version", v, "supported", project.FormatVersion)
	}
	return v
}

func (r *reader) id(s, kind, name string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		r.log.Warn("replacing malformed id", "kind", kind, "name", name, "id", s)
		return uuid.New()
	}
	return id
}

func (r *reader) collection(cr CollectionRecord) *project.Collection {
	objects := make([]*project.Object, 0, len(cr.Objects))
	parents := make(map[project.ObjectID]project.ObjectID, len(cr.Objects))
	pending := make(map[*project.Object][]OverrideRecord)

	// Pass 1: objects and the fields they declare.
	for _, or := range cr.Objects {
		isType := or.IsType == nil || *or.IsType
		obj := project.NewObjectWithID(r.id(or.ID, "object", or.Name), names.Parse(or.Name), isType)
		for _, fr := range or.Fields {
			if f := r.field(fr); f != nil {
				obj.AppendField(f)
			}
		}
		if or.Parent != nil {
			pid, err := uuid.Parse(*or.Parent)
			if err != nil || pid == uuid.Nil {
				// Never let a broken parent reference make this the root.
				r.log.Warn("unknown parent", "object", or.Name, "parent", *or.Parent)
				pid = uuid.New()
			}
			parents[obj.ID()] = pid
		}
		if len(or.FieldOverrides) > 0 {
			pending[obj] = or.FieldOverrides
		}
		objects = append(objects, obj)
	}

	id, err := uuid.Parse(cr.ID)
	if err != nil {
		r.log.Warn("replacing malformed id", "kind", "collection", "name", cr.Name, "id", cr.ID)
		id = uuid.New()
	}
	c := project.AssembleCollection(id, names.Parse(cr.Name), objects, parents)

	// Pass 2: overrides, ancestors first so nested overrides find their target.
	for _, obj := range c.Objects() {
		for _, orr := range pending[obj] {
			r.override(c, obj, orr)
		}
	}
	return c
}

func (r *reader) field(fr FieldRecord) *project.Field {
	t, ok := project.ParseFieldType(fr.Type)
	if !ok || t == project.FieldNone {
		r.log.Warn("skipping field of unknown type", "field", fr.Name, "type", fr.Type)
		return nil
	}

	var v project.Value
	switch t {
	case project.FieldString:
		v = project.StringValue{Text: fr.Data.Value, Options: fr.Options}
	case project.FieldText:
		v = project.TextValue{Text: fr.Data.Value}
	case project.FieldNumber:
		v = project.NumberValue{Number: r.number(fr.Name, fr.Data)}
	case project.FieldBoolean:
		v = project.BooleanValue{Bool: r.boolean(fr.Name, fr.Data)}
	case project.FieldImage:
		v = project.ImageValue{Path: fr.Data.Value}
	}
	return project.NewFieldWithID(r.id(fr.ID, "field", fr.Name), names.Parse(fr.Name), v)
}

func (r *reader) number(name string, d Data) float64 {
	s := strings.TrimSpace(d.Value)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.log.Warn("unparseable number", "field", name, "data", d.Value)
		return 0
	}
	return n
}

func (r *reader) boolean(name string, d Data) bool {
	s := strings.TrimSpace(d.Value)
	if s == "" {
		return false
	}
	switch {
	case strings.EqualFold(s, "true"):
		return true
	case !strings.EqualFold(s, "false"):
		r.log.Warn("unparseable boolean", "field", name, "data", d.Value)
	}
	return false
}

func (r *reader) override(c *project.Collection, obj *project.Object, orr OverrideRecord) {
	if !orr.Data.Set {
		r.log.Warn("skipping override without data", "object", obj.Name(), "override", orr.Override)
		return
	}
	key, err := uuid.Parse(orr.Override)
	if err != nil {
		r.log.Warn("skipping override with malformed id", "object", obj.Name(), "override", orr.Override)
		return
	}

	var target *project.Field
	for _, a := range c.Ancestors(obj) {
		if target = a.FindField(key, true); target != nil {
			break
		}
	}
	if target == nil {
		r.log.Warn("skipping override of unknown field", "object", obj.Name(), "override", orr.Override)
		return
	}

	ov := c.OverrideField(obj, target, nil)
	if ov != nil && !ov.SetData(orr.Data.Value) {
		r.log.Warn("unparseable override data", "object", obj.Name(), "field", target.Name(), "data", orr.Data.Value)
	}
}
