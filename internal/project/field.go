package project

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anthonynsimon/bild/clone"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/glint-tools/carbon/internal/names"
)

// FieldID identifies a field. It is preserved across saves.
type FieldID = uuid.UUID

// FieldType is the variant tag of a field.
type FieldType int

const (
	FieldNone FieldType = iota
	FieldString
	FieldText
	FieldNumber
	FieldBoolean
	FieldImage
)

var fieldTypeNames = [...]string{
	FieldNone:    "None",
	FieldString:  "String",
	FieldText:    "Text",
	FieldNumber:  "Number",
	FieldBoolean: "Boolean",
	FieldImage:   "Image",
}

// String returns the tag written to project files ("String", "Number", ...).
func (t FieldType) String() string {
	if t < 0 || int(t) >= len(fieldTypeNames) {
		return fieldTypeNames[FieldNone]
	}
	return fieldTypeNames[t]
}

// ParseFieldType parses a type tag case-insensitively.
func ParseFieldType(s string) (FieldType, bool) {
	s = strings.TrimSpace(s)
	for i, name := range fieldTypeNames {
		if strings.EqualFold(s, name) {
			return FieldType(i), true
		}
	}
	return FieldNone, false
}

// FieldTypes lists the concrete field types in tool order.
func FieldTypes() []FieldType {
	return []FieldType{FieldString, FieldText, FieldNumber, FieldBoolean, FieldImage}
}

// Value is the data carried by a field. It is one of StringValue, TextValue,
// NumberValue, BooleanValue or ImageValue.
type Value interface {
	Type() FieldType
	isValue()
}

// StringValue is single-line text. A non-empty Options list restricts the value
// to a closed set of choices.
type StringValue struct {
	Text    string
	Options []string
}

// TextValue is multi-line text.
type TextValue struct {
	Text string
}

// NumberValue is a double-precision number.
type NumberValue struct {
	Number float64
}

// BooleanValue is a flag.
type BooleanValue struct {
	Bool bool
}

// ImageValue references an image by path. Image holds the prepared pixels when
// the image has been loaded.
type ImageValue struct {
	Path  string
	Image image.Image
}

func (StringValue) Type() FieldType  { return FieldString }
func (TextValue) Type() FieldType    { return FieldText }
func (NumberValue) Type() FieldType  { return FieldNumber }
func (BooleanValue) Type() FieldType { return FieldBoolean }
func (ImageValue) Type() FieldType   { return FieldImage }

func (StringValue) isValue()  {}
func (TextValue) isValue()    {}
func (NumberValue) isValue()  {}
func (BooleanValue) isValue() {}
func (ImageValue) isValue()   {}

// ImageLoader decodes and prepares the image referenced by an image field.
type ImageLoader interface {
	LoadImage(path string) (image.Image, error)
}

// Field is a named, typed value declared on an object or held as an override.
type Field struct {
	id    FieldID
	name  names.Name
	key   string
	value Value
	links []FieldID
}

// NewField creates a field with a fresh ID. A nil value creates a string field.
func NewField(name string, value Value) *Field {
	return NewFieldWithID(uuid.New(), names.Parse(name), value)
}

// NewFieldWithID creates a field with a known ID, as when loading a project.
func NewFieldWithID(id FieldID, name names.Name, value Value) *Field {
	if value == nil {
		value = StringValue{}
	}
	f := &Field{id: id, value: cloneValue(value)}
	f.SetName(name)
	return f
}

// NewStringField creates a single-line text field.
func NewStringField(name, text string, options ...string) *Field {
	return NewField(name, StringValue{Text: text, Options: options})
}

// NewTextField creates a multi-line text field.
func NewTextField(name, text string) *Field {
	return NewField(name, TextValue{Text: text})
}

// NewNumberField creates a number field.
func NewNumberField(name string, n float64) *Field {
	return NewField(name, NumberValue{Number: n})
}

// NewBooleanField creates a boolean field.
func NewBooleanField(name string, b bool) *Field {
	return NewField(name, BooleanValue{Bool: b})
}

// NewImageField creates an image field referencing path.
func NewImageField(name, path string) *Field {
	return NewField(name, ImageValue{Path: path})
}

// NewFieldOfType creates an empty field of the given type, or nil for FieldNone.
func NewFieldOfType(t FieldType, name string) *Field {
	v := zeroValue(t)
	if v == nil {
		return nil
	}
	return NewField(name, v)
}

func zeroValue(t FieldType) Value {
	switch t {
	case FieldString:
		return StringValue{}
	case FieldText:
		return TextValue{}
	case FieldNumber:
		return NumberValue{}
	case FieldBoolean:
		return BooleanValue{}
	case FieldImage:
		return ImageValue{}
	}
	return nil
}

// ID returns the field's identity.
func (f *Field) ID() FieldID { return f.id }

// Name returns the display name.
func (f *Field) Name() names.Name { return f.name }

// Key returns the lowerCamelCase key derived from the name ("Max Health" -> "maxHealth").
func (f *Field) Key() string { return f.key }

// Type returns the variant tag. It never changes after construction.
func (f *Field) Type() FieldType { return f.value.Type() }

// Value returns a copy of the field's value.
func (f *Field) Value() Value { return cloneValue(f.value) }

// SetName sets the name and regenerates the key. It does not touch linked
// fields; Collection.RenameField propagates names.
func (f *Field) SetName(name names.Name) {
	f.name = name.Normalize()
	f.key = fieldKey(f.name.String())
}

func fieldKey(name string) string {
	caser := cases.Title(language.AmericanEnglish)
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		// Acronyms such as HP stay as written.
		if !allUpper(word) {
			word = caser.String(word)
		}
		b.WriteString(strings.ReplaceAll(word, "_", ""))
	}
	key := b.String()
	if key == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToLower(r)) + key[size:]
}

func allUpper(s string) bool {
	letters := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		letters = letters || unicode.IsLetter(r)
	}
	return letters
}

// Data returns the plain value: string for String/Text, float64 for Number,
// bool for Boolean and the path for Image.
func (f *Field) Data() any {
	switch v := f.value.(type) {
	case StringValue:
		return v.Text
	case TextValue:
		return v.Text
	case NumberValue:
		return v.Number
	case BooleanValue:
		return v.Bool
	case ImageValue:
		return v.Path
	}
	return nil
}

// SetData coerces data into the field's variant and stores it.
//
// Input that cannot be converted (an unparseable number, a non-boolean string,
// a non-string image path) is ignored, leaving the previous data in place, and
// SetData reports false.
func (f *Field) SetData(data any) bool {
	switch v := f.value.(type) {
	case StringValue:
		v.Text = stringify(data)
		f.value = v
	case TextValue:
		v.Text = stringify(data)
		f.value = v
	case NumberValue:
		n, ok := toNumber(data)
		if !ok {
			return false
		}
		v.Number = n
		f.value = v
	case BooleanValue:
		b, ok := toBool(data)
		if !ok {
			return false
		}
		v.Bool = b
		f.value = v
	case ImageValue:
		switch p := data.(type) {
		case string:
			v.Path = p
		case nil:
			v.Path = ""
		default:
			return false
		}
		v.Image = nil
		f.value = v
	default:
		return false
	}
	return true
}

// EncodeData returns the string form stored in project files.
func (f *Field) EncodeData() string {
	switch v := f.value.(type) {
	case StringValue:
		return v.Text
	case TextValue:
		return v.Text
	case NumberValue:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case BooleanValue:
		return strconv.FormatBool(v.Bool)
	case ImageValue:
		return v.Path
	}
	return ""
}

// Options returns the choice list of a string field.
func (f *Field) Options() []string {
	if v, ok := f.value.(StringValue); ok {
		return append([]string(nil), v.Options...)
	}
	return nil
}

// SetOptions replaces the choice list. Only string fields have options.
func (f *Field) SetOptions(options []string) bool {
	v, ok := f.value.(StringValue)
	if !ok {
		return false
	}
	v.Options = append([]string(nil), options...)
	f.value = v
	return true
}

// Image returns the loaded image of an image field, if any.
func (f *Field) Image() image.Image {
	if v, ok := f.value.(ImageValue); ok {
		return v.Image
	}
	return nil
}

// LoadImage prepares the image referenced by an image field.
//
// Any previously loaded image is dropped first. Backslashes in the path are
// normalised to forward slashes when the load succeeds.
func (f *Field) LoadImage(loader ImageLoader) bool {
	v, ok := f.value.(ImageValue)
	if !ok {
		return false
	}
	v.Image = nil
	f.value = v

	path := strings.ReplaceAll(v.Path, "\\", "/")
	if path == "" || loader == nil {
		return false
	}

	img, err := loader.LoadImage(path)
	if err != nil || img == nil {
		return false
	}

	v.Path = path
	v.Image = img
	f.value = v
	return true
}

// Duplicate returns a copy with a fresh ID, the same name and data, and no links.
func (f *Field) Duplicate() *Field {
	return &Field{
		id:    uuid.New(),
		name:  f.name,
		key:   f.key,
		value: cloneValue(f.value),
	}
}

// AddLink records an override copy of this field so renames reach it.
func (f *Field) AddLink(id FieldID) {
	if id == f.id || f.HasLink(id) {
		return
	}
	f.links = append(f.links, id)
}

// RemoveLink forgets an override copy.
func (f *Field) RemoveLink(id FieldID) {
	for i, l := range f.links {
		if l == id {
			f.links = append(f.links[:i], f.links[i+1:]...)
			return
		}
	}
}

// HasLink reports whether id is a linked override copy.
func (f *Field) HasLink(id FieldID) bool {
	for _, l := range f.links {
		if l == id {
			return true
		}
	}
	return false
}

// Links returns the IDs of linked override copies.
func (f *Field) Links() []FieldID {
	return append([]FieldID(nil), f.links...)
}

func (f *Field) String() string {
	return fmt.Sprintf("%s (%s)", f.name, f.Type())
}

func cloneValue(v Value) Value {
	switch v := v.(type) {
	case StringValue:
		v.Options = append([]string(nil), v.Options...)
		return v
	case ImageValue:
		if v.Image != nil {
			v.Image = clone.AsRGBA(v.Image)
		}
		return v
	}
	return v
}

func stringify(data any) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(data)
}

// toNumber converts data to a finite number. NaN and infinities are refused
// since no export format can carry them.
func toNumber(data any) (float64, bool) {
	n, ok := parseNumber(data)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseNumber(data any) (float64, bool) {
	switch v := data.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case fmt.Stringer:
		return parseNumber(v.String())
	}
	return 0, false
}

func toBool(data any) (bool, bool) {
	switch v := data.(type) {
	case bool:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		switch {
		case strings.EqualFold(s, "true"):
			return true, true
		case strings.EqualFold(s, "false"):
			return false, true
		}
	}
	return false, false
}
