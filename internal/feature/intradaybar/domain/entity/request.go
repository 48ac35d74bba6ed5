package entity

import "time"

// OperationIntradayBar is the operation name of an intraday bar request.
const OperationIntradayBar = "IntradayBarRequest"

// FieldName identifies one request field. The set is closed: only the
// constants below are valid keys of a Request.
type FieldName string

const (
	FieldSecurity          FieldName = "security"
	FieldEventType         FieldName = "eventType"
	FieldInterval          FieldName = "interval"
	FieldStartDateTime     FieldName = "startDateTime"
	FieldEndDateTime       FieldName = "endDateTime"
	FieldGapFillInitialBar FieldName = "gapFillInitialBar"
)

// Field is one populated request field. Exactly one of the value members is
// meaningful, selected by the field name.
type Field struct {
	Name FieldName
	Str  string
	Int  int
	Time time.Time
	Bool bool
}

// Value returns the field value as an untyped interface, for encoders.
func (f Field) Value() any {
	switch f.Name {
	case FieldSecurity, FieldEventType:
		return f.Str
	case FieldInterval:
		return f.Int
	case FieldStartDateTime, FieldEndDateTime:
		return f.Time
	case FieldGapFillInitialBar:
		return f.Bool
	default:
		return nil
	}
}

// Request is the field bag submitted for one operation. Fields keep the order
// in which they were first set.
type Request struct {
	operation string
	fields    []Field
}

// NewRequest creates an empty request for the given operation.
func NewRequest(operation string) *Request {
	return &Request{operation: operation}
}

// Operation returns the operation name, e.g. "IntradayBarRequest".
func (r *Request) Operation() string { return r.operation }

// SetString sets a string field (security, eventType).
func (r *Request) SetString(name FieldName, v string) { r.set(Field{Name: name, Str: v}) }

// SetInt sets an integer field (interval).
func (r *Request) SetInt(name FieldName, v int) { r.set(Field{Name: name, Int: v}) }

// SetTime sets a datetime field (startDateTime, endDateTime).
func (r *Request) SetTime(name FieldName, v time.Time) { r.set(Field{Name: name, Time: v}) }

// SetBool sets a boolean field (gapFillInitialBar).
func (r *Request) SetBool(name FieldName, v bool) { r.set(Field{Name: name, Bool: v}) }

func (r *Request) set(f Field) {
	for i := range r.fields {
		if r.fields[i].Name == f.Name {
			r.fields[i] = f
			return
		}
	}
	r.fields = append(r.fields, f)
}

// Has reports whether the field has been set.
func (r *Request) Has(name FieldName) bool {
	_, ok := r.Get(name)
	return ok
}

// Get returns the field with the given name.
func (r *Request) Get(name FieldName) (Field, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// StringValue returns a string field value.
func (r *Request) StringValue(name FieldName) (string, bool) {
	f, ok := r.Get(name)
	return f.Str, ok
}

// IntValue returns an integer field value.
func (r *Request) IntValue(name FieldName) (int, bool) {
	f, ok := r.Get(name)
	return f.Int, ok
}

// TimeValue returns a datetime field value.
func (r *Request) TimeValue(name FieldName) (time.Time, bool) {
	f, ok := r.Get(name)
	return f.Time, ok
}

// BoolValue returns a boolean field value.
func (r *Request) BoolValue(name FieldName) (bool, bool) {
	f, ok := r.Get(name)
	return f.Bool, ok
}

// Fields returns a copy of the populated fields in insertion order.
func (r *Request) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of populated fields.
func (r *Request) Len() int { return len(r.fields) }
