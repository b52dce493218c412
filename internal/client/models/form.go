package models

// FormBuffer is the transient edit state of the console form. Kind is the
// entity kind the form was opened for. Editing is nil in create mode and
// holds the record being edited otherwise.
type FormBuffer struct {
	Kind    string
	Values  map[string]any
	Editing Record
}

// Clone returns a copy whose Values map can be modified independently.
func (f *FormBuffer) Clone() *FormBuffer {
	if f == nil {
		return nil
	}
	out := &FormBuffer{Kind: f.Kind, Editing: f.Editing, Values: make(map[string]any, len(f.Values))}
	for k, v := range f.Values {
		out.Values[k] = v
	}
	return out
}

// IsEdit reports whether the buffer edits an existing record.
func (f *FormBuffer) IsEdit() bool {
	return f != nil && f.Editing != nil
}

// Option is one entry of a select field.
type Option struct {
	Value string
	Label string
}
