// ABOUTME: Hand-written easyjson encoder for Key so event streams skip reflection.
// ABOUTME: Emits type, spec, rune, modifier flags, and the cursor position when present.

package key

import "github.com/mailru/easyjson/jwriter"

// MarshalEasyJSON writes k as a JSON object.
func (k Key) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"type":`)
	w.String(k.Type.String())
	w.RawString(`,"label":`)
	w.String(k.String())
	if k.Type == KeyRune {
		w.RawString(`,"rune":`)
		w.String(string(k.Rune))
	}
	if k.Ctrl {
		w.RawString(`,"ctrl":true`)
	}
	if k.Alt {
		w.RawString(`,"alt":true`)
	}
	if k.Shift {
		w.RawString(`,"shift":true`)
	}
	if k.Type == KeyCursorLocation {
		w.RawString(`,"row":`)
		w.Int(k.Position.Row)
		w.RawString(`,"col":`)
		w.Int(k.Position.Col)
	}
	w.RawByte('}')
}

// MarshalJSON implements json.Marshaler on top of MarshalEasyJSON.
func (k Key) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	k.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}
