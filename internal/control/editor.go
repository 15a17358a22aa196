package control

// Editor holds the text of the two equation inputs while they are being
// edited. Field 0 is dx/dt and field 1 is dy/dt.
type Editor struct {
	text   [2][]rune
	cursor [2]int
	focus  int
	active bool
}

// Open starts editing from the given equations with the cursor at the end
// of dx/dt.
func (e *Editor) Open(dx, dy string) {
	e.text[0], e.text[1] = []rune(dx), []rune(dy)
	e.cursor[0], e.cursor[1] = len(e.text[0]), len(e.text[1])
	e.focus = 0
	e.active = true
}

func (e *Editor) Close() { e.active = false }

func (e *Editor) Active() bool { return e.active }

// Focus returns the index of the field being edited.
func (e *Editor) Focus() int { return e.focus }

// Next moves focus to the other field.
func (e *Editor) Next() { e.focus = 1 - e.focus }

func (e *Editor) Insert(r rune) {
	f, c := e.focus, e.cursor[e.focus]
	t := e.text[f]
	t = append(t, 0)
	copy(t[c+1:], t[c:])
	t[c] = r
	e.text[f] = t
	e.cursor[f]++
}

func (e *Editor) InsertString(s string) {
	for _, r := range s {
		e.Insert(r)
	}
}

// Backspace deletes the rune before the cursor.
func (e *Editor) Backspace() {
	f, c := e.focus, e.cursor[e.focus]
	if c == 0 {
		return
	}
	e.text[f] = append(e.text[f][:c-1], e.text[f][c:]...)
	e.cursor[f]--
}

// Delete removes the rune under the cursor.
func (e *Editor) Delete() {
	f, c := e.focus, e.cursor[e.focus]
	if c >= len(e.text[f]) {
		return
	}
	e.text[f] = append(e.text[f][:c], e.text[f][c+1:]...)
}

func (e *Editor) Left() {
	if e.cursor[e.focus] > 0 {
		e.cursor[e.focus]--
	}
}

func (e *Editor) Right() {
	if e.cursor[e.focus] < len(e.text[e.focus]) {
		e.cursor[e.focus]++
	}
}

func (e *Editor) Home() { e.cursor[e.focus] = 0 }

func (e *Editor) End() { e.cursor[e.focus] = len(e.text[e.focus]) }

// Text returns both fields.
func (e *Editor) Text() (dx, dy string) {
	return string(e.text[0]), string(e.text[1])
}

// Field returns field i and the cursor position in it.
func (e *Editor) Field(i int) (string, int) {
	return string(e.text[i]), e.cursor[i]
}
