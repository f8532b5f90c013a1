// ABOUTME: Tests for Decoder matching: grace wait, fallback, discard policies, EOF, registry order, and cursor reports.
// ABOUTME: Uses literal patterns and a scripted source whose late chunks arrive during WaitReady.

package input

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mauromedda/keyview/pkg/tui/key"
)

var errWouldBlock = errors.New("read would block")

// lit matches exactly one literal sequence.
type lit struct {
	seq string
	k   key.Key
}

func (l lit) Admits(seq []rune) bool   { return strings.HasPrefix(l.seq, string(seq)) }
func (l lit) Complete(seq []rune) bool { return l.seq == string(seq) }
func (l lit) Decode([]rune) key.Key    { return l.k }

// profile is a fixed list of patterns.
type profile struct {
	name     string
	patterns []Pattern
}

func (p profile) Name() string        { return p.name }
func (p profile) Patterns() []Pattern { return p.patterns }

// scriptSource serves runes already "typed"; queued chunks are released one
// per feed or WaitReady call.
type scriptSource struct {
	mu      sync.Mutex
	runes   []rune
	chunks  []string
	eof     bool
	readErr error
	waits   int
}

func newScript(now string, later ...string) *scriptSource {
	return &scriptSource{runes: []rune(now), chunks: later}
}

func (s *scriptSource) feed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feedLocked()
}

func (s *scriptSource) feedLocked() bool {
	if len(s.chunks) == 0 {
		return false
	}
	s.runes = append(s.runes, []rune(s.chunks[0])...)
	s.chunks = s.chunks[1:]
	return true
}

func (s *scriptSource) Ready() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runes) > 0 || s.readErr != nil || (s.eof && len(s.chunks) == 0), nil
}

func (s *scriptSource) WaitReady(time.Duration) (bool, error) {
	s.mu.Lock()
	s.waits++
	s.feedLocked()
	s.mu.Unlock()
	return s.Ready()
}

func (s *scriptSource) ReadRune() (rune, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return 0, 0, s.readErr
	}
	if len(s.runes) > 0 {
		r := s.runes[0]
		s.runes = s.runes[1:]
		return r, len(string(r)), nil
	}
	if s.eof && len(s.chunks) == 0 {
		return 0, 0, io.EOF
	}
	return 0, 0, errWouldBlock
}

var (
	escKey = key.Key{Type: key.KeyEscape}
	upKey  = key.Key{Type: key.KeyUp}
)

func escProfile() profile {
	return profile{name: "esc", patterns: []Pattern{
		lit{"\x1b", escKey},
		lit{"\x1b[A", upKey},
		lit{"a", key.Key{Type: key.KeyRune, Rune: 'a'}},
		lit{"b", key.Key{Type: key.KeyRune, Rune: 'b'}},
		lit{"[", key.Key{Type: key.KeyRune, Rune: '['}},
	}}
}

// drain decodes until EOF, feeding queued chunks whenever nothing is ready.
func drain(t *testing.T, dec *Decoder, src *scriptSource) []key.Key {
	t.Helper()
	var got []key.Key
	for range 100 {
		k, ok, err := dec.Next(false)
		if err != nil {
			t.Fatalf("Next() unexpected error: %v", err)
		}
		if !ok {
			if !src.feed() {
				t.Fatalf("decoder stalled with %d pending runes", dec.Pending())
			}
			continue
		}
		got = append(got, k)
		if k.Type == key.KeyEOF {
			return got
		}
	}
	t.Fatal("no EOF after 100 events")
	return nil
}

func TestDecoder_LoneEscapeAfterTimeout(t *testing.T) {
	t.Parallel()

	src := newScript("\x1b")
	dec := NewDecoder(src, WithProfiles(escProfile()))

	k, ok, err := dec.Next(false)
	if err != nil || !ok {
		t.Fatalf("Next() = %v, %v, %v", k, ok, err)
	}
	if k != escKey {
		t.Errorf("Next() = %v, want Escape", k)
	}
	if src.waits != 1 {
		t.Errorf("WaitReady called %d times, want 1", src.waits)
	}
	if dec.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", dec.Pending())
	}
}

func TestDecoder_SequenceInOneChunk(t *testing.T) {
	t.Parallel()

	src := newScript("\x1b[A")
	dec := NewDecoder(src, WithProfiles(escProfile()))

	k, ok, err := dec.Next(false)
	if err != nil || !ok || k != upKey {
		t.Fatalf("Next() = %v, %v, %v; want Up", k, ok, err)
	}
	if src.waits != 0 {
		t.Errorf("WaitReady called %d times, want 0", src.waits)
	}
}

func TestDecoder_SequenceCompletesDuringGrace(t *testing.T) {
	t.Parallel()

	src := newScript("\x1b", "[A")
	dec := NewDecoder(src, WithProfiles(escProfile()))

	k, ok, err := dec.Next(false)
	if err != nil || !ok || k != upKey {
		t.Fatalf("Next() = %v, %v, %v; want Up", k, ok, err)
	}
}

func TestDecoder_FallbackKeepsRemainder(t *testing.T) {
	t.Parallel()

	// ESC and ESC [ are both viable until 'b' rules out ESC [ A.
	src := newScript("\x1b[b")
	src.eof = true
	dec := NewDecoder(src, WithProfiles(escProfile()))

	want := []key.Key{
		escKey,
		{Type: key.KeyRune, Rune: '['},
		{Type: key.KeyRune, Rune: 'b'},
		{Type: key.KeyEOF},
	}
	if got := drain(t, dec, src); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestDecoder_ChunkingIndependence(t *testing.T) {
	t.Parallel()

	input := "a\x1b[Ab\x1b\x1b[A[a"
	want := []key.Key{
		{Type: key.KeyRune, Rune: 'a'},
		upKey,
		{Type: key.KeyRune, Rune: 'b'},
		escKey,
		upKey,
		{Type: key.KeyRune, Rune: '['},
		{Type: key.KeyRune, Rune: 'a'},
		{Type: key.KeyEOF},
	}

	runes := []rune(input)
	for split := range len(runes) + 1 {
		for step := 1; step <= 3; step++ {
			var chunks []string
			for i := split; i < len(runes); i += step {
				chunks = append(chunks, string(runes[i:min(i+step, len(runes))]))
			}
			src := newScript(string(runes[:split]), chunks...)
			src.eof = true
			dec := NewDecoder(src, WithProfiles(escProfile()))

			if got := drain(t, dec, src); !reflect.DeepEqual(got, want) {
				t.Errorf("split=%d step=%d: events = %v, want %v", split, step, got, want)
			}
		}
	}
}

func TestDecoder_DiscardPolicies(t *testing.T) {
	t.Parallel()

	ab := profile{name: "ab", patterns: []Pattern{lit{"ab", key.Key{Type: key.KeyF1}}}}

	tests := []struct {
		name   string
		policy DiscardPolicy
		want   []key.Key
	}{
		{
			name:   "prefix drops the examined runes",
			policy: DiscardPrefix,
			want:   []key.Key{{Type: key.KeyEOF}},
		},
		{
			name:   "first rune rescans the rest",
			policy: DiscardFirstRune,
			want:   []key.Key{{Type: key.KeyF1}, {Type: key.KeyEOF}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := newScript("aab")
			src.eof = true
			dec := NewDecoder(src, WithProfiles(ab), WithDiscardPolicy(tt.policy))

			if got := drain(t, dec, src); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecoder_GarbageWithoutPatterns(t *testing.T) {
	t.Parallel()

	src := newScript("xyz")
	dec := NewDecoder(src)

	k, ok, err := dec.Next(false)
	if err != nil || ok {
		t.Fatalf("Next() = %v, %v, %v; want nothing", k, ok, err)
	}
	if dec.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", dec.Pending())
	}
}

func TestDecoder_EOFIsSticky(t *testing.T) {
	t.Parallel()

	src := newScript("a")
	src.eof = true
	dec := NewDecoder(src, WithProfiles(profile{name: "ab", patterns: []Pattern{lit{"ab", key.Key{Type: key.KeyF1}}}}))

	for i := range 3 {
		k, ok, err := dec.Next(i%2 == 0)
		if err != nil || !ok || k.Type != key.KeyEOF {
			t.Fatalf("call %d: Next() = %v, %v, %v; want EOF", i, k, ok, err)
		}
	}
	if dec.Pending() != 0 {
		t.Errorf("Pending() = %d after EOF, want 0", dec.Pending())
	}
}

func TestDecoder_EmitsBestBeforeEOF(t *testing.T) {
	t.Parallel()

	src := newScript("\x1b[")
	src.eof = true
	dec := NewDecoder(src, WithProfiles(escProfile()))

	want := []key.Key{escKey, {Type: key.KeyRune, Rune: '['}, {Type: key.KeyEOF}, {Type: key.KeyEOF}}
	for i, w := range want {
		k, ok, err := dec.Next(false)
		if err != nil || !ok || k != w {
			t.Fatalf("call %d: Next() = %v, %v, %v; want %v", i, k, ok, err, w)
		}
	}
}

func TestDecoder_NoInputNonBlocking(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(newScript(""), WithProfiles(escProfile()))
	if k, ok, err := dec.Next(false); ok || err != nil {
		t.Errorf("Next(false) = %v, %v, %v; want no event", k, ok, err)
	}
}

func TestDecoder_PartialWithoutBestStaysPending(t *testing.T) {
	t.Parallel()

	src := newScript("a")
	dec := NewDecoder(src, WithProfiles(profile{name: "ab", patterns: []Pattern{lit{"ab", key.Key{Type: key.KeyF1}}}}))

	if _, ok, err := dec.Next(false); ok || err != nil {
		t.Fatalf("Next(false) = _, %v, %v; want no event", ok, err)
	}
	if dec.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", dec.Pending())
	}
	if src.waits != 0 {
		t.Errorf("WaitReady called %d times without a complete match", src.waits)
	}

	src.chunks = []string{"b"}
	src.feed()
	if k, ok, err := dec.Next(false); !ok || err != nil || k.Type != key.KeyF1 {
		t.Errorf("Next(false) = %v, %v, %v; want F1", k, ok, err)
	}
}

func TestDecoder_LastCompleteMatchWins(t *testing.T) {
	t.Parallel()

	first := lit{"x", key.Key{Type: key.KeyF1}}
	second := lit{"x", key.Key{Type: key.KeyF2}}
	dec := NewDecoder(newScript("xx"),
		WithProfiles(profile{name: "one", patterns: []Pattern{first}}, profile{name: "two", patterns: []Pattern{second}}))

	if k, _, _ := dec.Next(false); k.Type != key.KeyF2 {
		t.Fatalf("Next() = %v, want F2 from the later pattern", k)
	}

	// Re-registering moves the pattern to the end.
	dec.AddProfile(profile{name: "one again", patterns: []Pattern{first}})
	if n := len(dec.Patterns()); n != 2 {
		t.Fatalf("len(Patterns()) = %d, want 2", n)
	}
	if k, _, _ := dec.Next(false); k.Type != key.KeyF1 {
		t.Errorf("Next() = %v, want F1 after re-registration", k)
	}
}

func TestDecoder_RemovePattern(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(newScript(""), WithProfiles(escProfile()))
	before := len(dec.Patterns())

	if !dec.RemovePattern(lit{"\x1b", escKey}) {
		t.Fatal("RemovePattern() = false for a registered pattern")
	}
	if dec.RemovePattern(lit{"\x1b", escKey}) {
		t.Error("RemovePattern() = true for an already removed pattern")
	}
	if got := len(dec.Patterns()); got != before-1 {
		t.Errorf("len(Patterns()) = %d, want %d", got, before-1)
	}
}

func TestDecoder_PatternsIsSnapshot(t *testing.T) {
	t.Parallel()

	dec := NewDecoder(newScript(""), WithProfiles(escProfile()))
	snap := dec.Patterns()
	snap[0] = nil
	if dec.Patterns()[0] == nil {
		t.Error("mutating the snapshot changed the registry")
	}
}

func TestDecoder_CursorReports(t *testing.T) {
	t.Parallel()

	cursor := key.Key{Type: key.KeyCursorLocation}
	reports := profile{name: "reports", patterns: []Pattern{
		lit{"\x1b[12;40R", cursor},
		lit{"\x1b[1;5R", cursor},
	}}

	src := newScript("\x1b[1;5R\x1b[12;40R\x1b[1;5R")
	dec := NewDecoder(src, WithProfiles(reports))

	if k, _, _ := dec.Next(false); k != (key.Key{Type: key.KeyF3, Ctrl: true}) {
		t.Fatalf("first event = %v, want Ctrl+F3", k)
	}
	if _, ok := dec.LastReportedPosition(); ok {
		t.Fatal("Ctrl+F3 must not record a cursor position")
	}

	k, _, _ := dec.Next(false)
	want := key.Key{Type: key.KeyCursorLocation, Position: key.Position{Row: 12, Col: 40}}
	if k != want {
		t.Fatalf("second event = %v, want %v", k, want)
	}
	if pos, ok := dec.LastReportedPosition(); !ok || pos != want.Position {
		t.Errorf("LastReportedPosition() = %v, %v", pos, ok)
	}

	if k, _, _ := dec.Next(false); k != (key.Key{Type: key.KeyF3, Ctrl: true}) {
		t.Fatalf("third event = %v, want Ctrl+F3", k)
	}
	if pos, _ := dec.LastReportedPosition(); pos != want.Position {
		t.Errorf("LastReportedPosition() = %v after Ctrl+F3, want unchanged %v", pos, want.Position)
	}
}

func TestDecoder_SourceErrorKeepsBuffer(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	src := newScript("\x1b[")
	dec := NewDecoder(src, WithProfiles(profile{name: "up", patterns: []Pattern{lit{"\x1b[A", upKey}}}))
	if _, ok, _ := dec.Next(false); ok {
		t.Fatal("partial sequence produced an event")
	}
	src.readErr = errBoom

	_, _, err := dec.Next(true)
	if !errors.Is(err, errBoom) {
		t.Fatalf("Next() error = %v, want wrapped boom", err)
	}
	if !strings.Contains(err.Error(), "reading input") {
		t.Errorf("error %q lacks context", err)
	}
	if dec.Pending() != 2 {
		t.Errorf("Pending() = %d after error, want 2", dec.Pending())
	}
}

func TestDecoder_ZeroTimeoutSkipsWait(t *testing.T) {
	t.Parallel()

	src := newScript("\x1b", "[A")
	dec := NewDecoder(src, WithProfiles(escProfile()), WithEscapeTimeout(0))

	if k, _, _ := dec.Next(false); k != escKey {
		t.Fatalf("Next() = %v, want Escape", k)
	}
	if src.waits != 0 {
		t.Errorf("WaitReady called %d times with zero timeout", src.waits)
	}
}

// plainSource hides WaitReady so the decoder falls back to sleeping.
type plainSource struct{ s *scriptSource }

func (p plainSource) Ready() (bool, error)         { return p.s.Ready() }
func (p plainSource) ReadRune() (rune, int, error) { return p.s.ReadRune() }

func TestDecoder_SleepsWithoutReadyWaiter(t *testing.T) {
	t.Parallel()

	src := newScript("\x1b")
	dec := NewDecoder(plainSource{src}, WithProfiles(escProfile()), WithEscapeTimeout(5*time.Millisecond))

	start := time.Now()
	k, ok, err := dec.Next(false)
	if err != nil || !ok || k != escKey {
		t.Fatalf("Next() = %v, %v, %v; want Escape", k, ok, err)
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("Next() returned after %v, want at least the escape timeout", elapsed)
	}
}

func TestParseDiscardPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    DiscardPolicy
		wantErr bool
	}{
		{in: "", want: DiscardPrefix},
		{in: "prefix", want: DiscardPrefix},
		{in: "first", want: DiscardFirstRune},
		{in: "all", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDiscardPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDiscardPolicy(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDiscardPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if DiscardFirstRune.String() != "first" || DiscardPrefix.String() != "prefix" {
		t.Error("DiscardPolicy.String() does not round trip")
	}
}

func TestSamePattern(t *testing.T) {
	t.Parallel()

	a := lit{"x", key.Key{Type: key.KeyF1}}
	if !SamePattern(a, lit{"x", key.Key{Type: key.KeyF1}}) {
		t.Error("equal literals should match")
	}
	if SamePattern(a, lit{"x", key.Key{Type: key.KeyF2}}) {
		t.Error("literals with different keys should differ")
	}
	if SamePattern(a, plainLit{seq: []string{"x"}}) {
		t.Error("different types should differ")
	}
	if SamePattern(plainLit{seq: []string{"x"}}, plainLit{seq: []string{"x"}}) {
		t.Error("non-comparable patterns are never equal without Equaler")
	}
}

// plainLit is not comparable.
type plainLit struct{ seq []string }

func (plainLit) Admits([]rune) bool    { return false }
func (plainLit) Complete([]rune) bool  { return false }
func (plainLit) Decode([]rune) key.Key { return key.Key{} }

func TestDecoder_UnparsableReportClearsPosition(t *testing.T) {
	t.Parallel()

	reported := key.Key{Type: key.KeyCursorLocation, Position: key.Position{Row: 2, Col: 2}}
	reports := profile{name: "reports", patterns: []Pattern{
		lit{"\x1b[12;40R", key.Key{Type: key.KeyCursorLocation}},
		lit{"\x1b[?R", reported},
	}}
	dec := NewDecoder(newScript("\x1b[12;40R\x1b[?R"), WithProfiles(reports))

	if _, ok, _ := dec.Next(false); !ok {
		t.Fatal("no event for a valid report")
	}
	if _, ok := dec.LastReportedPosition(); !ok {
		t.Fatal("valid report not recorded")
	}

	k, ok, _ := dec.Next(false)
	if !ok || k != reported {
		t.Fatalf("Next() = %v, %v; want the pattern's own event %v", k, ok, reported)
	}
	if pos, ok := dec.LastReportedPosition(); ok {
		t.Errorf("LastReportedPosition() = %v after an unparsable report, want none", pos)
	}
}

func TestDecoder_ReplacePatterns(t *testing.T) {
	t.Parallel()

	f1 := key.Key{Type: key.KeyF1}
	esc := escProfile()
	dec := NewDecoder(newScript("\x1b"), WithProfiles(esc))
	dec.ReplacePatterns(esc.patterns[:2], profile{name: "f1", patterns: []Pattern{lit{"\x1b", f1}}})

	got := dec.Patterns()
	if len(got) != 4 {
		t.Fatalf("Patterns() has %d entries, want 4", len(got))
	}
	if !SamePattern(got[3], lit{"\x1b", f1}) {
		t.Errorf("last pattern = %v, want the replacement", got[3])
	}
	if k, ok, _ := dec.Next(false); !ok || k != f1 {
		t.Errorf("Next() = %v, %v; want F1", k, ok)
	}
}

// gateSource blocks its first ReadRune until release is closed.
type gateSource struct {
	runes    []rune
	entered  chan struct{}
	release  chan struct{}
	announce sync.Once
}

func newGate(s string) *gateSource {
	return &gateSource{runes: []rune(s), entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gateSource) Ready() (bool, error) {
	select {
	case <-g.release:
		return len(g.runes) > 0, nil
	default:
		return false, nil
	}
}

func (g *gateSource) ReadRune() (rune, int, error) {
	g.announce.Do(func() { close(g.entered) })
	<-g.release
	if len(g.runes) == 0 {
		return 0, 0, io.EOF
	}
	r := g.runes[0]
	g.runes = g.runes[1:]
	return r, len(string(r)), nil
}

func TestDecoder_RegistryChangeWaitsForBlockedNext(t *testing.T) {
	t.Parallel()

	src := newGate("a")
	dec := NewDecoder(src, WithProfiles(escProfile()), WithEscapeTimeout(0))

	type result struct {
		k  key.Key
		ok bool
	}
	next := make(chan result, 1)
	go func() {
		k, ok, _ := dec.Next(true)
		next <- result{k, ok}
	}()
	<-src.entered

	added := make(chan struct{})
	go func() {
		dec.AddProfile(profile{name: "late", patterns: []Pattern{lit{"z", key.Key{Type: key.KeyRune, Rune: 'z'}}}})
		close(added)
	}()

	select {
	case <-added:
		t.Fatal("AddProfile finished while Next was blocked on input")
	case <-time.After(50 * time.Millisecond):
	}

	close(src.release)
	res := <-next
	if !res.ok || res.k.Rune != 'a' {
		t.Fatalf("Next() = %v, %v; want a", res.k, res.ok)
	}
	select {
	case <-added:
	case <-time.After(2 * time.Second):
		t.Fatal("AddProfile never completed after Next returned")
	}
	if n := len(dec.Patterns()); n != 6 {
		t.Errorf("Patterns() has %d entries, want 6", n)
	}
}

func TestDecoder_ConcurrentRegistryAndNext(t *testing.T) {
	t.Parallel()

	const pairs = 200
	src := newScript(strings.Repeat("ab", pairs))
	src.eof = true
	dec := NewDecoder(src, WithProfiles(escProfile()))

	extra := profile{name: "extra", patterns: []Pattern{lit{"q", key.Key{Type: key.KeyRune, Rune: 'q'}}}}
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				dec.AddProfile(extra)
				_ = dec.Patterns()
				dec.RemovePattern(extra.patterns[0])
				dec.ReplacePatterns(extra.patterns, extra)
			}
		}()
	}

	var got []rune
	for {
		k, ok, err := dec.Next(false)
		if err != nil {
			t.Fatalf("Next() unexpected error: %v", err)
		}
		if !ok {
			continue
		}
		if k.Type == key.KeyEOF {
			break
		}
		got = append(got, k.Rune)
	}
	close(stop)
	wg.Wait()

	if string(got) != strings.Repeat("ab", pairs) {
		t.Errorf("decoded %d runes %q..., want %d alternating a/b", len(got), string(got[:min(len(got), 10)]), 2*pairs)
	}
}
