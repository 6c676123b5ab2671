package schema

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

type Email struct {
	Address string
}

func NewEmail(s string) (*Email, error) {
	if !strings.Contains(s, "@") {
		return nil, fmt.Errorf("%q is not an email address", s)
	}
	return &Email{Address: s}, nil
}

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestKindOf(t *testing.T) {
	n := 3
	tests := []struct {
		value any
		want  Kind
	}{
		{nil, KindNone},
		{"x", KindString},
		{label("x"), KindString},
		{30, KindInteger},
		{uint8(1), KindInteger},
		{1.5, KindNumber},
		{true, KindBoolean},
		{time.Now(), KindTime},
		{time.Second, KindDuration},
		{[]int{1}, KindList},
		{[2]string{}, KindList},
		{map[string]any{}, KindMap},
		{Email{}, KindObject},
		{&Email{}, KindObject},
		{&n, KindInteger},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%T", tt.value), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.value))
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind(" Int ")
	require.NoError(t, err)
	assert.Equal(t, KindInteger, got)

	_, err = ParseKind("complex")
	assert.Error(t, err)
}

func TestBuiltinContracts(t *testing.T) {
	tests := []struct {
		name      string
		contract  *Contract
		accepts   []any
		construct map[string]struct {
			in   any
			want any
		}
		rejects []any
	}{
		{
			name:     "integer",
			contract: Integer(),
			accepts:  []any{30, int64(30), uint(1)},
			construct: map[string]struct {
				in   any
				want any
			}{
				"integral float": {in: 30.0, want: 30},
			},
			rejects: []any{"30", 30.5, true, new(int), float64(math.MaxInt64)},
		},
		{
			name:     "number",
			contract: Number(),
			accepts:  []any{1.5, float32(2)},
			construct: map[string]struct {
				in   any
				want any
			}{
				"int":  {in: 2, want: 2.0},
				"uint": {in: uint16(7), want: 7.0},
			},
			rejects: []any{"1.5"},
		},
		{
			name:     "string",
			contract: String(),
			accepts:  []any{"x", label("y")},
			construct: map[string]struct {
				in   any
				want any
			}{
				"stringer": {in: stringer{}, want: "stringer"},
				"bytes":    {in: []byte("raw"), want: "raw"},
			},
			rejects: []any{42},
		},
		{
			name:     "boolean",
			contract: Boolean(),
			accepts:  []any{true, false},
			rejects:  []any{"true", 1},
		},
		{
			name:     "time",
			contract: Time(),
			accepts:  []any{time.Unix(0, 0)},
			construct: map[string]struct {
				in   any
				want any
			}{
				"rfc3339": {in: "2024-01-02T03:04:05Z", want: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
				"unix":    {in: int64(0), want: time.Unix(0, 0).UTC()},
			},
			rejects: []any{"yesterday"},
		},
		{
			name:     "duration",
			contract: Duration(),
			accepts:  []any{time.Minute},
			construct: map[string]struct {
				in   any
				want any
			}{
				"string": {in: "1h30m", want: 90 * time.Minute},
			},
			rejects: []any{"soon", 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.accepts {
				assert.True(t, tt.contract.Accepts(v), "should accept %T %v", v, v)
			}
			for name, c := range tt.construct {
				assert.False(t, tt.contract.Accepts(c.in), "%s should need construction", name)
				got, err := tt.contract.Construct(c.in)
				require.NoError(t, err, name)
				assert.Equal(t, c.want, got, name)
			}
			for _, v := range tt.rejects {
				assert.False(t, tt.contract.Accepts(v), "should not accept %T %v", v, v)
				_, err := tt.contract.Construct(v)
				assert.Error(t, err, "should not construct from %T %v", v, v)
			}
			assert.False(t, tt.contract.Accepts(nil))
		})
	}
}

func TestConstructedContract(t *testing.T) {
	c, err := Constructed("email", NewEmail)
	require.NoError(t, err)

	assert.Equal(t, KindObject, c.Kind)
	assert.True(t, c.Accepts(&Email{Address: "a@b"}))
	assert.False(t, c.Accepts(Email{Address: "a@b"}))
	assert.False(t, c.Accepts(&struct{}{}), "objects never match by kind")
	assert.False(t, c.Accepts("a@b"))

	v, err := c.Construct("a@b")
	require.NoError(t, err)
	assert.Equal(t, &Email{Address: "a@b"}, v)

	_, err = c.Construct("nope")
	assert.Error(t, err)

	_, err = c.Construct(42)
	assert.Error(t, err)

	_, err = Constructed("bad", "not a func")
	assert.ErrorIs(t, err, ErrNotAFunction)
}

func TestOfKind(t *testing.T) {
	for _, k := range Kinds() {
		c, err := OfKind(k)
		require.NoError(t, err)
		assert.Equal(t, k, c.Kind)
	}

	list, _ := OfKind(KindList)
	assert.False(t, list.Accepts([]int{1}), "composite kinds need a type")
	_, err := list.Construct([]int{1})
	assert.Error(t, err)

	_, err = OfKind(KindNone)
	assert.Error(t, err)
}

func TestParseConstructor(t *testing.T) {
	tests := []struct {
		name    string
		fn      any
		wantErr error
		hasBool bool
		hasErr  bool
	}{
		{name: "plain", fn: func(s string) int { return len(s) }},
		{name: "with bool", fn: func(s string) (int, bool) { return 0, true }, hasBool: true},
		{name: "with error", fn: func(s string) (int, error) { return 0, nil }, hasErr: true},
		{name: "with bool and error", fn: func(s string) (int, bool, error) { return 0, true, nil }, hasBool: true, hasErr: true},
		{name: "not a function", fn: 42, wantErr: ErrNotAFunction},
		{name: "nil", fn: nil, wantErr: ErrNotAFunction},
		{name: "nil func", fn: (func(string) int)(nil), wantErr: ErrNotAFunction},
		{name: "two args", fn: func(a, b string) int { return 0 }, wantErr: ErrNotAConstructor},
		{name: "no result", fn: func(string) {}, wantErr: ErrNotAConstructor},
		{name: "variadic", fn: func(...string) int { return 0 }, wantErr: ErrNotAConstructor},
		{name: "bad second result", fn: func(string) (int, string) { return 0, "" }, wantErr: ErrNotAConstructor},
		{name: "swapped results", fn: func(string) (int, error, bool) { return 0, nil, true }, wantErr: ErrNotAConstructor},
		{name: "four results", fn: func(string) (int, bool, error, error) { return 0, true, nil, nil }, wantErr: ErrNotAConstructor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseConstructor(tt.fn)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hasBool, c.HasBool)
			assert.Equal(t, tt.hasErr, c.HasErr)
		})
	}
}

func TestConstructorCall(t *testing.T) {
	boom := errors.New("boom")
	c, err := ParseConstructor(func(s string) (int, bool, error) {
		switch s {
		case "boom":
			return 0, false, boom
		case "no":
			return 0, false, nil
		}
		return len(s), true, nil
	})
	require.NoError(t, err)

	v, err := c.Call("four")
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	v, err = c.Call(label("abc"))
	require.NoError(t, err, "same-kind conversion is allowed")
	assert.Equal(t, 3, v)

	_, err = c.Call("boom")
	assert.ErrorIs(t, err, boom)

	_, err = c.Call("no")
	assert.ErrorIs(t, err, ErrRejected)

	_, err = c.Call(65)
	assert.Error(t, err, "integer to string conversion is refused")

	_, err = c.Call(nil)
	assert.Error(t, err)
}
