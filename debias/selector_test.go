package debias

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/debias/pkg/errors"
)

func TestSelector_Resolve(t *testing.T) {
	vs := genderSpace(t)

	tests := []struct {
		name string
		sel  Selector
		want []string
	}{
		{
			name: "zero value selects all",
			sel:  Selector{},
			want: vs.Words(),
		},
		{
			name: "all",
			sel:  All(),
			want: vs.Words(),
		},
		{
			name: "only keeps given order",
			sel:  Only("nurse", "doctor", "nurse"),
			want: []string{"nurse", "doctor"},
		},
		{
			name: "all except",
			sel:  AllExcept("he", "she", "man", "woman"),
			want: []string{"doctor", "nurse", "king", "queen"},
		},
		{
			name: "all refined with except",
			sel:  All().Except("king").Except("queen"),
			want: []string{"he", "she", "man", "woman", "doctor", "nurse"},
		},
		{
			name: "only refined with except",
			sel:  Only("doctor", "nurse", "he").Except("he"),
			want: []string{"doctor", "nurse"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sel.Resolve(vs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelector_ResolveMissing(t *testing.T) {
	vs := genderSpace(t)

	tests := []struct {
		name       string
		sel        Selector
		wantWord   string
		wantSource string
	}{
		{name: "target", sel: Only("doctor", "engineer"), wantWord: "engineer", wantSource: errors.SourceTarget},
		{name: "ignore", sel: AllExcept("he", "him"), wantWord: "him", wantSource: errors.SourceIgnore},
		{name: "except", sel: Only("doctor").Except("her"), wantWord: "her", wantSource: errors.SourceIgnore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sel.Resolve(vs)
			var missing *errors.MissingWordError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.wantWord, missing.Word)
			assert.Equal(t, tt.wantSource, missing.Source)
			assert.Equal(t, -1, missing.SetIndex)
		})
	}
}

func TestSelector_ExceptDoesNotAlias(t *testing.T) {
	base := AllExcept("he")
	a := base.Except("she")
	b := base.Except("man")

	assert.Equal(t, []string{"he"}, base.exclude)
	assert.Equal(t, []string{"he", "she"}, a.exclude)
	assert.Equal(t, []string{"he", "man"}, b.exclude)
}

func TestSelector_String(t *testing.T) {
	assert.Equal(t, "All", All().String())
	assert.Equal(t, "Only(2 words)", Only("a", "b").String())
	assert.Equal(t, "Only(2 words).Except(1 words)", Only("a", "b").Except("a").String())
	assert.Equal(t, "AllExcept(1 words)", All().Except("a").String())
}
