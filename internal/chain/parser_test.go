package chain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("two node chain", func(t *testing.T) {
		content := `[[summary]] =
Summarize the following text:

[[input text]]

[[output]] =
Rewrite this summary for a general audience: [[summary]]
`
		def, err := Parse(content)
		require.NoError(t, err)
		require.Len(t, def, 2)

		summary := def["summary"]
		require.NotNil(t, summary)
		assert.Equal(t, "Summarize the following text:\n\n[[input text]]", summary.Text)
		assert.Equal(t, []string{InputName}, summary.Refs)
		assert.False(t, summary.Static())

		output := def["output"]
		require.NotNil(t, output)
		assert.Equal(t, []string{"summary"}, output.Refs)
	})

	t.Run("body whitespace trimmed, internal formatting preserved", func(t *testing.T) {
		content := "[[style_guide]] =\n\n  Use short sentences.\n    Indented line stays.\n\n"
		def, err := Parse(content)
		require.NoError(t, err)
		assert.Equal(t, "Use short sentences.\n    Indented line stays.", def["style_guide"].Text)
		assert.True(t, def["style_guide"].Static())
	})

	t.Run("declared name is trimmed", func(t *testing.T) {
		def, err := Parse("[[  output  ]] = done")
		require.NoError(t, err)
		_, ok := def["output"]
		assert.True(t, ok)
	})

	t.Run("prose before the first marker is ignored", func(t *testing.T) {
		def, err := Parse("This file rewrites essays.\n\n[[output]] = done")
		require.NoError(t, err)
		require.Len(t, def, 1)
		assert.Equal(t, "done", def["output"].Text)
	})

	t.Run("duplicate references collapse in first-occurrence order", func(t *testing.T) {
		content := "[[output]] =\nCompare [[b]] against [[a]], then revisit [[b]] and [[a]]."
		def, err := Parse(content)
		require.NoError(t, err)
		if diff := cmp.Diff([]string{"b", "a"}, def["output"].Refs); diff != "" {
			t.Errorf("reference list mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reference names are kept verbatim", func(t *testing.T) {
		def, err := Parse("[[output]] = uses [[input text]] twice: [[input text]]")
		require.NoError(t, err)
		assert.Equal(t, []string{InputName}, def["output"].Refs)
	})
}

func TestParseErrors(t *testing.T) {
	t.Run("no declarations", func(t *testing.T) {
		_, err := Parse("just some prose with [[a reference]] but no declarations")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Error(), "no node declarations")
	})

	t.Run("duplicate declaration", func(t *testing.T) {
		_, err := Parse("[[output]] = one\n[[output]] = two")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "output", perr.Node)
		assert.Contains(t, perr.Error(), "duplicate")
	})

	t.Run("reserved input name declared", func(t *testing.T) {
		_, err := Parse("[[input text]] = sneaky\n[[output]] = [[input text]]")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, InputName, perr.Node)
	})

	t.Run("empty node name", func(t *testing.T) {
		_, err := Parse("[[   ]] = body")
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Error(), "empty name")
	})
}
