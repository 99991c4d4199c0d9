// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package confirm

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPrompter struct {
	answers []Choice
	err     error
	asked   int
}

func (p *scriptedPrompter) Confirm(context.Context, string, string, Impact) (Choice, error) {
	if p.err != nil {
		return No, p.err
	}
	c := p.answers[p.asked]
	p.asked++
	return c, nil
}

func TestParseImpact(t *testing.T) {
	for _, s := range []string{"none", "LOW", " Medium ", "high"} {
		_, err := ParseImpact(s)
		assert.NoError(t, err, s)
	}

	i, err := ParseImpact("medium")
	require.NoError(t, err)
	assert.Equal(t, Medium, i)
	assert.Equal(t, "medium", i.String())

	_, err = ParseImpact("extreme")
	assert.Error(t, err)
	assert.Equal(t, "impact(7)", Impact(7).String())
}

func TestTable_Of(t *testing.T) {
	tbl := Table{"DeleteThing": High}
	assert.Equal(t, High, tbl.Of("DeleteThing"))
	assert.Equal(t, None, tbl.Of("GetThing"))
}

func TestGate_ShouldProcess(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		gate        Gate
		impact      Impact
		answers     []Choice
		wantErr     error
		wantPrompts int
	}{
		{"no impact", Gate{Threshold: Low}, None, nil, nil, 0},
		{"forced", Gate{Threshold: Low, Force: true}, High, nil, nil, 0},
		{"below threshold", Gate{Threshold: High}, Medium, nil, nil, 0},
		{"not interactive", Gate{Threshold: Medium}, High, nil, ErrConfirmationNeeded, 0},
		{"yes", Gate{Threshold: Medium, Interactive: true}, High, []Choice{Yes}, nil, 1},
		{"no", Gate{Threshold: Medium, Interactive: true}, High, []Choice{No}, ErrDeclined, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPrompter{answers: tt.answers}
			g := tt.gate
			g.Prompter = p

			err := g.ShouldProcess(ctx, tt.impact, "DeleteThing", "thing-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantPrompts, p.asked)
		})
	}
}

func TestGate_ToAllSticks(t *testing.T) {
	ctx := context.Background()

	p := &scriptedPrompter{answers: []Choice{YesToAll}}
	g := &Gate{Threshold: Low, Prompter: p, Interactive: true}
	for range 3 {
		assert.NoError(t, g.ShouldProcess(ctx, High, "DeleteThing", "x"))
	}
	assert.Equal(t, 1, p.asked)

	p = &scriptedPrompter{answers: []Choice{NoToAll}}
	g = &Gate{Threshold: Low, Prompter: p, Interactive: true}
	for range 3 {
		assert.ErrorIs(t, g.ShouldProcess(ctx, High, "DeleteThing", "x"), ErrDeclined)
	}
	assert.Equal(t, 1, p.asked)
}

func TestGate_PrompterError(t *testing.T) {
	boom := errors.New("boom")
	g := &Gate{Threshold: Low, Prompter: &scriptedPrompter{err: boom}, Interactive: true}
	assert.ErrorIs(t, g.ShouldProcess(context.Background(), High, "a", "b"), boom)
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		in    string
		want  Choice
		valid bool
	}{
		{"", Yes, true},
		{"Y", Yes, true},
		{"yes", Yes, true},
		{"a", YesToAll, true},
		{"n", No, true},
		{"L", NoToAll, true},
		{"maybe", No, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, valid := ParseChoice(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, valid)
		})
	}
}

func TestPromptModel(t *testing.T) {
	m := newPromptModel("DeleteMediaPipeline", "pipeline-1", High)
	assert.Contains(t, m.View(), `Performing "DeleteMediaPipeline" on "pipeline-1" (impact: high)`)

	m.input.SetValue("bogus")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(promptModel)
	assert.Nil(t, cmd)
	assert.False(t, m.done)
	assert.Contains(t, m.View(), `"bogus" is not a valid answer`)

	m.input.SetValue("a")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(promptModel)
	assert.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.Equal(t, YesToAll, m.choice)
	assert.Empty(t, m.View())

	m = newPromptModel("DeleteMediaPipeline", "", High)
	assert.Contains(t, m.question, `Performing "DeleteMediaPipeline" (impact: high)`)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(promptModel)
	assert.True(t, m.done)
	assert.Equal(t, No, m.choice)
}
