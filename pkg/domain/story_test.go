package domain_test

import (
	"testing"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScores_Reached(t *testing.T) {
	th := domain.Thresholds{Favorable: 2, Unfavorable: 3, Mixed: 1}

	tests := []struct {
		name   string
		scores domain.Scores
		want   bool
	}{
		{"zero", domain.Scores{}, false},
		{"below", domain.Scores{Favorable: 1, Unfavorable: 2}, false},
		{"favorable hit", domain.Scores{Favorable: 2}, true},
		{"mixed hit", domain.Scores{Mixed: 1}, true},
		{"over", domain.Scores{Unfavorable: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scores.Reached(th))
		})
	}

	assert.False(t, domain.Scores{Mixed: 9}.Reached(domain.Thresholds{Favorable: 1}), "zero threshold disables the category")
}

func TestScores_AddIgnoresNone(t *testing.T) {
	var s domain.Scores
	s.Add(domain.OutcomeFavorable)
	s.Add(domain.OutcomeNone)
	s.Add("bogus")
	s.Add(domain.OutcomeMixed)
	assert.Equal(t, domain.Scores{Favorable: 1, Mixed: 1}, s)
}

func TestStory_EndingSet(t *testing.T) {
	s := &domain.Story{}
	s.MarkEnding("a")
	s.MarkEnding("a")
	s.MarkEnding("b")
	assert.Equal(t, []string{"a", "b"}, s.EndNodeIDs)

	s.UnmarkEnding("a")
	assert.Equal(t, []string{"b"}, s.EndNodeIDs)
	assert.False(t, s.IsEnding("a"))
}

func TestStory_CloneIsDeep(t *testing.T) {
	s := &domain.Story{
		StartNodeID: "r",
		Nodes: map[string]*domain.Node{
			"r": {ID: "r", Text: "root", Choices: []domain.Choice{{ID: "c1", NextNodeID: "n"}}},
			"n": {ID: "n"},
		},
		EndNodeIDs: []string{"n"},
	}

	c := s.Clone()
	c.Nodes["r"].Choices[0].NextNodeID = ""
	c.Nodes["r"].Text = "changed"
	c.EndNodeIDs[0] = "x"
	delete(c.Nodes, "n")

	require.Contains(t, s.Nodes, "n")
	assert.Equal(t, "n", s.Nodes["r"].Choices[0].NextNodeID)
	assert.Equal(t, "root", s.Nodes["r"].Text)
	assert.Equal(t, []string{"n"}, s.EndNodeIDs)
}

func TestStory_Validate(t *testing.T) {
	assert.ErrorIs(t, (*domain.Story)(nil).Validate(), domain.ErrInvalidStory)
	assert.ErrorIs(t, (&domain.Story{StartNodeID: "x", Nodes: map[string]*domain.Node{"y": {ID: "y"}}}).Validate(), domain.ErrInvalidStory)
	assert.NoError(t, (&domain.Story{StartNodeID: "y", Nodes: map[string]*domain.Node{"y": {ID: "y"}}}).Validate())
}

func TestStory_EffectiveThresholds(t *testing.T) {
	assert.Equal(t, domain.DefaultThresholds(), (&domain.Story{}).EffectiveThresholds())
	custom := domain.Thresholds{Favorable: 1, Unfavorable: 2, Mixed: 3}
	assert.Equal(t, custom, (&domain.Story{Thresholds: custom}).EffectiveThresholds())
}
