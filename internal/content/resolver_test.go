package content

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/model"
)

func TestPickBodySkipsEmpty(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		body, err := PickBody([]string{"", "hello", "   ", "world", ""}, rnd)
		require.NoError(t, err)
		assert.Contains(t, []string{"hello", "world"}, body)
	}
}

func TestPickBodyAllEmpty(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	_, err := PickBody([]string{"", "  ", ""}, rnd)
	assert.ErrorIs(t, err, ErrNoUsableBody)
}

func TestSubstitute(t *testing.T) {
	contact := &model.ContactListItem{
		Name:       "Alice Smith",
		Identifier: "+254700000001",
		Email:      "alice@example.com",
	}
	vars := map[string]string{"shop": "Duka Mart"}

	got := Substitute("Hi {firstName} ({name}), visit {shop}. Reply to {email} or {phone}.", contact, vars)
	assert.Equal(t, "Hi Alice (Alice Smith), visit Duka Mart. Reply to alice@example.com or +254700000001.", got)
}

type stubParaphraser struct {
	out string
	err error
}

func (s *stubParaphraser) Rewrite(ctx context.Context, body, contactName string, profileID int) (string, error) {
	return s.out, s.err
}

func TestResolveAppliesVariation(t *testing.T) {
	r := NewResolver(&stubParaphraser{out: "rewritten text"}, zap.NewNop())
	campaign := &model.Campaign{ID: 1, UseAIVariation: true, VariationProfileID: 7}
	contact := &model.ContactListItem{Name: "Bob"}

	got := r.Resolve(context.Background(), campaign, contact, "Hi {name}", nil)
	assert.Equal(t, "rewritten text", got)
}

func TestResolveFallsBackOnParaphraseError(t *testing.T) {
	r := NewResolver(&stubParaphraser{err: errors.New("model overloaded")}, zap.NewNop())
	campaign := &model.Campaign{ID: 1, UseAIVariation: true, VariationProfileID: 7}
	contact := &model.ContactListItem{Name: "Bob"}

	got := r.Resolve(context.Background(), campaign, contact, "Hi {name}", nil)
	assert.Equal(t, "Hi Bob", got)
}

func TestResolveFallsBackOnEmptyRewrite(t *testing.T) {
	r := NewResolver(&stubParaphraser{out: "   "}, zap.NewNop())
	campaign := &model.Campaign{ID: 1, UseAIVariation: true, VariationProfileID: 7}
	contact := &model.ContactListItem{Name: "Bob"}

	got := r.Resolve(context.Background(), campaign, contact, "Hi {name}", nil)
	assert.Equal(t, "Hi Bob", got)
}

func TestResolveSkipsVariationWithoutProfile(t *testing.T) {
	p := &stubParaphraser{out: "should not be used"}
	r := NewResolver(p, zap.NewNop())
	campaign := &model.Campaign{ID: 1, UseAIVariation: true} // no profile configured
	contact := &model.ContactListItem{Name: "Bob"}

	got := r.Resolve(context.Background(), campaign, contact, "Hi {name}", nil)
	assert.Equal(t, "Hi Bob", got)
}
