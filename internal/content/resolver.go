// Package content expands a campaign message template into the final
// per-recipient payload: body selection, placeholder substitution and
// the optional best-effort AI paraphrase step.
package content

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"github.com/unclebandit/bulksender/internal/model"
)

// ErrNoUsableBody is a configuration error: every candidate body on the
// campaign is empty or whitespace.
var ErrNoUsableBody = errors.New("campaign has no non-empty message body")

// Paraphraser rewrites a resolved body while preserving meaning and
// length. Any error from it is swallowed by the resolver; the rewrite is
// an enhancement, never a hard dependency.
type Paraphraser interface {
	Rewrite(ctx context.Context, body, contactName string, profileID int) (string, error)
}

type Resolver struct {
	Paraphraser Paraphraser
	Log         *zap.Logger
}

func NewResolver(p Paraphraser, log *zap.Logger) *Resolver {
	return &Resolver{Paraphraser: p, Log: log}
}

// PickBody selects one candidate uniformly at random among the
// non-empty bodies.
func PickBody(bodies []string, rnd *rand.Rand) (string, error) {
	usable := make([]string, 0, len(bodies))
	for _, b := range bodies {
		if strings.TrimSpace(b) != "" {
			usable = append(usable, b)
		}
	}
	if len(usable) == 0 {
		return "", ErrNoUsableBody
	}
	return usable[rnd.Intn(len(usable))], nil
}

// Substitute performs literal placeholder replacement: the built-in
// contact fields plus tenant-defined variables.
func Substitute(body string, contact *model.ContactListItem, vars map[string]string) string {
	result := body
	result = strings.ReplaceAll(result, "{name}", contact.Name)
	result = strings.ReplaceAll(result, "{firstName}", firstName(contact.Name))
	result = strings.ReplaceAll(result, "{email}", contact.Email)
	result = strings.ReplaceAll(result, "{phone}", contact.Identifier)
	for k, v := range vars {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// Resolve builds the final payload for one recipient. When the campaign
// asks for AI variation and a paraphraser is configured, the resolved
// body is rewritten; on any paraphraser error the plain resolved body is
// used instead.
func (r *Resolver) Resolve(ctx context.Context, campaign *model.Campaign, contact *model.ContactListItem, body string, vars map[string]string) string {
	resolved := Substitute(body, contact, vars)

	if !campaign.UseAIVariation || campaign.VariationProfileID == 0 || r.Paraphraser == nil {
		return resolved
	}

	rewritten, err := r.Paraphraser.Rewrite(ctx, resolved, contact.Name, campaign.VariationProfileID)
	if err != nil || strings.TrimSpace(rewritten) == "" {
		r.Log.Warn("paraphrase failed, using plain body",
			zap.Int("campaign_id", campaign.ID),
			zap.Int("contact_id", contact.ID),
			zap.Error(err),
		)
		return resolved
	}
	return rewritten
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
