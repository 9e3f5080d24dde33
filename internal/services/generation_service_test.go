package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-lucky-clover/agentcy-one/internal/models"
	"github.com/the-lucky-clover/agentcy-one/internal/providers"
)

const (
	ownProject   = "0b7c6f52-3f55-4c4e-9d0e-5c1f0d1f8a11"
	otherProject = "9a3e2d10-7b44-4f0a-8c55-2e6d4b7f1c22"
)

type generationFixture struct {
	users     *fakeUsers
	ledger    *fakeLedger
	projects  *fakeProjects
	provider  *stubProvider
	store     *fakeStore
	analytics *fakeAnalytics
	svc       GenerationService
}

func newGenerationFixture(usage, limit int) *generationFixture {
	f := &generationFixture{
		users: newFakeUsers(&models.User{
			ID: "u1", Email: "a@b.c", Tier: models.TierFree, UsageCount: usage, UsageLimit: limit,
		}),
		ledger:    newFakeLedger(),
		projects:  newFakeProjects(&models.Project{ID: ownProject, UserID: "u1"}, &models.Project{ID: otherProject, UserID: "u2"}),
		provider:  &stubProvider{res: &models.GenerationResult{Files: []models.GeneratedFile{{Name: "a.tsx", Content: "X"}}}},
		store:     &fakeStore{},
		analytics: &fakeAnalytics{},
	}
	f.svc = NewGenerationService(f.users, f.ledger, f.projects, f.provider, f.store, f.analytics)
	return f
}

func input(prompt string) GenerateInput {
	return GenerateInput{UserID: "u1", Prompt: prompt, Type: models.TypeComponent}
}

func TestGenerateQuotaExceededHasNoSideEffects(t *testing.T) {
	f := newGenerationFixture(3, 3)

	_, err := f.svc.Generate(context.Background(), input("a pricing table component"))
	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 0, f.ledger.inserted)
	assert.Equal(t, 0, f.provider.calls)
	assert.Empty(t, f.store.keys)
	assert.Equal(t, 3, f.users.byID["u1"].UsageCount)
}

func TestGenerateSuccessCompletesAndCountsUsage(t *testing.T) {
	f := newGenerationFixture(0, 10)
	f.provider.res = &models.GenerationResult{Files: []models.GeneratedFile{
		{Name: "Card.tsx", Content: "export const Card = () => null"},
		{Name: "card.css", Content: ".card{}"},
	}}

	out, err := f.svc.Generate(context.Background(), input("a card with a title"))
	require.NoError(t, err)

	assert.Equal(t, models.GenerationCompleted, out.Request.Status)
	assert.Len(t, out.Request.Files, 2)
	assert.Equal(t, "export const Card = () => null", out.Code())
	assert.NotNil(t, out.Request.CompletedAt)
	assert.Equal(t, models.FrameworkReact, f.provider.last.Framework)

	require.Equal(t, 1, f.ledger.inserted)
	row := f.ledger.rows[out.Request.ID]
	assert.Equal(t, models.GenerationCompleted, row.Status)
	assert.Len(t, row.Files, 2)
	assert.Equal(t, 1, f.users.byID["u1"].UsageCount)
	assert.Equal(t, []string{models.EventGenerationCompleted}, f.analytics.events)
}

func TestGenerateFallbackResultCompletesWithOneFile(t *testing.T) {
	f := newGenerationFixture(0, 10)
	primary := &stubProvider{err: errors.New("primary down")}
	fallback := &stubProvider{res: &models.GenerationResult{Files: []models.GeneratedFile{{Name: "a.tsx", Content: "X"}}}}
	f.svc = NewGenerationService(f.users, f.ledger, f.projects, providers.NewChain(primary, fallback), f.store, f.analytics)

	out, err := f.svc.Generate(context.Background(), input("a login form component"))
	require.NoError(t, err)
	require.Len(t, out.Request.Files, 1)
	assert.Equal(t, "a.tsx", out.Request.Files[0].Name)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestGenerateProviderFailureMarksFailed(t *testing.T) {
	f := newGenerationFixture(1, 10)
	f.provider.res = nil
	f.provider.err = errors.New("fallback timeout")

	_, err := f.svc.Generate(context.Background(), input("a nav bar component"))
	require.ErrorIs(t, err, ErrGenerationFailed)

	require.Len(t, f.ledger.order, 1)
	row := f.ledger.rows[f.ledger.order[0]]
	assert.Equal(t, models.GenerationFailed, row.Status)
	require.NotNil(t, row.Error)
	assert.Contains(t, *row.Error, "fallback timeout")
	assert.Equal(t, 1, f.users.byID["u1"].UsageCount)
	assert.Equal(t, []string{models.EventGenerationFailed}, f.analytics.events)
}

func TestGenerateEmptyFileListFails(t *testing.T) {
	f := newGenerationFixture(0, 10)
	f.provider.res = &models.GenerationResult{}

	_, err := f.svc.Generate(context.Background(), input("give me nothing at all"))
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, models.GenerationFailed, f.ledger.rows[f.ledger.order[0]].Status)
}

func TestGenerateStorageFailureLeavesUsageUntouched(t *testing.T) {
	f := newGenerationFixture(2, 10)
	f.provider.res = &models.GenerationResult{Files: []models.GeneratedFile{
		{Name: "ok.tsx", Content: "1"},
		{Name: "broken.tsx", Content: "2"},
	}}
	f.store.failOn = "broken.tsx"

	_, err := f.svc.Generate(context.Background(), input("two files please"))
	require.ErrorIs(t, err, ErrGenerationFailed)

	row := f.ledger.rows[f.ledger.order[0]]
	assert.Equal(t, models.GenerationFailed, row.Status)
	assert.Contains(t, *row.Error, "bucket unavailable")
	assert.Equal(t, 2, f.users.byID["u1"].UsageCount)
	// the first blob stays behind
	assert.Len(t, f.store.keys, 1)
}

func TestGenerateSamePromptTwiceGetsDistinctIDs(t *testing.T) {
	f := newGenerationFixture(0, 10)

	a, err := f.svc.Generate(context.Background(), input("the same prompt text"))
	require.NoError(t, err)
	b, err := f.svc.Generate(context.Background(), input("the same prompt text"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Request.ID, b.Request.ID)
	require.Len(t, f.store.keys, 2)
	assert.NotEqual(t, f.store.keys[0], f.store.keys[1])
	assert.Equal(t, 2, f.users.byID["u1"].UsageCount)
}

func TestGenerateProjectOwnership(t *testing.T) {
	f := newGenerationFixture(0, 10)

	in := input("a hero section component")
	in.ProjectID = otherProject
	_, err := f.svc.Generate(context.Background(), in)
	require.ErrorIs(t, err, ErrProjectNotFound)
	assert.Equal(t, 0, f.ledger.inserted)

	in.ProjectID = "not-a-uuid"
	_, err = f.svc.Generate(context.Background(), in)
	require.ErrorIs(t, err, ErrProjectNotFound)
	assert.Equal(t, 0, f.ledger.inserted)

	in.ProjectID = ownProject
	out, err := f.svc.Generate(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, out.Request.ProjectID)
	assert.Equal(t, ownProject, *out.Request.ProjectID)
}

func TestHistoryPaginatesNewestFirst(t *testing.T) {
	f := newGenerationFixture(0, 100)
	var ids []string
	for i := 0; i < 12; i++ {
		out, err := f.svc.Generate(context.Background(), input("prompt number something"))
		require.NoError(t, err)
		ids = append(ids, out.Request.ID)
	}

	page, err := f.svc.History(context.Background(), "u1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, page.Limit)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages())
	require.Len(t, page.Generations, 10)
	assert.Equal(t, ids[11], page.Generations[0].ID)

	page, err = f.svc.History(context.Background(), "u1", 2, 500)
	require.NoError(t, err)
	assert.Equal(t, MaxHistoryLimit, page.Limit)
	assert.Empty(t, page.Generations)
}

func TestGetScopedToOwner(t *testing.T) {
	f := newGenerationFixture(0, 10)
	out, err := f.svc.Generate(context.Background(), input("a footer component"))
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), "u1", out.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, out.Request.ID, got.ID)

	_, err = f.svc.Get(context.Background(), "u2", out.Request.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMalformedIDIsNotFound(t *testing.T) {
	f := newGenerationFixture(0, 10)

	for _, id := range []string{"abc", "", "123", "0b7c6f52-3f55-4c4e-9d0e"} {
		_, err := f.svc.Get(context.Background(), "u1", id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
	assert.Equal(t, 0, f.ledger.gets)
}

func TestGeneratePaddedPromptIsRejected(t *testing.T) {
	f := newGenerationFixture(0, 10)

	for _, prompt := range []string{"ab        ", "          ", "\t\n  short \n"} {
		_, err := f.svc.Generate(context.Background(), input(prompt))
		require.ErrorIs(t, err, ErrPromptTooShort, "%q", prompt)
	}
	assert.Equal(t, 0, f.ledger.inserted)
	assert.Equal(t, 0, f.provider.calls)
	assert.Equal(t, 0, f.users.byID["u1"].UsageCount)
}

func TestGenerateStoresPromptAsSent(t *testing.T) {
	f := newGenerationFixture(0, 10)
	prompt := "  a pricing table with three tiers\n"

	out, err := f.svc.Generate(context.Background(), input(prompt))
	require.NoError(t, err)
	assert.Equal(t, prompt, out.Request.Prompt)
	assert.Equal(t, prompt, f.provider.last.Prompt)
	assert.Equal(t, prompt, f.ledger.rows[out.Request.ID].Prompt)
}
