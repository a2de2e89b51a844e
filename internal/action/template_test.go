package action_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/action"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

func newStore(t *testing.T) *action.TemplateStore {
	t.Helper()
	store := action.NewTemplateStore()
	require.NoError(t, store.Register(&action.Template{
		ID:       "appointment-reminder",
		Body:     "Hi {{patient_name}}, your visit is on {{visit_date}}.",
		Required: []string{"patient_name", "visit_date"},
	}))
	return store
}

func TestRenderSubstitutesVariables(t *testing.T) {
	store := newStore(t)

	content, err := store.Render("appointment-reminder", api.Payload{
		"patient_name": "Fatima",
		"visit_date":   "2026-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi Fatima, your visit is on 2026-03-10.", content)
}

func TestRenderFailsFastOnMissingRequired(t *testing.T) {
	store := newStore(t)

	_, err := store.Render("appointment-reminder", api.Payload{
		"patient_name": "Fatima",
	})
	assert.ErrorIs(t, err, api.ErrActionExecution)
	assert.Contains(t, err.Error(), "visit_date")
}

func TestRenderFailsOnUnresolvedPlaceholder(t *testing.T) {
	store := action.NewTemplateStore()
	require.NoError(t, store.Register(&action.Template{
		ID:   "loose",
		Body: "Value is {{undeclared}}",
	}))

	_, err := store.Render("loose", api.Payload{})
	assert.ErrorIs(t, err, api.ErrActionExecution)
}

func TestRenderUnknownTemplate(t *testing.T) {
	store := newStore(t)
	_, err := store.Render("nope", api.Payload{})
	assert.ErrorIs(t, err, api.ErrActionExecution)
}

func TestRegisterValidation(t *testing.T) {
	store := action.NewTemplateStore()
	assert.ErrorIs(t, store.Register(&action.Template{Body: "x"}),
		api.ErrValidation)
	assert.ErrorIs(t, store.Register(&action.Template{ID: "x"}),
		api.ErrValidation)
}
