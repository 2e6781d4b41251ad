package cli

import (
	"context"
	"testing"

	"github.com/mchmarny/motorista/pkg/auth"
	"github.com/mchmarny/motorista/pkg/strength"
	"github.com/stretchr/testify/assert"
)

// promptRecorder replaces the terminal prompts and answers by title.
type promptRecorder struct {
	answers map[string]string
	plain   []string
	metered []string
}

func (r *promptRecorder) install(t *testing.T) {
	t.Helper()
	t.Setenv(passwordEnv, "")
	t.Setenv(newPasswordEnv, "")

	prompt, meter := runPrompt, runMeter
	t.Cleanup(func() {
		runPrompt, runMeter = prompt, meter
	})

	runPrompt = func(_ context.Context, title string) (string, error) {
		r.plain = append(r.plain, title)
		return r.answers[title], nil
	}
	runMeter = func(_ context.Context, title string, _ strength.Checker, _ ...strength.FetcherOption) (string, error) {
		r.metered = append(r.metered, title)
		return r.answers[title], nil
	}
}

func TestLogin_PromptsWithoutMeter(t *testing.T) {
	e := newTestEnv(t)
	r := &promptRecorder{answers: map[string]string{"Senha": testPassword}}
	r.install(t)

	e.mustRun("login", "--email", "maria@example.com")

	assert.Equal(t, []string{"Senha"}, r.plain)
	assert.Empty(t, r.metered)
	assert.Equal(t, "m-1", auth.NewStore(e.home).Load().MotoristaID)
}

func TestPasswordChange_OnlyNewPasswordIsMetered(t *testing.T) {
	e := newTestEnv(t)
	e.register()

	nova := "Nova@Senha2024"
	r := &promptRecorder{answers: map[string]string{
		"Senha atual":      testPassword,
		"Nova senha":       nova,
		"Confirme a senha": nova,
	}}
	r.install(t)

	e.mustRun("password", "change")

	assert.Equal(t, []string{"Senha atual", "Confirme a senha"}, r.plain)
	assert.Equal(t, []string{"Nova senha"}, r.metered)

	e.mustRun("login", "--email", "maria@example.com", "--password", nova)
}
