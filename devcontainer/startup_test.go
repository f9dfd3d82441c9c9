package devcontainer

import (
	"testing"

	"github.com/santiagomed/devtut/tutorial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsPrefix = "nohup ./node_modules/.bin/http-server steps -p 1234 --cors -c-1 > /dev/null 2>&1 & "

func render(t *testing.T, cfg *tutorial.Config, external, setup bool) string {
	t.Helper()
	out, err := Render(Plan(cfg, external, setup))
	require.NoError(t, err)
	return out
}

func TestPlanBrowserOnly(t *testing.T) {
	cfg := &tutorial.Config{Panels: []string{tutorial.PanelBrowser}}

	steps := Plan(cfg, false, false)
	require.Len(t, steps, 5)
	assert.Equal(t, BackgroundJob{Command: liveServerCommand}, steps[3])
	assert.Equal(t, BlockForever{}, steps[4])

	want := docsPrefix +
		`(nohup sh -c "sleep 5 && gh codespace ports visibility 8080:public -c $CODESPACE_NAME" > /dev/null 2>&1 &) && ` +
		`(sleep 4 && echo -e "\n\n🚀 PREVIEW READY:\nhttps://${CODESPACE_NAME}-8080.app.github.dev\n\n" &) && ` +
		`./node_modules/.bin/live-server --port=8080 --no-browser > /dev/null 2>&1 & wait`
	assert.Equal(t, want, render(t, cfg, false, false))
}

func TestPlanExternalProject(t *testing.T) {
	cfg := &tutorial.Config{Repository: "https://github.com/example/app.git"}

	want := docsPrefix +
		`cd project && ` +
		`(sleep 4 && echo -e "\n\n🚀 APPLICATION READY:\nhttps://${CODESPACE_NAME}-3000.app.github.dev\n\n" &) && ` +
		`(nohup sh -c "sleep 5 && gh codespace ports visibility 3000:public -c $CODESPACE_NAME" > /dev/null 2>&1 &) && ` +
		`npm start`
	assert.Equal(t, want, render(t, cfg, true, false))
}

func TestPlanExternalProjectWithBrowserStillStartsProject(t *testing.T) {
	cfg := &tutorial.Config{Panels: []string{tutorial.PanelBrowser}}

	steps := Plan(cfg, true, false)
	assert.Equal(t, RunForeground{Command: "npm start"}, steps[len(steps)-1])
	assert.NotContains(t, render(t, cfg, true, false), "live-server")
}

func TestPlanSetupScriptWithExternalProject(t *testing.T) {
	cfg := &tutorial.Config{}

	want := docsPrefix +
		`echo '' && cd project && node setup-project.js && ` +
		`(sleep 4 && echo -e "\n\n🚀 APPLICATION READY:\nhttps://${CODESPACE_NAME}-3000.app.github.dev\n\n" &) && ` +
		`(nohup sh -c "sleep 5 && gh codespace ports visibility 3000:public -c $CODESPACE_NAME" > /dev/null 2>&1 &) && ` +
		`npm start`
	assert.Equal(t, want, render(t, cfg, true, true))
}

func TestPlanSetupScriptWithBrowserBlocks(t *testing.T) {
	cfg := &tutorial.Config{Panels: []string{tutorial.PanelBrowser}}

	want := docsPrefix + `echo '' && cd project && node setup-project.js && wait`
	assert.Equal(t, want, render(t, cfg, false, true))
}

func TestPlanNothingToRun(t *testing.T) {
	assert.Equal(t, docsPrefix+"wait", render(t, &tutorial.Config{}, false, false))
}

func TestRenderRejectsMalformedPlans(t *testing.T) {
	_, err := Render(nil)
	assert.ErrorIs(t, err, ErrEmptyPlan)

	_, err = Render([]StartupStep{BackgroundService{Command: "x"}})
	assert.ErrorIs(t, err, ErrUnterminatedPlan)

	_, err = Render([]StartupStep{BackgroundJob{Command: "x"}})
	assert.ErrorIs(t, err, ErrUnterminatedPlan)

	_, err = Render([]StartupStep{BlockForever{}, RunForeground{Command: "npm start"}})
	assert.ErrorIs(t, err, ErrTerminalNotLast)
}
