package readme

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepLink(t *testing.T) {
	assert.Equal(t,
		"https://codespaces.new/acme/tutorials?devcontainer_path=.devcontainer/sms-basics/devcontainer.json",
		DeepLink("acme", "tutorials", ".devcontainer/sms-basics/devcontainer.json"))
}

func TestRender(t *testing.T) {
	out, err := Render(Params{Name: "sms-basics", Owner: "acme", Repo: "tutorials"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "\n# sms-basics\n\nThis tutorial environment has been automatically generated.\n"))
	assert.Contains(t, out, "## Start Learning\n")
	assert.Contains(t, out, "[![Open in GitHub Codespaces](https://github.com/codespaces/badge.svg)]"+
		"(https://codespaces.new/acme/tutorials?devcontainer_path=.devcontainer/sms-basics/devcontainer.json)")
	assert.Contains(t, out, "(Port 1234)")
	assert.Contains(t, out, "Located in `tutorials/sms-basics`.")
	assert.Contains(t, out, "Located in `tutorials/sms-basics/project`.")
}

func TestRenderCustomTutorialsDir(t *testing.T) {
	out, err := Render(Params{Name: "x", Owner: "o", Repo: "r", TutorialsDir: "content/tutorials"})
	require.NoError(t, err)
	assert.Contains(t, out, "`content/tutorials/x/project`")
}

func TestLinkFollowsDevcontainerDir(t *testing.T) {
	p := Params{Name: "sms-basics", Owner: "acme", Repo: "tutorials", DevcontainerDir: "envs/codespaces"}
	assert.Equal(t,
		"https://codespaces.new/acme/tutorials?devcontainer_path=envs/codespaces/sms-basics/devcontainer.json",
		p.Link())

	out, err := Render(p)
	require.NoError(t, err)
	assert.Contains(t, out, "devcontainer_path=envs/codespaces/sms-basics/devcontainer.json)")
}
