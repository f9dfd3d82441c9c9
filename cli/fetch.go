package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/santiagomed/devtut/download"
	"github.com/santiagomed/devtut/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type progressMsg struct {
	index int
	ratio float64
}

type assetDoneMsg struct{ result download.Result }

type downloadCompleteMsg struct{}

type fetchFlags struct {
	dir      string
	progress bool
}

func newFetchToolbarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch-toolbar",
		Short: "Download the toolbar application files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := parseFetchFlags(cmd)
			if err != nil {
				return err
			}
			cfg, l, err := setup(cmd)
			if err != nil {
				return err
			}
			dir := flags.dir
			if dir == "" {
				dir = cfg.ToolbarPath()
			}

			fetcher := download.NewFetcher(afero.NewOsFs(), dir, l)
			if flags.progress {
				return runFetchProgress(cmd.Context(), fetcher, download.DefaultAssets)
			}
			l.Info("Downloading toolbar application files")
			printFetchResults(cmd.OutOrStdout(), fetcher.FetchAll(cmd.Context(), download.DefaultAssets))
			return nil
		},
	}
	cmd.Flags().StringP("dir", "d", "", "Directory to write the files to")
	cmd.Flags().BoolP("progress", "p", false, "Show an interactive progress bar")
	return cmd
}

func parseFetchFlags(cmd *cobra.Command) (fetchFlags, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return fetchFlags{}, err
	}
	showProgress, err := cmd.Flags().GetBool("progress")
	if err != nil {
		return fetchFlags{}, err
	}
	return fetchFlags{dir: dir, progress: showProgress}, nil
}

func printFetchResults(out io.Writer, results []download.Result) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "%s %s: %v\n", warnMark, r.Asset.Name, r.Err)
			continue
		}
		fmt.Fprintf(out, "%s %s -> %s\n", checkMark, r.Asset.Name, r.Path)
	}
}

func runFetchProgress(ctx context.Context, fetcher *download.Fetcher, assets []download.Asset) error {
	fetcher.Logger = logger.NewNullLogger()
	m := newFetchModel(assets)
	p := tea.NewProgram(m)

	go func() {
		for i, asset := range assets {
			p.Send(progressMsg{index: i})
			res := fetcher.Fetch(ctx, asset, func(ratio float64) {
				p.Send(progressMsg{index: i, ratio: ratio})
			})
			p.Send(assetDoneMsg{result: res})
		}
		p.Send(downloadCompleteMsg{})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

type fetchModel struct {
	assets   []download.Asset
	current  int
	progress progress.Model
	results  []download.Result
	done     bool
}

func newFetchModel(assets []download.Asset) fetchModel {
	return fetchModel{
		assets:   assets,
		progress: progress.New(progress.WithGradient("#FFBA08", "#F48C06")),
	}
}

func (m fetchModel) Init() tea.Cmd {
	return nil
}

func (m fetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEscape || msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}
		return m, nil

	case progressMsg:
		m.current = msg.index
		return m, m.progress.SetPercent(msg.ratio)

	case assetDoneMsg:
		m.results = append(m.results, msg.result)
		return m, nil

	case downloadCompleteMsg:
		m.done = true
		return m, tea.Sequence(finalPause(), tea.Quit)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m fetchModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	for _, r := range m.results {
		if r.Err != nil {
			fmt.Fprintf(&b, "%s %s: %v\n", warnMark, r.Asset.Name, r.Err)
		} else {
			fmt.Fprintf(&b, "%s %s\n", checkMark, r.Asset.Name)
		}
	}
	if m.done {
		return b.String()
	}

	pad := strings.Repeat(" ", padding)
	name := ""
	if m.current < len(m.assets) {
		name = m.assets[m.current].Name
	}
	fmt.Fprintf(&b, "%sDownloading %s (%d/%d)\n", pad, nameStyle.Render(name), m.current+1, len(m.assets))
	b.WriteString(pad + m.progress.View() + "\n\n")
	b.WriteString(pad + helpStyle("Press esc to quit"))
	return b.String()
}

func finalPause() tea.Cmd {
	return tea.Tick(time.Millisecond*750, func(_ time.Time) tea.Msg {
		return nil
	})
}
