package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cinechat/internal/domain"
	"cinechat/internal/summarizer"
)

// Asker is the chat endpoint seen by the terminal client.
type Asker interface {
	Ask(ctx context.Context, msg string) (domain.Response, error)
}

type answerMsg struct {
	query string
	resp  domain.Response
	err   error
}

// Model is the Bubble Tea model for the terminal chat client.
type Model struct {
	asker     Asker
	condenser *summarizer.Frequency
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	resp      domain.Response
	status    string
	cursor    int
	ready     bool
	waiting   bool
	lastQuery string
}

func New(asker Asker) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask for movies and press Enter"
	ti.Focus()
	return Model{
		asker:     asker,
		condenser: summarizer.NewFrequency(),
		input:     ti,
		viewport:  viewport.New(0, 0),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		status:    "Connected. Up/Down browses movies, Ctrl+C quits.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.asker.Ask(context.Background(), q)
		return answerMsg{query: q, resp: resp, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case answerMsg:
		m.waiting = false
		m.cursor = 0
		m.lastQuery = msg.query
		switch {
		case msg.err != nil:
			m.resp = domain.Response{}
			m.status = "Error: " + msg.err.Error()
		case msg.resp.Error != "":
			m.resp = msg.resp
			m.status = "Error: " + msg.resp.Error
		default:
			m.resp = msg.resp
			m.status = fmt.Sprintf("Results for %q", msg.query)
		}
		m.viewport.SetContent(m.render())
		return m, nil
	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			m.input.SetValue("")
			m.waiting = true
			m.status = "Searching..."
			return m, tea.Batch(m.ask(q), m.spinner.Tick)
		case "down":
			if n := len(m.resp.Movies); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "up":
			if n := len(m.resp.Movies); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.render())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("CineChat")
	status := statusStyle.Render(m.status)
	if m.waiting {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + resultBoxStyle.Render(m.viewport.View()) + "\n" + queryBoxStyle.Render(m.input.View()) + "\n" + status
}

func (m Model) render() string {
	switch {
	case m.resp.Message != "":
		return m.resp.Message
	case len(m.resp.Movies) == 0 && m.resp.GPTResponse == nil:
		return "No results yet."
	}
	var b strings.Builder
	if len(m.resp.Movies) > 0 {
		mv := m.resp.Movies[m.cursor]
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", mv.Title, mv.Year)))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d", m.cursor+1, len(m.resp.Movies))))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Rating: %s   Genre: %s\n", formatRating(mv.Rating), mv.Genre))
		b.WriteString("Actors: " + mv.Actors + "\n\n")
		b.WriteString(highlightBestSentence(m.condenser.Summarize(mv.Summary, 3), m.lastQuery))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(mv.PosterURL))
		b.WriteString("\n\n")
	}
	if m.resp.GPTResponse != nil {
		b.WriteString(titleStyle.Render("More like this"))
		b.WriteString("\n")
		b.WriteString(*m.resp.GPTResponse)
	}
	return b.String()
}

func formatRating(r *float64) string {
	if r == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *r)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wordRe         = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

// highlightBestSentence emphasises the sentence sharing most words with the query.
func highlightBestSentence(text, query string) string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) < 2 {
		return strings.TrimSpace(text)
	}
	q := wordSet(query)
	best, bestScore := -1, 0
	for i, s := range sentences {
		score := 0
		for w := range wordSet(s) {
			if _, ok := q[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
		if i == best {
			sentences[i] = highlightStyle.Render(sentences[i])
		}
	}
	return strings.Join(sentences, " ")
}

func wordSet(s string) map[string]struct{} {
	words := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
