package tui

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinechat/internal/domain"
)

func TestClientAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "heist movies", r.PostForm.Get("msg"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"gpt_response":"Try Thief.","movies":[{"title":"Heat","rating":null,"year":"1995"}]}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/", 0).Ask(context.Background(), "heist movies")
	require.NoError(t, err)
	require.NotNil(t, resp.GPTResponse)
	assert.Equal(t, "Try Thief.", *resp.GPTResponse)
	require.Len(t, resp.Movies, 1)
	assert.Nil(t, resp.Movies[0].Rating)
}

func TestClientAsk_BadRequestCarriesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"missing form field: msg"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, 0).Ask(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "missing form field: msg", resp.Error)
}

func TestClientAsk_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Ask(context.Background(), "x")
	require.Error(t, err)
}

type stubAsker struct {
	resp domain.Response
	err  error
}

func (s stubAsker) Ask(context.Context, string) (domain.Response, error) { return s.resp, s.err }

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return next.(Model)
}

func TestModel_EnterAsksAndRendersAnswer(t *testing.T) {
	rating := 8.3
	resp := domain.Recommendation("Try Thief.", []domain.EnrichedMovie{
		{Title: "Heat", Year: "1995", Rating: &rating, Genre: "Crime", Actors: "Al Pacino", Summary: "A crew robs banks."},
		{Title: "Ronin", Year: "1998", Genre: "Action", Summary: "No summary available."},
	})
	m := sized(New(stubAsker{resp: resp}))
	m.input.SetValue("heist")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)

	next, _ = m.Update(answerMsg{query: "heist", resp: resp})
	m = next.(Model)
	assert.False(t, m.waiting)
	out := m.render()
	assert.Contains(t, out, "Heat (1995)")
	assert.Contains(t, out, "Rating: 8.3")
	assert.Contains(t, out, "Try Thief.")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(Model)
	assert.Contains(t, m.render(), "Ronin (1998)")
	assert.Contains(t, m.render(), "Rating: n/a")
}

func TestModel_ErrorsAndNotices(t *testing.T) {
	m := sized(New(stubAsker{}))

	next, _ := m.Update(answerMsg{query: "x", err: errors.New("connection refused")})
	m = next.(Model)
	assert.Equal(t, "Error: connection refused", m.status)

	next, _ = m.Update(answerMsg{query: "x", resp: domain.Notice("No results found for your query.")})
	m = next.(Model)
	assert.Equal(t, "No results found for your query.", m.render())
}

func TestHighlightBestSentence(t *testing.T) {
	assert.Equal(t, "One line only.", highlightBestSentence(" One line only. ", "line"))
	out := highlightBestSentence("A heist goes wrong. The crew scatters.", "crew")
	assert.Contains(t, out, "A heist goes wrong.")
	assert.Contains(t, out, "The crew scatters.")
}
