package domain

// CatalogRecord is one row of the movie catalog.
type CatalogRecord struct {
	ID         string
	Title      string
	Director   string
	Actors     string
	Genres     string
	Plot       string
	Year       int
	Rating     float64
	IMDbID     string
	PosterPath string
	Summary    string
}

// Metadata returns the attributes stored alongside the indexed body.
func (r CatalogRecord) Metadata() MovieMetadata {
	return MovieMetadata{
		Title:      r.Title,
		Director:   r.Director,
		Actors:     r.Actors,
		Genres:     r.Genres,
		Plot:       r.Plot,
		ID:         r.ID,
		IMDbID:     r.IMDbID,
		PosterPath: r.PosterPath,
		Year:       r.Year,
		Rating:     r.Rating,
	}
}

// MovieMetadata is the filterable payload kept with every indexed document.
type MovieMetadata struct {
	Title      string  `json:"title"`
	Director   string  `json:"director"`
	Actors     string  `json:"actors"`
	Genres     string  `json:"genres"`
	Plot       string  `json:"plot"`
	ID         string  `json:"id"`
	IMDbID     string  `json:"imdb_id"`
	PosterPath string  `json:"poster_path"`
	Year       int     `json:"year"`
	Rating     float64 `json:"rating"`
}

// Attribute returns the value of a metadata field by its JSON name.
func (m MovieMetadata) Attribute(name string) (any, bool) {
	switch name {
	case "title":
		return m.Title, true
	case "director":
		return m.Director, true
	case "actors":
		return m.Actors, true
	case "genres":
		return m.Genres, true
	case "plot":
		return m.Plot, true
	case "id":
		return m.ID, true
	case "imdb_id":
		return m.IMDbID, true
	case "poster_path":
		return m.PosterPath, true
	case "year":
		return m.Year, true
	case "rating":
		return m.Rating, true
	}
	return nil, false
}

// IndexedDocument is the unit submitted to the vector store, keyed by ID.
type IndexedDocument struct {
	ID       string
	Body     string
	Metadata MovieMetadata
}

// RetrievalResult is a document returned by a query with its relevance score.
type RetrievalResult struct {
	Document IndexedDocument
	Score    float64
}

// LiveMetadata is what the metadata service reports for a movie.
// A nil Rating means the rating is unknown.
type LiveMetadata struct {
	Rating  *float64
	Summary string
	Year    string
}

// EnrichedMovie is a retrieval result merged with live metadata, ready for display.
type EnrichedMovie struct {
	Title     string   `json:"title"`
	PosterURL string   `json:"poster_url"`
	Rating    *float64 `json:"rating"`
	Summary   string   `json:"summary"`
	Year      string   `json:"year"`
	Genre     string   `json:"genre"`
	Actors    string   `json:"actors"`
}

// Response is the payload returned for a chat message. Exactly one of
// (GPTResponse, Movies), Message or Error is set.
type Response struct {
	GPTResponse *string         `json:"gpt_response,omitempty"`
	Movies      []EnrichedMovie `json:"movies,omitempty"`
	Message     string          `json:"message,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Recommendation builds a successful response.
func Recommendation(text string, movies []EnrichedMovie) Response {
	return Response{GPTResponse: &text, Movies: movies}
}

// Notice builds an informational response.
func Notice(msg string) Response { return Response{Message: msg} }

// Failure builds an error response.
func Failure(err error) Response { return Response{Error: err.Error()} }
