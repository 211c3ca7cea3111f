package model

// Genre is a movie category.  Movies embed a copy of it (see GenreSnapshot),
// so renaming a genre does not rewrite existing movies.
//
// Fields:
//  ID   – UUID string.
//  Name – 3 to 50 characters.
type Genre struct {
	ID   string `json:"id"`   // genres.id
	Name string `json:"name"` // genres.name
}

// Snapshot returns the copy of g that is embedded into a Movie.
func (g Genre) Snapshot() GenreSnapshot {
	return GenreSnapshot{ID: g.ID, Name: g.Name}
}

// GenreSnapshot is the point-in-time genre copy stored on a movie row.
type GenreSnapshot struct {
	ID   string `json:"id"`   // movies.genre_id
	Name string `json:"name"` // movies.genre_name
}
