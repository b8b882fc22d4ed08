package model

// Tutorial is the single managed resource.
//
// ID is assigned by the store on first save and never changes afterwards.
type Tutorial struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	Published   bool   `json:"published" db:"published"`
}

// NewTutorial returns an unsaved Tutorial.
func NewTutorial(title, description string, published bool) *Tutorial {
	return &Tutorial{
		Title:       title,
		Description: description,
		Published:   published,
	}
}

// IsNew reports whether the tutorial has not been persisted yet.
func (t *Tutorial) IsNew() bool {
	return t.ID == 0
}

// Overwrite replaces the mutable fields, keeping the id.
func (t *Tutorial) Overwrite(title, description string, published bool) {
	t.Title = title
	t.Description = description
	t.Published = published
}
