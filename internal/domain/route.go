package domain

// Route is one entry of the client's route table.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
}

// Navigator abstracts the client's notion of "where the user currently is"
// and the ability to send them somewhere else.
type Navigator interface {
	CurrentPath() string
	Redirect(path string)
}
