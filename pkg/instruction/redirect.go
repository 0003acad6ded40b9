package instruction

// Redirect sends any navigation matching Path on to RedirectTo.
type Redirect struct {
	Path       string
	RedirectTo string
}

func (r Redirect) String() string {
	return r.Path + " -> " + r.RedirectTo
}
