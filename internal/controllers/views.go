package controllers

import "fmt"

// View names one of the two pages.
type View string

const (
	ViewWheel View = "wheel"
	ViewAdmin View = "admin"
)

// ViewFor maps a page path to its view.
func ViewFor(path string) (View, error) {
	switch path {
	case "/", "":
		return ViewWheel, nil
	case "/admin", "/admin/":
		return ViewAdmin, nil
	default:
		return "", fmt.Errorf("no view for path %q", path)
	}
}

// Path is the page path the view is served at.
func (v View) Path() string {
	if v == ViewAdmin {
		return "/admin"
	}
	return "/"
}
