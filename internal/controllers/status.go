// Package controllers holds the page logic of the wheel and admin views,
// independent of how they are displayed.
package controllers

// Style tells the view how to colour a status message.
type Style int

const (
	StyleNeutral Style = iota
	StyleSuccess
	StyleError
)

// Color is the CSS colour the pages use for the style.
func (s Style) Color() string {
	switch s {
	case StyleSuccess:
		return "#2ecc71"
	case StyleError:
		return "#e74c3c"
	default:
		return ""
	}
}

// Status is the single line of feedback a page shows the user.
type Status struct {
	Text  string
	Style Style
}

const (
	msgWheelLoadError = "Error loading wheel data."
	msgWheelEmpty     = "No prizes configured."
	msgSpinning       = "Spinning..."
	msgNoPrizes       = "No prizes available."
	msgPrizeNotFound  = "Prize not found."
	msgSpinError      = "An error occurred. Please try again."
	msgDeleteError    = "An error occurred while deleting."
	msgSaveError      = "An error occurred while saving."
	msgRowRemoved     = "Row removed."
)
