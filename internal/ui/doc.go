// Package ui contains the Fyne queue window. It turns user input into
// controller commands and renders the events delivered by the bridge; the
// handlers here always run on the Fyne thread.
package ui
