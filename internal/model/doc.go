package model

// Package model defines domain data structures shared by the queue, the engines
// and the UI: download tasks with their advanced options, worker lifecycle
// states and the events flowing from background workers to the UI thread.
