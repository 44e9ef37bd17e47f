package model

// Package model contains persistence-facing domain types. Only the fields
// the request pipeline reads or writes appear here.

import "time"

// User is the slice of the users table the pipeline cares about.
type User struct {
	ID       string `db:"id"`
	Username string `db:"username"`

	// Theme selects a stylesheet by index; 0 is the site default.
	Theme int `db:"theme"`

	// CSS is optional user-supplied style text injected into HTML
	// responses alongside the theme stylesheet.
	CSS string `db:"css"`

	LastOnline time.Time `db:"last_online"`
}
