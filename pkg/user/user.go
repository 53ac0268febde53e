package user

import (
	"fmt"
	"time"
)

// User is the authenticated caller as resolved by the session backend.
type User struct {
	Uid      string
	Settings Settings
}

type Settings struct {
	// Timezone is an IANA name. Empty means the server default.
	Timezone string
}

// Location resolves the user's timezone, falling back to def when none is set.
func (u User) Location(def *time.Location) (*time.Location, error) {
	if u.Settings.Timezone == "" {
		return def, nil
	}
	loc, err := time.LoadLocation(u.Settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", u.Settings.Timezone, err)
	}
	return loc, nil
}
