// Package dummydb provides in-memory repositories for tests and local
// hacking without a live database.
package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/core/user"
)

type (
	DB struct {
		sync.RWMutex
		users         map[string]*user.User
		classes       map[string]*classroom.Class
		enrollments   map[string]*classroom.Enrollment
		announcements map[string]*content.Announcement
		assignments   map[string]*content.Assignment
		submissions   map[string]*content.Submission
		comments      map[string]*content.Comment
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:         make(map[string]*user.User),
		classes:       make(map[string]*classroom.Class),
		enrollments:   make(map[string]*classroom.Enrollment),
		announcements: make(map[string]*content.Announcement),
		assignments:   make(map[string]*content.Assignment),
		submissions:   make(map[string]*content.Submission),
		comments:      make(map[string]*content.Comment),
	}
	return db, nil
}
