package model

import (
	"cmp"
	"strings"
	"time"
)

// UserFilter: nil field = no constraint. Birth bounds are inclusive and
// compared by calendar day.
type UserFilter struct {
	Username  *string // exact
	Name      *string // substring
	BirthFrom *time.Time
	BirthTo   *time.Time
}

func (f UserFilter) Matches(u *UserModel) bool {
	if f.Username != nil && u.Username != *f.Username {
		return false
	}
	if f.Name != nil && !strings.Contains(u.Name, *f.Name) {
		return false
	}
	birth := day(u.Birth())
	if f.BirthFrom != nil && birth.Before(day(*f.BirthFrom)) {
		return false
	}
	if f.BirthTo != nil && birth.After(day(*f.BirthTo)) {
		return false
	}
	return true
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Sortable maps API sort keys to columns.
var Sortable = map[string]string{
	"id":        "id",
	"username":  "username",
	"name":      "name",
	"birthDate": "birth_date",
}

func CompareField(a, b *UserModel, field string) int {
	switch field {
	case "username":
		return cmp.Compare(a.Username, b.Username)
	case "name":
		return cmp.Compare(a.Name, b.Name)
	case "birthDate":
		return day(a.Birth()).Compare(day(b.Birth()))
	default:
		return cmp.Compare(a.ID, b.ID)
	}
}
