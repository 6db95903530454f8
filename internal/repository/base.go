// Package repository provides data access layer implementations for the
// governance engine. Operations whose preconditions and writes must be atomic
// (opening appeals, casting votes, endorsing promotions) run entirely inside
// one transaction here, with row locks on the records they decide over.
package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateKey reports whether err is a unique-constraint violation. The
// postgres driver translates these to gorm.ErrDuplicatedKey; the sqlite driver
// used in tests surfaces them as raw constraint messages.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
