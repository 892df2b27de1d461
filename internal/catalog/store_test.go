package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestMapUnique(t *testing.T) {
	dup := fmt.Errorf("exec: %w", &pq.Error{Code: "23505", Constraint: "professors_name_key"})
	if err := mapUnique(dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("unique violation not mapped: %v", err)
	}

	fk := &pq.Error{Code: "23503"}
	if err := mapUnique(fk); errors.Is(err, ErrDuplicate) || err != error(fk) {
		t.Fatalf("other pq errors must pass through: %v", err)
	}

	other := errors.New("conn reset")
	if err := mapUnique(other); err != other {
		t.Fatalf("plain errors must pass through: %v", err)
	}
}
