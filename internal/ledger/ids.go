package ledger

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/timesheet/internal/domain"
)

// Kind classifies a row identity.
type Kind int

const (
	KindPersisted Kind = iota
	KindNew
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindPersisted:
		return "persisted"
	case KindNew:
		return "new"
	case KindPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Identity is the identity of a ledger row. It is one of Persisted, New
// or Placeholder.
type Identity interface {
	// Key returns a string unique among the rows of one session.
	Key() string
	isIdentity()
}

// Persisted identifies a row backed by a stored entry.
type Persisted struct {
	ID string
}

// New identifies a row that has not been saved yet. Origin is set when the
// row was created by duplicating another row.
type New struct {
	LocalID string
	Origin  *domain.Entry
}

// Placeholder identifies a display-only row for a day without entries.
type Placeholder struct {
	Slot string
}

func (p Persisted) Key() string   { return p.ID }
func (n New) Key() string         { return "new:" + n.LocalID }
func (p Placeholder) Key() string { return "empty:" + p.Slot }

func (Persisted) isIdentity()   {}
func (New) isIdentity()         {}
func (Placeholder) isIdentity() {}

// Classify returns the kind of id.
func Classify(id Identity) Kind {
	switch id.(type) {
	case Persisted:
		return KindPersisted
	case New:
		return KindNew
	case Placeholder:
		return KindPlaceholder
	default:
		panic(fmt.Sprintf("ledger: unknown identity %T", id))
	}
}

// IDGenerator hands out local ids for new rows. It is owned by a single
// session and is not safe for concurrent use on its own.
type IDGenerator struct {
	last uint64
}

// Next returns the next local id.
func (g *IDGenerator) Next() string {
	g.last++
	return strconv.FormatUint(g.last, 10)
}
