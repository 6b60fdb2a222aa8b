package bot

import (
	"fmt"

	"github.com/google/uuid"
)

var names = []string{
	"Dato", "Giorgi", "Nino", "Levan", "Tamar", "Irakli",
	"Mariam", "Zurab", "Keti", "Sandro", "Salome", "Nika",
}

// Identity is a generated bot persona. IDs carry the "bot-" prefix so the
// rest of the system can recognize bot seats without extra state.
type Identity struct {
	ID   string
	Name string
}

// NewIdentity mints a fresh bot identity with a name picked by ordinal.
func NewIdentity(ordinal int) Identity {
	return Identity{
		ID:   "bot-" + uuid.NewString(),
		Name: fmt.Sprintf("%s (bot)", names[ordinal%len(names)]),
	}
}
