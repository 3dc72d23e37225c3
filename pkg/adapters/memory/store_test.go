package memory_test

import (
	"testing"

	"github.com/aretw0/faceless/pkg/adapters/memory"
	"github.com/aretw0/faceless/pkg/ports"
)

func TestMemoryStore_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, memory.NewStore())
}

func TestMemoryPersonaStore_Contract(t *testing.T) {
	ports.RunPersonaStoreContract(t, memory.NewPersonaStore())
}
