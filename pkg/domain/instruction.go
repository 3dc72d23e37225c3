package domain

// InstructionRole identifies the speaker of an instruction handed to a model.
type InstructionRole string

const (
	InstructionSystem InstructionRole = "system"
	InstructionUser   InstructionRole = "user"
	InstructionModel  InstructionRole = "model"
)

// Instruction is one element of the ordered sequence a model receives.
type Instruction struct {
	Role    InstructionRole `json:"role"`
	Content string          `json:"content"`
}
