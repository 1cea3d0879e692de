package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/pkg/guard"
)

var ErrStartPackingCommandIsNotConstructed = errors.New(
	"StartPackingCommand must be created via NewStartPackingCommand constructor",
)

// StartPackingCommand opens the packing job of a completed wave. An empty
// priority inherits the wave's.
type StartPackingCommand struct { //nolint:recvcheck //using for validation
	waveID   kernel.UUID
	packerID *kernel.UUID
	priority *kernel.Priority
	workflow packing.WorkflowType
	userID   *kernel.UUID

	guard guard.ConstructorGuard
}

func NewStartPackingCommand(
	waveID kernel.UUID,
	packerID *kernel.UUID,
	priority, workflowType string,
	userID *kernel.UUID,
) (StartPackingCommand, error) {
	cmd := StartPackingCommand{userID: userID}
	if err := errors.Join(
		cmd.setWaveID(waveID),
		cmd.setPackerID(packerID),
		cmd.setPriority(priority),
		cmd.setWorkflow(workflowType),
	); err != nil {
		return StartPackingCommand{}, err
	}
	cmd.guard = guard.NewConstructorGuard()
	return cmd, nil
}

func (c StartPackingCommand) Validate() error {
	return c.guard.Validate(ErrStartPackingCommandIsNotConstructed)
}

func (c StartPackingCommand) WaveID() kernel.UUID            { return c.waveID }
func (c StartPackingCommand) PackerID() *kernel.UUID         { return c.packerID }
func (c StartPackingCommand) Priority() *kernel.Priority     { return c.priority }
func (c StartPackingCommand) Workflow() packing.WorkflowType { return c.workflow }
func (c StartPackingCommand) UserID() *kernel.UUID           { return c.userID }

func (c *StartPackingCommand) setWaveID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.waveID = id
	return nil
}

func (c *StartPackingCommand) setPackerID(id *kernel.UUID) error {
	if id == nil {
		return nil
	}
	if err := id.Validate(); err != nil {
		return err
	}
	packer := *id
	c.packerID = &packer
	return nil
}

func (c *StartPackingCommand) setPriority(s string) error {
	if s == "" {
		return nil
	}
	p, err := kernel.ParsePriority(s)
	if err != nil {
		return err
	}
	c.priority = &p
	return nil
}

func (c *StartPackingCommand) setWorkflow(s string) error {
	w, err := packing.ParseWorkflowType(s)
	if err != nil {
		return err
	}
	c.workflow = w
	return nil
}
