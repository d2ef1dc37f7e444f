package out

import (
	"context"

	usageout "quotawin/internal/modules/usage/port/out"
	"quotawin/internal/platform/machine"
)

type MachineIdentity struct {
	store *machine.FileStore
}

func NewMachineIdentity(store *machine.FileStore) MachineIdentity {
	return MachineIdentity{store: store}
}

func (m MachineIdentity) Local(_ context.Context) (usageout.Identity, error) {
	identity, err := m.store.LoadOrCreate()
	if err != nil {
		return usageout.Identity{}, err
	}
	return usageout.Identity{MachineID: identity.MachineID, Hostname: identity.Hostname}, nil
}
