// Package integration propagates ban decisions to the external
// administration backends communities run, and owns the process-wide set of
// loaded integrations.
package integration

import (
	"context"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/model"
)

// Integration applies ban decisions to one external system on behalf of one
// community.
type Integration interface {
	// Config returns a copy of the configuration row the integration was built from.
	Config() model.Integration

	// ApplyBan bans the player and returns the remote handle of the ban.
	ApplyBan(ctx context.Context, req *BanRequest) (remoteID string, err error)

	// ReverseBan lifts a ban previously applied by ApplyBan. A ban that no
	// longer exists remotely yields ErrRemoteBanNotFound.
	ReverseBan(ctx context.Context, req *UnbanRequest) error

	// Validate checks the configuration against the live system. Variants may
	// provision remote resources (such as a ban list) and record them in their
	// configuration. Failures are *ConfigError.
	Validate(ctx context.Context, community *model.Community) error

	// Close releases any held connection. The integration is unusable afterwards.
	Close() error
}

// Synchronizer is implemented by integrations that can list the bans they
// hold remotely.
type Synchronizer interface {
	RemoteBans(ctx context.Context) (map[string]*RemoteBan, error)
	ExpireRemoteBan(ctx context.Context, remoteID string) error
}

// Namer is implemented by integrations that can tell the display name of the
// remote instance they are connected to.
type Namer interface {
	InstanceName(ctx context.Context) (string, error)
}

type BanRequest struct {
	PlayerID   string
	PlayerName string
	// Reason is the text recorded with the ban on the remote system.
	Reason   string
	ReportID int64
}

type UnbanRequest struct {
	PlayerID string
	RemoteID string
	ReportID int64
}

type RemoteBan struct {
	RemoteID string
	PlayerID string
	Active   bool
}

// Key identifies an integration within the manager. A community holds at most
// one integration per type.
type Key struct {
	CommunityID int64
	Type        constant.IntegrationType
}

func KeyOf(i Integration) Key {
	cfg := i.Config()
	return Key{CommunityID: cfg.CommunityID, Type: cfg.IntegrationType}
}
