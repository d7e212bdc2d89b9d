package constant

// PlayerIDType is the platform-specific kind of a player identifier. It is
// derived from the shape of the identifier and never stored.
type PlayerIDType string

const (
	PlayerIDTypeSteam   PlayerIDType = "steamID"
	PlayerIDTypeWindows PlayerIDType = "hllWindowsID"
)

type Platform string

const (
	PlatformPC      Platform = "pc"
	PlatformConsole Platform = "console"
)

func (p Platform) Valid() bool {
	return p == PlatformPC || p == PlatformConsole
}
